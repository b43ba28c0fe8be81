// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Command preadbench measures how fast a single file can be read into
// memory by several workers at once, with or without the page cache.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/spf13/cobra"

	"git.lukeshu.com/preadbench/lib/preader"
	"git.lukeshu.com/preadbench/lib/profile"
	"git.lukeshu.com/preadbench/lib/textui"
)

func main() {
	argparser := newArgparser()
	if err := argparser.ExecuteContext(context.Background()); err != nil {
		textui.Fprintf(os.Stderr, "%v: error: %v\n", argparser.CommandPath(), err)
		os.Exit(1)
	}
}

func newArgparser() *cobra.Command {
	logLevelFlag := textui.LogLevelFlag{
		Level: dlog.LogLevelInfo,
	}
	blockSizeFlag := sizeFlag(preader.DefaultBlockSize)
	opts := benchOptions{
		Verify:           true,
		HexdumpBytes:     64, //nolint:gomnd // Four lines of hexdump.
		ProgressInterval: textui.Tunable(1 * time.Second),
	}
	var stopProfiling profile.StopFunc

	argparser := &cobra.Command{
		Use:   "preadbench [flags] FILENAME [NUM_THREADS [READ_CHUNK_SIZE_KB [USE_ODIRECT]]]",
		Short: "Measure parallel read throughput of a single file",
		Long: "" +
			"Read FILENAME into memory using NUM_THREADS workers (default: the number\n" +
			"of CPUs), each reading a contiguous share of the file in requests of\n" +
			"READ_CHUNK_SIZE_KB KiB (default: 1024).  If USE_ODIRECT is nonzero, the\n" +
			"page cache is bypassed and all reads are aligned to --block-size.\n" +
			"\n" +
			"Example: preadbench large_file.bin 8 1024 1",

		Args: cliutil.WrapPositionalArgs(cobra.RangeArgs(1, 4)),

		SilenceErrors: true, // main() will handle this after .ExecuteContext() returns
		SilenceUsage:  true, // our FlagErrorFunc will handle it

		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},

		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				if _err := stopProfiling(); _err != nil && err == nil {
					err = _err
				}
			}()

			pos, err := parseArgs(args, runtime.NumCPU())
			if err != nil {
				return err
			}
			if opts.HexdumpBytes < 0 {
				return fmt.Errorf("invalid --hexdump-bytes: %d is negative", opts.HexdumpBytes)
			}
			opts.File = pos.File
			opts.Config.Threads = pos.Threads
			opts.Config.ChunkSize = pos.ChunkSize
			opts.Config.BlockSize = int64(blockSizeFlag)
			opts.Config.Mode = preader.ModeBuffered
			if pos.Direct {
				opts.Config.Mode = preader.ModeDirect
			}

			ctx := cmd.Context()
			logger := textui.NewLogger(cmd.ErrOrStderr(), logLevelFlag.Level)
			ctx = dlog.WithLogger(ctx, logger)
			if logLevelFlag.Level >= dlog.LogLevelDebug {
				ctx = dlog.WithField(ctx, "mem", new(textui.LiveMemUse))
			}
			dlog.SetFallbackLogger(logger.WithField("preadbench.THIS_IS_A_BUG", true))

			grp := dgroup.NewGroup(ctx, dgroup.GroupConfig{
				EnableSignalHandling: true,
			})
			grp.Go("main", func(ctx context.Context) error {
				return runBench(ctx, cmd.OutOrStdout(), opts)
			})
			return grp.Wait()
		},
	}
	argparser.SetFlagErrorFunc(cliutil.FlagErrorFunc)
	argparser.SetHelpTemplate(cliutil.HelpTemplate)

	flags := argparser.Flags()
	flags.Var(&logLevelFlag, "verbosity", "set the verbosity")
	flags.Var(&blockSizeFlag, "block-size", "alignment `size` for direct reads (e.g. 512, 4KiB)")
	flags.BoolVar(&opts.Verify, "verify", opts.Verify, "re-read the file sequentially and compare")
	flags.IntVar(&opts.HexdumpBytes, "hexdump-bytes", opts.HexdumpBytes, "print the first `N` bytes of the buffer in hex")
	flags.BoolVar(&opts.JSON, "json", opts.JSON, "write a JSON report to stdout instead of the human-readable one")
	flags.BoolVar(&opts.DropCache, "drop-cache", opts.DropCache, "evict the file from the page cache before reading")
	flags.DurationVar(&opts.ProgressInterval, "progress-interval", opts.ProgressInterval, "how often to log read progress; 0 to disable")
	stopProfiling = profile.AddProfileFlags(flags, "profile.")

	return argparser
}
