// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/davecgh/go-spew/spew"

	"git.lukeshu.com/preadbench/lib/diskio"
	"git.lukeshu.com/preadbench/lib/preader"
)

type benchOptions struct {
	File   string
	Config preader.Config

	Verify           bool
	HexdumpBytes     int
	JSON             bool
	DropCache        bool
	ProgressInterval time.Duration
}

func checkBlockSize(name string, blockSize int64) error {
	sector, err := diskio.SectorSize(name)
	if err != nil {
		return err
	}
	if sector > 0 && blockSize%int64(sector) != 0 {
		return fmt.Errorf("block size %d is not a multiple of the %s sector size (%d)",
			blockSize, name, sector)
	}
	return nil
}

func runBench(ctx context.Context, out io.Writer, opts benchOptions) (err error) {
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	ctx = dlog.WithField(ctx, "preadbench.step", "setup")
	if opts.Config.Mode == preader.ModeDirect {
		if err := checkBlockSize(opts.File, opts.Config.BlockSize); err != nil {
			return err
		}
	}
	if opts.DropCache {
		switch err := diskio.DropCache(opts.File); {
		case errors.Is(err, diskio.ErrNotSupported):
			dlog.Warnf(ctx, "--drop-cache: %v", err)
		case err != nil:
			return err
		}
	}

	obs := newLogObserver(dlog.WithField(ctx, "preadbench.step", "read"), opts.ProgressInterval)
	defer obs.Done()
	cfg := opts.Config
	cfg.Observer = obs

	reader, err := preader.New(opts.File, cfg)
	if err != nil {
		return err
	}
	defer func() {
		maybeSetErr(reader.Close())
	}()
	obs.total = reader.Size()
	dlog.Tracef(ctx, "effective config: %s", spew.Sdump(reader.Config()))

	if !opts.JSON {
		writeSummary(out, reader)
	}

	res, err := reader.Read(dlog.WithField(ctx, "preadbench.step", "read"))
	obs.Done()
	if err != nil {
		return err
	}
	if !opts.JSON {
		writeResult(out, res)
	}

	var verified *bool
	if opts.Verify {
		if !opts.JSON {
			fmt.Fprint(out, "\nVerifying parallel read...\n")
		}
		ok, err := reader.Verify(dlog.WithField(ctx, "preadbench.step", "verify"))
		if err != nil {
			return err
		}
		verified = &ok
		if !opts.JSON {
			writeVerification(out, ok)
		}
	}

	head := reader.Bytes()
	if n := opts.HexdumpBytes; n < len(head) {
		if n < 0 {
			n = 0
		}
		head = head[:n]
	}
	if opts.JSON {
		return writeJSON(out, newReport(res, verified, head))
	}
	if len(head) > 0 {
		writeHexdump(out, head)
	}
	return nil
}
