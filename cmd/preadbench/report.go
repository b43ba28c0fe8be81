// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"

	"git.lukeshu.com/go/lowmemjson"
	"github.com/dustin/go-humanize"

	"git.lukeshu.com/preadbench/lib/preader"
	"git.lukeshu.com/preadbench/lib/textui"
)

func writeSummary(w io.Writer, reader *preader.Reader) {
	cfg := reader.Config()
	textui.Fprintf(w, "Reading file: %s\n", reader.Name())
	textui.Fprintf(w, "File size: %d bytes (%s)\n", reader.Size(), humanize.IBytes(uint64(reader.Size())))
	textui.Fprintf(w, "Using %d threads\n", cfg.Threads)
	textui.Fprintf(w, "Read chunk size: %d bytes (%s)\n", cfg.ChunkSize, humanize.IBytes(uint64(cfg.ChunkSize)))
	switch cfg.Mode {
	case preader.ModeDirect:
		textui.Fprintf(w, "O_DIRECT: enabled, block size %d (bypasses page cache - shows TRUE storage performance)\n", cfg.BlockSize)
	default:
		textui.Fprintf(w, "O_DIRECT: disabled (uses page cache - may show cached performance on repeat runs)\n")
	}
}

func writeResult(w io.Writer, res *preader.Result) {
	textui.Fprintf(w, "\nRead completed in %v\n", res.Read)
	textui.Fprintf(w, "Throughput: %.2f MB/s\n", res.Throughput())
	if !res.Complete() {
		var failed int
		for _, worker := range res.Workers {
			if worker.Err != nil {
				failed++
			}
		}
		textui.Fprintf(w, "Incomplete: read %v of the file (%d of %d workers failed)\n",
			textui.Portion[int64]{N: res.Bytes, D: res.Size}, failed, len(res.Workers))
	}
}

func writeVerification(w io.Writer, ok bool) {
	if ok {
		fmt.Fprint(w, "Verification PASSED: Parallel read matches sequential read\n")
	} else {
		fmt.Fprint(w, "Verification FAILED: Data mismatch detected\n")
	}
}

// writeHexdump writes dat as space-separated hex bytes, 16 per line.
func writeHexdump(w io.Writer, dat []byte) {
	fmt.Fprintf(w, "\nFirst %d bytes of buffer (hex):\n", len(dat))
	for i, b := range dat {
		fmt.Fprintf(w, "%02x ", b)
		if (i+1)%16 == 0 {
			fmt.Fprintln(w)
		}
	}
	if len(dat)%16 != 0 {
		fmt.Fprintln(w)
	}
}

type workerReport struct {
	Worker         int
	Offset         int64
	Length         int64
	Bytes          int64
	Reads          int
	ScratchAllocNS int64 `json:",omitempty"`
	ElapsedNS      int64
	Error          string `json:",omitempty"`
}

type report struct {
	File      string
	Size      int64
	Mode      string
	Threads   int
	ChunkSize int64
	BlockSize int64 `json:",omitempty"`

	AllocNS    int64
	ZeroFillNS int64
	ReadNS     int64

	Bytes      int64
	Complete   bool
	Throughput float64 // MiB/s
	Verified   *bool   `json:",omitempty"`
	Head       string  `json:",omitempty"` // hex

	Workers []workerReport
}

func newReport(res *preader.Result, verified *bool, head []byte) report {
	ret := report{
		File:      res.File,
		Size:      res.Size,
		Mode:      res.Mode.String(),
		Threads:   res.Threads,
		ChunkSize: res.ChunkSize,

		AllocNS:    res.Alloc.Nanoseconds(),
		ZeroFillNS: res.ZeroFill.Nanoseconds(),
		ReadNS:     res.Read.Nanoseconds(),

		Bytes:      res.Bytes,
		Complete:   res.Complete(),
		Throughput: res.Throughput(),
		Verified:   verified,
		Head:       hex.EncodeToString(head),

		Workers: make([]workerReport, len(res.Workers)),
	}
	if res.Mode == preader.ModeDirect {
		ret.BlockSize = res.BlockSize
	}
	for i, worker := range res.Workers {
		ret.Workers[i] = workerReport{
			Worker:         worker.Worker,
			Offset:         worker.Offset,
			Length:         worker.Length,
			Bytes:          worker.Bytes,
			Reads:          worker.Reads,
			ScratchAllocNS: worker.ScratchAlloc.Nanoseconds(),
			ElapsedNS:      worker.Elapsed.Nanoseconds(),
		}
		if worker.Err != nil {
			ret.Workers[i].Error = worker.Err.Error()
		}
	}
	return ret
}

func writeJSON(w io.Writer, obj any) (err error) {
	buffer := bufio.NewWriter(w)
	defer func() {
		if _err := buffer.Flush(); err == nil && _err != nil {
			err = _err
		}
	}()
	return lowmemjson.NewEncoder(lowmemjson.NewReEncoder(buffer, lowmemjson.ReEncoderConfig{
		Indent:                "\t",
		CompactIfUnder:        80, //nolint:gomnd // This is what looks nice.
		ForceTrailingNewlines: true,
	})).Encode(obj)
}
