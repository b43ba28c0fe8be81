// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"git.lukeshu.com/preadbench/lib/preader"
)

type positionalArgs struct {
	File      string
	Threads   int
	ChunkSize int64
	Direct    bool
}

const defaultChunkSizeKiB = preader.DefaultChunkSize / 1024

// parseArgs parses `FILENAME [NUM_THREADS [READ_CHUNK_SIZE_KB
// [USE_ODIRECT]]]`.  A thread count or chunk size of 0 means the
// default.
func parseArgs(args []string, defaultThreads int) (positionalArgs, error) {
	ret := positionalArgs{
		Threads:   defaultThreads,
		ChunkSize: preader.DefaultChunkSize,
	}
	if len(args) < 1 {
		return ret, fmt.Errorf("missing FILENAME")
	}
	ret.File = args[0]

	if len(args) > 1 {
		n, err := strconv.ParseUint(args[1], 10, 31)
		if err != nil {
			return ret, fmt.Errorf("invalid NUM_THREADS: %w", err)
		}
		ret.Threads = int(n)
	}
	if ret.Threads < 1 {
		ret.Threads = 1
	}

	if len(args) > 2 {
		kib, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return ret, fmt.Errorf("invalid READ_CHUNK_SIZE_KB: %w", err)
		}
		if kib == 0 {
			kib = defaultChunkSizeKiB
		}
		if kib > math.MaxInt32/1024 {
			return ret, fmt.Errorf("invalid READ_CHUNK_SIZE_KB: %d is too large", kib)
		}
		ret.ChunkSize = int64(kib) * 1024
	}

	if len(args) > 3 {
		direct, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			return ret, fmt.Errorf("invalid USE_ODIRECT: %w", err)
		}
		ret.Direct = direct != 0
	}

	return ret, nil
}

// sizeFlag is a pflag.Value for a power-of-2 byte count, accepting
// human-friendly input such as "4KiB".
type sizeFlag int64

var _ pflag.Value = (*sizeFlag)(nil)

// Set implements pflag.Value.
func (f *sizeFlag) Set(str string) error {
	n, err := humanize.ParseBytes(str)
	if err != nil {
		return err
	}
	if n == 0 || n&(n-1) != 0 {
		return fmt.Errorf("%q is not a power of 2", str)
	}
	if n > math.MaxInt32 {
		return fmt.Errorf("%q is too large", str)
	}
	*f = sizeFlag(n)
	return nil
}

// String implements pflag.Value.
func (f *sizeFlag) String() string { return humanize.IBytes(uint64(*f)) }

// Type implements pflag.Value.
func (*sizeFlag) Type() string { return "size" }
