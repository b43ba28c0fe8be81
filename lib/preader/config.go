// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package preader

import (
	"fmt"
	"math"

	"git.lukeshu.com/preadbench/lib/diskio"
)

// Mode selects how workers read from the file.
type Mode int

const (
	// ModeBuffered reads through the page cache, straight into the
	// destination buffer.
	ModeBuffered Mode = iota
	// ModeDirect bypasses the page cache; every read is aligned to
	// Config.BlockSize and goes through a per-worker scratch
	// buffer.
	ModeDirect
)

func (m Mode) String() string {
	switch m {
	case ModeBuffered:
		return "buffered"
	case ModeDirect:
		return "direct"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

const (
	DefaultBlockSize = 4096
	DefaultChunkSize = 1024 * 1024
)

// Config is the configuration of a Reader.  The zero value is usable:
// one buffered worker reading 1MiB at a time.
type Config struct {
	// Threads is the number of workers; values < 1 mean 1.
	Threads int
	// ChunkSize caps the number of bytes asked for by a single
	// read call; values < 1 mean DefaultChunkSize.  In ModeDirect
	// it is rounded up to a multiple of BlockSize.
	ChunkSize int64
	// BlockSize is the alignment that ModeDirect reads must obey;
	// values < 1 mean DefaultBlockSize.
	BlockSize int64
	Mode      Mode

	// Opener opens each worker's file handle.  If nil, a
	// diskio.DirectOpener is used for ModeDirect and a
	// diskio.BufferedOpener otherwise.
	Opener diskio.Opener[int64] `json:"-"`
	// Observer is told about timing and progress.  If nil, nothing
	// is reported.
	Observer Observer `json:"-"`
}

func roundUp(x, align int64) int64 {
	return (x + align - 1) / align * align
}

func (cfg Config) normalize() (Config, error) {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.BlockSize < 1 {
		cfg.BlockSize = DefaultBlockSize
	}
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = DefaultChunkSize
	}
	switch cfg.Mode {
	case ModeBuffered:
		if cfg.Opener == nil {
			cfg.Opener = diskio.BufferedOpener[int64]{}
		}
	case ModeDirect:
		cfg.ChunkSize = roundUp(cfg.ChunkSize, cfg.BlockSize)
		if cfg.Opener == nil {
			cfg.Opener = diskio.DirectOpener[int64]{}
		}
	default:
		return cfg, fmt.Errorf("invalid mode: %v", cfg.Mode)
	}
	if cfg.ChunkSize > math.MaxInt32 {
		return cfg, fmt.Errorf("chunk size too large: %d", cfg.ChunkSize)
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}
	return cfg, nil
}
