// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package preader loads a whole file into memory using several
// concurrent readers, each filling its own slice of one shared
// buffer, optionally bypassing the page cache.
package preader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"

	"git.lukeshu.com/preadbench/lib/containers"
	"git.lukeshu.com/preadbench/lib/diskio"
)

var (
	ErrEmptyFile = errors.New("file is empty")
	ErrNotRead   = errors.New("file has not been read yet")
)

// A Reader loads one file.  The file's size is sampled once, by New.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	name string
	size int64
	cfg  Config

	buf     *Buffer
	scratch containers.SlicePool[byte]
}

// New returns a Reader for the named file.  It fails if the file does
// not exist or is empty.
func New(name string, cfg Config) (*Reader, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	size, err := diskio.Size(name)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyFile)
	}
	return &Reader{
		name: name,
		size: size,
		cfg:  cfg,
		scratch: containers.SlicePool[byte]{
			Make: diskio.AlignedBlock,
		},
	}, nil
}

func (r *Reader) Name() string { return r.name }
func (r *Reader) Size() int64  { return r.size }

// Config returns the effective configuration, with defaults filled in.
func (r *Reader) Config() Config { return r.cfg }

// Bytes returns the buffer filled by the most recent Read, or nil.
func (r *Reader) Bytes() []byte { return r.buf.Bytes() }

// Buffer returns the buffer filled by the most recent Read, or nil.
// It remains owned by the Reader.
func (r *Reader) Buffer() *Buffer { return r.buf }

// Close releases the buffer.
func (r *Reader) Close() error {
	r.buf.Release()
	r.buf = nil
	return nil
}

// Result is what a Read did.
type Result struct {
	File      string
	Size      int64
	Mode      Mode
	Threads   int
	ChunkSize int64
	BlockSize int64

	Alloc    time.Duration
	ZeroFill time.Duration
	Read     time.Duration

	// Bytes is the total number of bytes that the workers copied
	// into the buffer.
	Bytes   int64
	Workers []WorkerStats
}

// Complete returns whether every byte of the file was read.
func (res *Result) Complete() bool {
	return res.Bytes == res.Size
}

// Throughput returns the read rate in MiB/s.
func (res *Result) Throughput() float64 {
	secs := res.Read.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(res.Size) / (1024 * 1024) / secs
}

// Read allocates a fresh buffer (releasing any previous one), zeroes
// it in parallel, and then fills it in parallel.
//
// Only setup problems are returned as errors.  A worker that fails
// logs the problem and stops; its share of the buffer stays partially
// zero, and Result.Complete() reports false.
func (r *Reader) Read(ctx context.Context) (*Result, error) {
	ctx = dlog.WithField(ctx, "preader.file", r.name)
	res := &Result{
		File:      r.name,
		Size:      r.size,
		Mode:      r.cfg.Mode,
		Threads:   r.cfg.Threads,
		ChunkSize: r.cfg.ChunkSize,
		BlockSize: r.cfg.BlockSize,
	}

	r.buf.Release()
	r.buf = nil

	allocStart := time.Now()
	buf, err := allocBuffer(r.size, r.cfg.Mode == ModeDirect)
	if err != nil {
		return nil, fmt.Errorf("%s: allocate buffer: %w", r.name, err)
	}
	r.buf = buf
	res.Alloc = time.Since(allocStart)
	r.cfg.Observer.PhaseDone(ctx, PhaseStats{
		Phase:   PhaseAlloc,
		Workers: 1,
		Bytes:   r.size,
		Elapsed: res.Alloc,
	})

	parts := Partitions(r.size, r.cfg.Threads)

	res.ZeroFill, err = r.fanOut(ctx, PhaseZeroFill, parts, func(ctx context.Context, part Partition) WorkerStats {
		start := time.Now()
		zero(buf.dat[part.Offset:part.End()])
		return WorkerStats{
			Phase:   PhaseZeroFill,
			Worker:  part.Worker,
			Offset:  part.Offset,
			Length:  part.Length,
			Bytes:   part.Length,
			Elapsed: time.Since(start),
		}
	})
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	res.Workers = make([]WorkerStats, len(parts))
	res.Read, err = r.fanOut(ctx, PhaseRead, parts, func(ctx context.Context, part Partition) WorkerStats {
		stats := r.readPartition(ctx, buf.dat, part)
		mu.Lock()
		res.Workers[part.Worker] = stats
		res.Bytes += stats.Bytes
		mu.Unlock()
		return stats
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// fanOut runs fn once per partition, each in its own goroutine, and
// waits for all of them.
func (r *Reader) fanOut(ctx context.Context, phase Phase, parts []Partition, fn func(context.Context, Partition) WorkerStats) (time.Duration, error) {
	ctx = dlog.WithField(ctx, "preader.phase", phase)
	var bytes int64
	var mu sync.Mutex

	start := time.Now()
	grp := dgroup.NewGroup(ctx, dgroup.GroupConfig{})
	for _, part := range parts {
		part := part
		grp.Go(fmt.Sprintf("%s-%d", phase, part.Worker), func(ctx context.Context) error {
			stats := fn(ctx, part)
			mu.Lock()
			bytes += stats.Bytes
			mu.Unlock()
			r.cfg.Observer.WorkerDone(ctx, stats)
			return nil
		})
	}
	err := grp.Wait()
	elapsed := time.Since(start)
	if err != nil {
		return elapsed, fmt.Errorf("%s: %w", phase, err)
	}

	r.cfg.Observer.PhaseDone(ctx, PhaseStats{
		Phase:   phase,
		Workers: len(parts),
		Bytes:   bytes,
		Elapsed: elapsed,
	})
	return elapsed, nil
}
