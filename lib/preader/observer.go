// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package preader

import (
	"context"
	"time"
)

// Phase names a step of Read or Verify in PhaseStats and WorkerStats.
type Phase string

const (
	PhaseAlloc    Phase = "alloc"
	PhaseZeroFill Phase = "zero-fill"
	PhaseRead     Phase = "read"
	PhaseVerify   Phase = "verify"
)

// PhaseStats describes one completed phase of a Read or Verify.
type PhaseStats struct {
	Phase   Phase
	Workers int
	Bytes   int64
	Elapsed time.Duration
}

// WorkerStats describes what one worker did during one phase.
type WorkerStats struct {
	Phase  Phase
	Worker int
	Offset int64
	Length int64

	// Bytes is how many bytes of [Offset,Offset+Length) landed in
	// the buffer.
	Bytes int64
	// Reads is the number of ReadAt calls issued.
	Reads int
	// ScratchAlloc is how long it took to get the aligned scratch
	// buffer (direct mode only).
	ScratchAlloc time.Duration
	Elapsed      time.Duration

	// Err is whatever stopped the worker early, or nil.
	Err error `json:"-"`
}

// An Observer receives timing and progress information from a Reader.
// All methods may be called concurrently from worker goroutines.
type Observer interface {
	PhaseDone(ctx context.Context, stats PhaseStats)
	WorkerDone(ctx context.Context, stats WorkerStats)
	// Progress is called each time n more bytes have been copied
	// into the buffer during PhaseRead.
	Progress(n int64)
}

// NopObserver is an Observer that ignores everything.
type NopObserver struct{}

var _ Observer = NopObserver{}

func (NopObserver) PhaseDone(context.Context, PhaseStats)   {}
func (NopObserver) WorkerDone(context.Context, WorkerStats) {}
func (NopObserver) Progress(int64)                          {}
