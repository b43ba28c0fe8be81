// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"sync"
	"time"

	"github.com/datawire/dlib/dlog"

	"git.lukeshu.com/preadbench/lib/preader"
	"git.lukeshu.com/preadbench/lib/textui"
)

// logObserver turns preader events into log lines, and (if interval
// > 0) periodically logs how much of the file has been read.
type logObserver struct {
	total int64

	mu       sync.Mutex
	done     int64
	progress *textui.Progress[textui.Portion[int64]]
}

var _ preader.Observer = (*logObserver)(nil)

func newLogObserver(ctx context.Context, interval time.Duration) *logObserver {
	ret := new(logObserver)
	if interval > 0 {
		ret.progress = textui.NewProgress[textui.Portion[int64]](ctx, dlog.LogLevelInfo, interval)
	}
	return ret
}

// PhaseDone implements preader.Observer.
func (o *logObserver) PhaseDone(ctx context.Context, stats preader.PhaseStats) {
	switch stats.Phase {
	case preader.PhaseAlloc:
		dlog.Infof(ctx, "buffer allocation: %d in %v", textui.IEC(stats.Bytes, "B"), stats.Elapsed)
	case preader.PhaseZeroFill:
		dlog.Infof(ctx, "parallel zero-fill: %d workers in %v", stats.Workers, stats.Elapsed)
	case preader.PhaseRead:
		dlog.Infof(ctx, "parallel read: %d bytes by %d workers in %v", stats.Bytes, stats.Workers, stats.Elapsed)
	case preader.PhaseVerify:
		dlog.Infof(ctx, "sequential re-read: %d bytes in %v", stats.Bytes, stats.Elapsed)
	}
}

// WorkerDone implements preader.Observer.
func (o *logObserver) WorkerDone(ctx context.Context, stats preader.WorkerStats) {
	switch stats.Phase {
	case preader.PhaseZeroFill:
		dlog.Debugf(ctx, "zero-filled %d bytes in %v", stats.Bytes, stats.Elapsed)
	case preader.PhaseRead:
		if stats.ScratchAlloc > 0 {
			dlog.Debugf(ctx, "scratch buffer allocation: %v", stats.ScratchAlloc)
		}
		if stats.Err != nil {
			dlog.Warnf(ctx, "failed: processed %d of %d bytes in %d chunks (%v)",
				stats.Bytes, stats.Length, stats.Reads, stats.Elapsed)
			return
		}
		dlog.Infof(ctx, "completed: processed %d bytes in %d chunks (%v)",
			stats.Bytes, stats.Reads, stats.Elapsed)
	}
}

// Progress implements preader.Observer.
func (o *logObserver) Progress(n int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	// Set under the same lock as the count, so that published
	// values never decrease.
	o.done += n
	if o.progress != nil {
		o.progress.Set(textui.Portion[int64]{N: o.done, D: o.total})
	}
}

// Done stops the progress logger.  It is safe to call more than
// once.
func (o *logObserver) Done() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.progress != nil {
		o.progress.Done()
		o.progress = nil
	}
}
