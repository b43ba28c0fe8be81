// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package preader

import (
	"context"
	"time"

	"github.com/datawire/dlib/dlog"
)

// readPartition is the body of one read worker.  It opens its own
// handle to the file and fills its partition of the buffer.  Failures
// are logged and recorded in the returned stats, never returned: a
// failed worker must not take its siblings down with it.
func (r *Reader) readPartition(ctx context.Context, dst []byte, part Partition) (stats WorkerStats) {
	ctx = dlog.WithField(ctx, "preader.worker", part.Worker)
	stats = WorkerStats{
		Phase:  PhaseRead,
		Worker: part.Worker,
		Offset: part.Offset,
		Length: part.Length,
	}
	start := time.Now()
	defer func() {
		stats.Elapsed = time.Since(start)
	}()

	file, err := r.cfg.Opener.OpenFile(r.name)
	if err != nil {
		dlog.Errorf(ctx, "failed to open file: %v", err)
		stats.Err = err
		return stats
	}
	defer func() {
		if err := file.Close(); err != nil {
			dlog.Warnf(ctx, "close: %v", err)
		}
	}()

	var adapter rangeReader
	switch r.cfg.Mode {
	case ModeDirect:
		allocStart := time.Now()
		scratch := r.scratch.Get(int(r.cfg.ChunkSize))
		stats.ScratchAlloc = time.Since(allocStart)
		defer r.scratch.Put(scratch)
		adapter = alignedAdapter{
			blockSize: r.cfg.BlockSize,
			scratch:   scratch,
		}
	default:
		adapter = bufferedAdapter{
			chunkSize: r.cfg.ChunkSize,
		}
	}

	stats.Bytes, stats.Reads, stats.Err = adapter.readRange(file, dst, part, r.cfg.Observer.Progress)
	if stats.Err != nil {
		dlog.Errorf(ctx, "stopped after %v of %v bytes: %v", stats.Bytes, stats.Length, stats.Err)
	}
	return stats
}
