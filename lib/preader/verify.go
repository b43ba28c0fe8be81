// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package preader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/datawire/dlib/dlog"

	"git.lukeshu.com/preadbench/lib/diskio"
)

// Verify re-reads the file sequentially through the page cache and
// reports whether it matches the buffer filled by Read.
//
// A mismatch, or a reference read that comes up short, is reported as
// false rather than as an error; errors are for when the file can't be
// opened or read at all.
func (r *Reader) Verify(ctx context.Context) (bool, error) {
	ctx = dlog.WithField(ctx, "preader.file", r.name)
	ctx = dlog.WithField(ctx, "preader.phase", PhaseVerify)
	got := r.Bytes()
	if got == nil {
		return false, ErrNotRead
	}
	start := time.Now()

	file, err := diskio.BufferedOpener[int64]{}.OpenFile(r.name)
	if err != nil {
		return false, fmt.Errorf("verify: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	want := make([]byte, r.size)
	n, err := io.ReadFull(diskio.NewStatefulFile[int64](file), want)
	r.cfg.Observer.PhaseDone(ctx, PhaseStats{
		Phase:   PhaseVerify,
		Workers: 1,
		Bytes:   int64(n),
		Elapsed: time.Since(start),
	})
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF):
		dlog.Errorf(ctx, "reference read came up short: got %v of %v bytes", n, r.size)
		return false, nil
	case err != nil:
		return false, fmt.Errorf("verify: %w", err)
	}

	if off := firstMismatch(got, want); off >= 0 {
		dlog.Errorf(ctx, "first mismatch at offset %v", off)
		return false, nil
	}
	return true, nil
}

// firstMismatch returns the first offset at which a and b differ, or
// -1 if they are equal.
func firstMismatch(a, b []byte) int64 {
	if len(a) != len(b) {
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		if off := firstMismatch(a[:n], b[:n]); off >= 0 {
			return off
		}
		return int64(n)
	}
	const stride = 4096
	for lo := 0; lo < len(a); lo += stride {
		hi := lo + stride
		if hi > len(a) {
			hi = len(a)
		}
		if bytes.Equal(a[lo:hi], b[lo:hi]) {
			continue
		}
		for i := lo; i < hi; i++ {
			if a[i] != b[i] {
				return int64(i)
			}
		}
	}
	return -1
}
