// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package diskio

import (
	"io"
)

type statefulFile[A ~int64] struct {
	inner File[A]
	pos   A
}

var (
	_ File[assertAddr] = (*statefulFile[assertAddr])(nil)
	_ io.Reader        = (*statefulFile[assertAddr])(nil)
)

// NewStatefulFile wraps a File with a read position, so that it can
// be consumed sequentially as an io.Reader.
func NewStatefulFile[A ~int64](file File[A]) *statefulFile[A] {
	return &statefulFile[A]{
		inner: file,
	}
}

func (sf *statefulFile[A]) Name() string                          { return sf.inner.Name() }
func (sf *statefulFile[A]) Size() A                               { return sf.inner.Size() }
func (sf *statefulFile[A]) Close() error                          { return sf.inner.Close() }
func (sf *statefulFile[A]) ReadAt(dat []byte, off A) (int, error) { return sf.inner.ReadAt(dat, off) }

func (sf *statefulFile[A]) Read(dat []byte) (n int, err error) {
	n, err = sf.ReadAt(dat, sf.pos)
	sf.pos += A(n)
	if n > 0 && err == io.EOF {
		err = nil
	}
	return n, err
}
