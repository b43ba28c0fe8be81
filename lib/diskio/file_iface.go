// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package diskio is the positioned-read layer: a small File interface
// and the Openers that produce Files, either through the page cache or
// around it.
package diskio

import (
	"io"
)

type File[A ~int64] interface {
	Name() string
	Size() A
	Close() error
	ReadAt(p []byte, off A) (n int, err error)
}

// An Opener opens independent read-only handles to a named file.
// Every call returns a new handle; handles are never shared between
// callers.
type Opener[A ~int64] interface {
	OpenFile(name string) (File[A], error)
}

type assertAddr int64

var _ io.ReaderAt = File[int64](nil)
