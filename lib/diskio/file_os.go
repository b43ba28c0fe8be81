// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package diskio

import (
	"os"
)

type OSFile[A ~int64] struct {
	*os.File
}

var _ File[assertAddr] = (*OSFile[assertAddr])(nil)

func (f *OSFile[A]) Size() A {
	size, err := StatSize(f.File)
	if err != nil {
		return 0
	}
	return A(size)
}

func (f *OSFile[A]) ReadAt(dat []byte, paddr A) (int, error) {
	return f.File.ReadAt(dat, int64(paddr))
}

// BufferedOpener opens files for ordinary reads through the page
// cache.
type BufferedOpener[A ~int64] struct{}

var _ Opener[assertAddr] = BufferedOpener[assertAddr]{}

func (BufferedOpener[A]) OpenFile(name string) (File[A], error) {
	fh, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return &OSFile[A]{File: fh}, nil
}
