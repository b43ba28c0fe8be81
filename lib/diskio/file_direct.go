// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package diskio

import (
	"os"

	"github.com/ncw/directio"
)

// AlignSize is the memory alignment that buffers handed to a direct
// File must satisfy.  It is 0 on platforms that have no memory
// alignment requirement.
const AlignSize = directio.AlignSize

// DirectOpener opens files such that reads bypass the page cache
// (O_DIRECT on Linux, F_NOCACHE on macOS).  Reads from such a File
// must use offsets and lengths that are multiples of the device block
// size, into memory from AlignedBlock.
type DirectOpener[A ~int64] struct{}

var _ Opener[assertAddr] = DirectOpener[assertAddr]{}

func (DirectOpener[A]) OpenFile(name string) (File[A], error) {
	fh, err := directio.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return &OSFile[A]{File: fh}, nil
}

// AlignedBlock returns a zeroed slice of length size whose first byte
// is aligned to AlignSize.
func AlignedBlock(size int) []byte {
	return directio.AlignedBlock(size)
}
