// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package preader

import (
	"fmt"
	"math"

	"github.com/datawire/dlib/derror"

	"git.lukeshu.com/preadbench/lib/diskio"
)

// A Buffer is the destination of a parallel read.  It remembers how
// its memory was obtained.
type Buffer struct {
	dat     []byte
	aligned bool
}

func allocBuffer(size int64, aligned bool) (_ *Buffer, err error) {
	if size < 1 || size > math.MaxInt {
		return nil, fmt.Errorf("invalid buffer size: %d", size)
	}
	defer func() {
		if _err := derror.PanicToError(recover()); _err != nil {
			err = _err
		}
	}()
	buf := &Buffer{
		aligned: aligned,
	}
	if aligned {
		buf.dat = diskio.AlignedBlock(int(size))
	} else {
		buf.dat = make([]byte, size)
	}
	return buf, nil
}

// Bytes returns the buffer contents, or nil once the buffer has been
// released.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.dat
}

// Len is len(b.Bytes()).
func (b *Buffer) Len() int { return len(b.Bytes()) }

// Aligned returns whether the buffer was obtained from the aligned
// allocator.
func (b *Buffer) Aligned() bool {
	return b != nil && b.aligned
}

// Release drops the buffer's memory.  Memory from either allocator
// is garbage-collected, so this only drops the reference.  It is safe
// to call more than once.
func (b *Buffer) Release() {
	if b == nil {
		return
	}
	b.dat = nil
}

func zero(dat []byte) {
	for i := range dat {
		dat[i] = 0
	}
}
