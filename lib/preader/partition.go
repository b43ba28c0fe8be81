// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package preader

import (
	"fmt"
)

// A Partition is the contiguous byte range of the file that one
// worker is responsible for.
type Partition struct {
	Worker int
	Offset int64
	Length int64
}

func (p Partition) End() int64 { return p.Offset + p.Length }

func (p Partition) String() string {
	return fmt.Sprintf("#%d[%d,%d)", p.Worker, p.Offset, p.End())
}

// Partitions splits [0,size) into n contiguous, non-overlapping
// partitions of equal length, except that the last one also gets the
// remainder.  n < 1 is treated as 1.
func Partitions(size int64, n int) []Partition {
	if n < 1 {
		n = 1
	}
	base := size / int64(n)
	rem := size % int64(n)

	ret := make([]Partition, n)
	var off int64
	for i := range ret {
		length := base
		if i == n-1 {
			length += rem
		}
		ret[i] = Partition{
			Worker: i,
			Offset: off,
			Length: length,
		}
		off += length
	}
	return ret
}
