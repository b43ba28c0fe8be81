// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package preader

import (
	"errors"
	"fmt"
	"io"

	"git.lukeshu.com/preadbench/lib/diskio"
)

// ShortReadError is returned when a read came back with fewer bytes
// than asked for, before the end of the partition.
type ShortReadError struct {
	Offset int64
	Want   int64
	Got    int64
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("short read at offset %d: got %d of %d bytes", e.Offset, e.Got, e.Want)
}

// A rangeReader fills dst[part.Offset:part.End()] from file.  It
// returns how many bytes it copied and how many reads it issued; a
// non-nil error says why it stopped early.
type rangeReader interface {
	readRange(file diskio.File[int64], dst []byte, part Partition, progress func(int64)) (done int64, reads int, err error)
}

// bufferedAdapter reads straight into the destination; there are no
// alignment rules to follow.
type bufferedAdapter struct {
	chunkSize int64
}

var _ rangeReader = bufferedAdapter{}

func (a bufferedAdapter) readRange(file diskio.File[int64], dst []byte, part Partition, progress func(int64)) (done int64, reads int, err error) {
	cur := part.Offset
	for done < part.Length {
		want := part.Length - done
		if want > a.chunkSize {
			want = a.chunkSize
		}

		n, err := file.ReadAt(dst[cur:cur+want], cur)
		reads++
		done += int64(n)
		cur += int64(n)
		if n > 0 {
			progress(int64(n))
		}

		if err != nil && !errors.Is(err, io.EOF) {
			return done, reads, fmt.Errorf("read at offset %d: %w", cur, err)
		}
		if n == 0 {
			// EOF
			return done, reads, nil
		}
		if int64(n) < want {
			return done, reads, &ShortReadError{
				Offset: cur - int64(n),
				Want:   want,
				Got:    int64(n),
			}
		}
	}
	return done, reads, nil
}

// alignedAdapter only ever issues reads whose offset and length are
// multiples of blockSize, into the aligned scratch buffer, and copies
// out just the bytes that belong to the partition.  len(scratch) is
// the chunk size and must be a multiple of blockSize.
type alignedAdapter struct {
	blockSize int64
	scratch   []byte
}

var _ rangeReader = alignedAdapter{}

func (a alignedAdapter) readRange(file diskio.File[int64], dst []byte, part Partition, progress func(int64)) (done int64, reads int, err error) {
	chunkSize := int64(len(a.scratch))
	cur := part.Offset
	for done < part.Length {
		alignedOff := cur / a.blockSize * a.blockSize
		inBlock := cur - alignedOff
		remaining := part.Length - done

		want := remaining + inBlock
		if want > chunkSize {
			want = chunkSize
		}
		want = roundUp(want, a.blockSize)

		n, err := file.ReadAt(a.scratch[:want], alignedOff)
		reads++

		var cnt int64
		if int64(n) > inBlock {
			cnt = int64(n) - inBlock
			if cnt > remaining {
				cnt = remaining
			}
			copy(dst[cur:cur+cnt], a.scratch[inBlock:inBlock+cnt])
			done += cnt
			cur += cnt
			progress(cnt)
		}

		if err != nil && !errors.Is(err, io.EOF) {
			return done, reads, fmt.Errorf("read at offset %d: %w", alignedOff, err)
		}
		if int64(n) < want {
			// EOF, or the storage gave us less than we asked
			// for; either way this partition is finished.
			if done < part.Length {
				return done, reads, &ShortReadError{
					Offset: alignedOff,
					Want:   want,
					Got:    int64(n),
				}
			}
			return done, reads, nil
		}
	}
	return done, reads, nil
}
