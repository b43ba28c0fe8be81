// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package preader

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lukeshu.com/preadbench/lib/diskio"
)

type readCall struct {
	Off int64
	Len int
}

type memFile struct {
	*bytes.Reader
	calls []readCall

	// shortBy, if >0, makes every ReadAt return that many bytes
	// fewer than it could, with no error.
	shortBy int
}

var _ diskio.File[int64] = (*memFile)(nil)

func newMemFile(content []byte) *memFile {
	return &memFile{Reader: bytes.NewReader(content)}
}

func (*memFile) Name() string { return "mem" }
func (*memFile) Close() error { return nil }

func (f *memFile) ReadAt(dat []byte, off int64) (int, error) {
	f.calls = append(f.calls, readCall{Off: off, Len: len(dat)})
	if f.shortBy > 0 && len(dat) > f.shortBy {
		return f.Reader.ReadAt(dat[:len(dat)-f.shortBy], off)
	}
	return f.Reader.ReadAt(dat, off)
}

func testContent(size int) []byte {
	content := make([]byte, size)
	rand.New(rand.NewSource(int64(size))).Read(content) //nolint:gosec // Not crypto.
	return content
}

func checkAlignedRead(t *testing.T, size, blockSize, chunkSize int, part Partition) {
	t.Helper()
	content := testContent(size)
	file := newMemFile(content)
	dst := make([]byte, size)
	var progress int64

	adapter := alignedAdapter{
		blockSize: int64(blockSize),
		scratch:   diskio.AlignedBlock(chunkSize),
	}
	done, reads, err := adapter.readRange(file, dst, part, func(n int64) { progress += n })
	assert.NoError(t, err)
	assert.Equal(t, part.Length, done)
	assert.Equal(t, done, progress)
	assert.Equal(t, len(file.calls), reads)

	for _, call := range file.calls {
		assert.Zero(t, call.Off%int64(blockSize), "offset %v is not aligned", call.Off)
		assert.Zero(t, call.Len%blockSize, "length %v is not aligned", call.Len)
		assert.LessOrEqual(t, call.Len, chunkSize)
	}
	assert.Equal(t, content[part.Offset:part.End()], dst[part.Offset:part.End()])
	// Nothing outside of the partition may be touched.
	assert.Equal(t, make([]byte, part.Offset), dst[:part.Offset])
	assert.Equal(t, make([]byte, int64(size)-part.End()), dst[part.End():])
}

func TestAlignedAdapter(t *testing.T) {
	t.Parallel()
	type TestCase struct {
		Size      int
		BlockSize int
		ChunkSize int
		Part      Partition
	}
	testcases := map[string]TestCase{
		"aligned":           {Size: 16384, BlockSize: 4096, ChunkSize: 8192, Part: Partition{Offset: 4096, Length: 8192}},
		"misaligned-start":  {Size: 16384, BlockSize: 4096, ChunkSize: 8192, Part: Partition{Offset: 100, Length: 8192}},
		"misaligned-both":   {Size: 20000, BlockSize: 4096, ChunkSize: 4096, Part: Partition{Offset: 4095, Length: 9000}},
		"tail-of-file":      {Size: 10037, BlockSize: 4096, ChunkSize: 8192, Part: Partition{Offset: 3345, Length: 10037 - 3345}},
		"smaller-than-blk":  {Size: 37, BlockSize: 4096, ChunkSize: 4096, Part: Partition{Offset: 0, Length: 37}},
		"inside-one-block":  {Size: 4096, BlockSize: 512, ChunkSize: 512, Part: Partition{Offset: 10, Length: 20}},
		"empty-partition":   {Size: 100, BlockSize: 4096, ChunkSize: 4096, Part: Partition{Offset: 50, Length: 0}},
		"chunk-equals-blk":  {Size: 5000, BlockSize: 512, ChunkSize: 512, Part: Partition{Offset: 1, Length: 4998}},
		"whole-file-1-read": {Size: 8192, BlockSize: 4096, ChunkSize: 1 << 20, Part: Partition{Offset: 0, Length: 8192}},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			checkAlignedRead(t, tc.Size, tc.BlockSize, tc.ChunkSize, tc.Part)
		})
	}
}

func FuzzAlignedAdapter(f *testing.F) {
	f.Add(uint16(10037), uint16(3345), uint16(6692), uint8(12), uint8(2))
	f.Add(uint16(37), uint16(0), uint16(37), uint8(12), uint8(1))
	f.Fuzz(func(t *testing.T, size, start, length uint16, blockShift, chunkBlocks uint8) {
		if size == 0 || int(start)+int(length) > int(size) {
			t.Skip()
		}
		blockSize := 1 << (blockShift%13 + 1) // 2 ... 8192
		chunkSize := blockSize * (int(chunkBlocks%8) + 1)
		checkAlignedRead(t, int(size), blockSize, chunkSize, Partition{
			Offset: int64(start),
			Length: int64(length),
		})
	})
}

func TestAlignedAdapterShortRead(t *testing.T) {
	t.Parallel()
	content := testContent(16384)
	file := newMemFile(content)
	file.shortBy = 1000
	dst := make([]byte, len(content))

	adapter := alignedAdapter{
		blockSize: 4096,
		scratch:   diskio.AlignedBlock(8192),
	}
	part := Partition{Offset: 100, Length: 16000}
	done, reads, err := adapter.readRange(file, dst, part, func(int64) {})
	var shortErr *ShortReadError
	require.True(t, errors.As(err, &shortErr), "err=%v", err)
	assert.Equal(t, 1, reads, "short reads are not retried")
	assert.Equal(t, int64(8192-1000-100), done)
	assert.Equal(t, content[100:100+done], dst[100:100+done])
	assert.Equal(t, make([]byte, int64(len(content))-100-done), dst[100+done:])
}

func TestBufferedAdapter(t *testing.T) {
	t.Parallel()
	content := testContent(10000)
	file := newMemFile(content)
	dst := make([]byte, len(content))
	var progress int64

	adapter := bufferedAdapter{chunkSize: 3000}
	part := Partition{Offset: 1234, Length: 10000 - 1234}
	done, reads, err := adapter.readRange(file, dst, part, func(n int64) { progress += n })
	assert.NoError(t, err)
	assert.Equal(t, part.Length, done)
	assert.Equal(t, done, progress)
	assert.Equal(t, 3, reads)
	assert.Equal(t, []readCall{
		{Off: 1234, Len: 3000},
		{Off: 4234, Len: 3000},
		{Off: 7234, Len: 2766},
	}, file.calls)
	assert.Equal(t, content[1234:], dst[1234:])
	assert.Equal(t, make([]byte, 1234), dst[:1234])
}

func TestBufferedAdapterShortRead(t *testing.T) {
	t.Parallel()
	content := testContent(10000)
	file := newMemFile(content)
	file.shortBy = 10
	dst := make([]byte, len(content))

	adapter := bufferedAdapter{chunkSize: 4000}
	done, reads, err := adapter.readRange(file, dst, Partition{Length: 10000}, func(int64) {})
	var shortErr *ShortReadError
	require.True(t, errors.As(err, &shortErr), "err=%v", err)
	assert.Equal(t, int64(0), shortErr.Offset)
	assert.Equal(t, int64(4000), shortErr.Want)
	assert.Equal(t, int64(3990), shortErr.Got)
	assert.Equal(t, 1, reads, "short reads are not retried")
	assert.Equal(t, int64(3990), done)
}

func TestBufferedAdapterEOF(t *testing.T) {
	t.Parallel()
	// The partition claims more than the file has; this is what
	// happens if the file shrinks after it was sized.
	content := testContent(8000)
	file := newMemFile(content)
	dst := make([]byte, 12000)

	adapter := bufferedAdapter{chunkSize: 4000}
	done, reads, err := adapter.readRange(file, dst, Partition{Length: 12000}, func(int64) {})
	assert.NoError(t, err)
	assert.Equal(t, int64(8000), done)
	assert.Equal(t, 3, reads)
	assert.Equal(t, content, dst[:8000])
}
