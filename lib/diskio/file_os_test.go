// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package diskio_test

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lukeshu.com/preadbench/lib/diskio"
)

func writeTestFile(t *testing.T, size int) (string, []byte) {
	t.Helper()
	content := make([]byte, size)
	for i := range content {
		content[i] = byte(i*7 + i/251)
	}
	name := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(name, content, 0o600))
	return name, content
}

func TestBufferedOpener(t *testing.T) {
	t.Parallel()
	name, content := writeTestFile(t, 10000)

	file, err := diskio.BufferedOpener[int64]{}.OpenFile(name)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, file.Close())
	}()

	assert.Equal(t, name, file.Name())
	assert.Equal(t, int64(len(content)), file.Size())

	dat := make([]byte, 100)
	n, err := file.ReadAt(dat, 5000)
	assert.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, content[5000:5100], dat)

	n, err = file.ReadAt(dat, int64(len(content))-10)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 10, n)
	assert.Equal(t, content[len(content)-10:], dat[:n])
}

func TestOpenMissing(t *testing.T) {
	t.Parallel()
	name := filepath.Join(t.TempDir(), "does-not-exist")
	_, err := diskio.BufferedOpener[int64]{}.OpenFile(name)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	_, err = diskio.DirectOpener[int64]{}.OpenFile(name)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	_, err = diskio.Size(name)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSize(t *testing.T) {
	t.Parallel()
	name, content := writeTestFile(t, 12345)
	size, err := diskio.Size(name)
	assert.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)

	sectorSize, err := diskio.SectorSize(name)
	assert.NoError(t, err)
	assert.Equal(t, 0, sectorSize, "regular files have no sector size")
}

func TestDirectOpener(t *testing.T) {
	t.Parallel()
	name, content := writeTestFile(t, 3*4096+100)

	file, err := diskio.DirectOpener[int64]{}.OpenFile(name)
	if errors.Is(err, syscall.EINVAL) {
		t.Skipf("filesystem does not support direct I/O: %v", err)
	}
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, file.Close())
	}()

	dat := diskio.AlignedBlock(2 * 4096)
	n, err := file.ReadAt(dat, 4096)
	if errors.Is(err, syscall.EINVAL) {
		t.Skipf("filesystem does not support direct I/O: %v", err)
	}
	assert.NoError(t, err)
	assert.Equal(t, len(dat), n)
	assert.Equal(t, content[4096:3*4096], dat)

	n, err = file.ReadAt(dat, 3*4096)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 100, n)
	assert.Equal(t, content[3*4096:], dat[:n])
}

func TestAlignedBlock(t *testing.T) {
	t.Parallel()
	for _, size := range []int{1, 4095, 4096, 1 << 20} {
		dat := diskio.AlignedBlock(size)
		assert.Len(t, dat, size)
		assert.Equal(t, make([]byte, size), dat)
	}
}
