// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

//go:build linux

package diskio

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

func deviceSize(fh *os.File) (int64, error) {
	var size uint64
	//nolint:gosec // ioctl(2) takes a pointer.
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fh.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return 0, fmt.Errorf("ioctl(BLKGETSIZE64): %w", errno)
	}
	return int64(size), nil
}

func sectorSize(fh *os.File) (int, error) {
	size, err := unix.IoctlGetInt(int(fh.Fd()), unix.BLKSSZGET)
	if err != nil {
		return 0, fmt.Errorf("ioctl(BLKSSZGET): %w", err)
	}
	return size, nil
}

func dropCache(fh *os.File) error {
	return unix.Fadvise(int(fh.Fd()), 0, 0, unix.FADV_DONTNEED)
}
