// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package diskio

import (
	"errors"
	"fmt"
	"os"
)

var ErrNotSupported = errors.New("not supported on this platform")

// StatSize returns the size in bytes of an open file.  Block devices,
// which stat(2) reports as zero-length, are asked for their real size.
func StatSize(fh *os.File) (int64, error) {
	fi, err := fh.Stat()
	if err != nil {
		return 0, err
	}
	if fi.Mode()&os.ModeDevice != 0 && fi.Mode()&os.ModeCharDevice == 0 {
		return deviceSize(fh)
	}
	return fi.Size(), nil
}

// Size is StatSize for a file that is not open yet.
func Size(name string) (int64, error) {
	fh, err := os.Open(name)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = fh.Close()
	}()
	size, err := StatSize(fh)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return size, nil
}

// DropCache asks the kernel to evict the cached pages of the named
// file, so that the next buffered read goes to storage.
func DropCache(name string) error {
	fh, err := os.Open(name)
	if err != nil {
		return err
	}
	defer func() {
		_ = fh.Close()
	}()
	if err := dropCache(fh); err != nil {
		return fmt.Errorf("%s: drop cache: %w", name, err)
	}
	return nil
}

// SectorSize returns the logical sector size of the named block
// device, or 0 if the file is not a block device or the platform
// can't tell.
func SectorSize(name string) (int, error) {
	fh, err := os.Open(name)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = fh.Close()
	}()
	fi, err := fh.Stat()
	if err != nil {
		return 0, err
	}
	if fi.Mode()&os.ModeDevice == 0 || fi.Mode()&os.ModeCharDevice != 0 {
		return 0, nil
	}
	return sectorSize(fh)
}
