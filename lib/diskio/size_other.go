// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

//go:build !linux

package diskio

import (
	"os"
)

func deviceSize(fh *os.File) (int64, error) {
	fi, err := fh.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func sectorSize(*os.File) (int, error) {
	return 0, nil
}

func dropCache(*os.File) error {
	return ErrNotSupported
}
