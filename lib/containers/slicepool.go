// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package containers

import (
	"git.lukeshu.com/go/typedsync"
)

// SlicePool is a pool of reusable slices.  Slices returned by Get
// hold whatever the previous user left in them.
type SlicePool[T any] struct {
	// Make allocates a new slice of the given length; if nil,
	// `make([]T, size)` is used.  Set this to control how the
	// memory is obtained (for example, to get aligned memory).
	Make func(size int) []T

	// TODO(lukeshu): Consider bucketing slices by size, to
	// increase odds that the `cap(ret) >= size` check passes.
	inner typedsync.Pool[[]T]
}

func (p *SlicePool[T]) Get(size int) []T {
	if size == 0 {
		return nil
	}
	ret, ok := p.inner.Get()
	if ok && cap(ret) >= size {
		return ret[:size]
	}
	if p.Make != nil {
		return p.Make(size)
	}
	return make([]T, size)
}

func (p *SlicePool[T]) Put(slice []T) {
	if slice == nil {
		return
	}
	p.inner.Put(slice)
}
