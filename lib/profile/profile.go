// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package profile writes profiling information from the Go runtime
// to files, for use with `go tool pprof` and `go tool trace`.
package profile

import (
	"io"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

type StopFunc = func() error

type startFunc = func(io.Writer) (StopFunc, error)

// CPU starts a CPU profile that is written to w, and returns a
// function to be called on shutdown.
func CPU(w io.Writer) (StopFunc, error) {
	if err := pprof.StartCPUProfile(w); err != nil {
		return nil, err
	}
	return func() error {
		pprof.StopCPUProfile()
		return nil
	}, nil
}

// Trace starts an execution trace that is written to w, and returns a
// function to be called on shutdown.
func Trace(w io.Writer) (StopFunc, error) {
	if err := trace.Start(w); err != nil {
		return nil, err
	}
	return func() error {
		trace.Stop()
		return nil
	}, nil
}

// The Go runtime's built-in named profiles.
const (
	ProfileGoroutine    = "goroutine"
	ProfileThreadCreate = "threadcreate"
	ProfileHeap         = "heap"
	ProfileAllocs       = "allocs"
	ProfileBlock        = "block"
	ProfileMutex        = "mutex"
)

// Profile returns a function that, when called on shutdown, writes
// the named profile to w.
//
// The block and mutex profiles are empty unless the runtime has been
// told to sample those events, so asking for one of them turns
// sampling on (at full rate) until the returned function is called.
func Profile(w io.Writer, name string) (StopFunc, error) {
	var restore func()
	switch name {
	case ProfileBlock:
		runtime.SetBlockProfileRate(1)
		restore = func() { runtime.SetBlockProfileRate(0) }
	case ProfileMutex:
		old := runtime.SetMutexProfileFraction(1)
		restore = func() { runtime.SetMutexProfileFraction(old) }
	}
	return func() error {
		if restore != nil {
			defer restore()
		}
		if prof := pprof.Lookup(name); prof != nil {
			return prof.WriteTo(w, 0)
		}
		return nil
	}, nil
}
