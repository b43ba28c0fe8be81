// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package textui

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// LiveMemUse is a fmt.Stringer that describes how much memory the Go
// runtime is holding.  It is meant to be attached to a log context
// as a field, so that each log line shows the current figure.
type LiveMemUse struct {
	mu    sync.Mutex
	stats runtime.MemStats
	last  time.Time
}

var _ fmt.Stringer = (*LiveMemUse)(nil)

var LiveMemUseUpdateInterval = Tunable(1 * time.Second)

func (o *LiveMemUse) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	// runtime.ReadMemStats() stops the world, so rate-limit it.
	if now := time.Now(); now.Sub(o.last) > LiveMemUseUpdateInterval {
		runtime.ReadMemStats(&o.stats)
		o.last = now
	}

	// Sys is everything mapped by the runtime; HeapReleased is
	// the part of that which has been handed back to the OS
	// (MADV_FREE/MADV_DONTNEED) but is still mapped.  What is
	// left is "ready" memory, which is either holding live data,
	// lost to fragmentation, or idle.
	var (
		released = o.stats.HeapReleased
		ready    = o.stats.Sys - released
		frag     = o.stats.HeapInuse - o.stats.HeapAlloc
		inuse    = o.stats.HeapInuse + o.stats.StackInuse + o.stats.MSpanInuse + o.stats.MCacheInuse +
			o.stats.BuckHashSys + o.stats.GCSys + o.stats.OtherSys
	)
	var idle uint64
	if ready > inuse {
		idle = ready - inuse
	}

	return Sprintf("ready=%.1f (data:%.1f frag:%.1f idle:%.1f) released=%.1f",
		IEC(ready, "B"),
		IEC(inuse-frag, "B"),
		IEC(frag, "B"),
		IEC(idle, "B"),
		IEC(released, "B"))
}
