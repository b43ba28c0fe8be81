// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package profile

import (
	"fmt"
	"io"
	"os"

	"github.com/datawire/dlib/derror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type flagSet struct {
	shutdown []StopFunc
}

// Stop runs the shutdown functions in the reverse order that the
// profiles were started in.
func (fs *flagSet) Stop() error {
	var errs derror.MultiError
	for i := len(fs.shutdown) - 1; i >= 0; i-- {
		if err := fs.shutdown[i](); err != nil {
			errs = append(errs, err)
		}
	}
	fs.shutdown = nil
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type flagValue struct {
	parent *flagSet
	start  startFunc
	curVal string
}

var _ pflag.Value = (*flagValue)(nil)

// String implements pflag.Value.
func (fv *flagValue) String() string { return fv.curVal }

// Set implements pflag.Value.
func (fv *flagValue) Set(filename string) error {
	if filename == "" {
		return nil
	}
	if fv.curVal != "" {
		return fmt.Errorf("already writing to %q", fv.curVal)
	}
	w, err := os.Create(filename)
	if err != nil {
		return err
	}
	shutdown, err := fv.start(w)
	if err != nil {
		_ = w.Close()
		return err
	}
	fv.curVal = filename
	fv.parent.shutdown = append(fv.parent.shutdown, func() error {
		err1 := shutdown()
		err2 := w.Close()
		if err1 != nil {
			return err1
		}
		return err2
	})
	return nil
}

// Type implements pflag.Value.
func (*flagValue) Type() string { return "filename" }

func named(name string) startFunc {
	return func(w io.Writer) (StopFunc, error) {
		return Profile(w, name)
	}
}

// AddProfileFlags adds flags to a pflag.FlagSet to write any (or all)
// of the standard profiles to a file, and returns a "stop" function
// to be called at program shutdown.
//
// Profiling starts as soon as the flag is parsed, so a CPU profile
// covers the whole run, not just the interesting part.
func AddProfileFlags(flags *pflag.FlagSet, prefix string) StopFunc {
	var root flagSet

	for _, prof := range []struct {
		name  string
		start startFunc
		desc  string
	}{
		{"cpu", CPU, "a CPU profile"},
		{"trace", Trace, "an execution trace (https://pkg.go.dev/runtime/trace)"},
		{ProfileGoroutine, named(ProfileGoroutine), "a goroutine profile"},
		{ProfileThreadCreate, named(ProfileThreadCreate), "a threadcreate profile"},
		{ProfileHeap, named(ProfileHeap), "a heap profile"},
		{ProfileAllocs, named(ProfileAllocs), "an allocs profile"},
		{ProfileBlock, named(ProfileBlock), "a block profile"},
		{ProfileMutex, named(ProfileMutex), "a mutex profile"},
	} {
		ext := ".pprof"
		if prof.name == "trace" {
			ext = ".out"
		}
		flags.Var(&flagValue{parent: &root, start: prof.start}, prefix+prof.name,
			fmt.Sprintf("Write %s to the file `%s%s`", prof.desc, prof.name, ext))
		_ = cobra.MarkFlagFilename(flags, prefix+prof.name)
	}

	return root.Stop
}
