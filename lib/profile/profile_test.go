// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package profile_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lukeshu.com/preadbench/lib/profile"
)

func TestAddProfileFlags(t *testing.T) {
	// Not parallel: the block profile rate is process-global.
	dir := t.TempDir()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	stop := profile.AddProfileFlags(flags, "profile.")

	assert.NotNil(t, flags.Lookup("profile.cpu"))
	assert.NotNil(t, flags.Lookup("profile.trace"))
	assert.NotNil(t, flags.Lookup("profile.mutex"))

	heap := filepath.Join(dir, "heap.pprof")
	block := filepath.Join(dir, "block.pprof")
	require.NoError(t, flags.Parse([]string{
		"--profile.heap=" + heap,
		"--profile.block=" + block,
	}))
	assert.Error(t, flags.Set("profile.heap", filepath.Join(dir, "again.pprof")))

	require.NoError(t, stop())
	for _, name := range []string{heap, block} {
		info, err := os.Stat(name)
		require.NoError(t, err)
		assert.NotZero(t, info.Size(), name)
	}
	assert.NoFileExists(t, filepath.Join(dir, "again.pprof"))
}

func TestAddProfileFlagsBadPath(t *testing.T) {
	t.Parallel()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	_ = profile.AddProfileFlags(flags, "")
	assert.Error(t, flags.Parse([]string{"--goroutine=" + filepath.Join(t.TempDir(), "missing", "g.pprof")}))
}
