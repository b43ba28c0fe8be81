// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package textui_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"

	"git.lukeshu.com/preadbench/lib/textui"
)

func TestProgress(t *testing.T) {
	t.Parallel()
	var out strings.Builder
	ctx := dlog.WithLogger(context.Background(), textui.NewLogger(&out, dlog.LogLevelInfo))

	progress := textui.NewProgress[textui.Portion[int]](ctx, dlog.LogLevelInfo, time.Hour)
	progress.Set(textui.Portion[int]{N: 1, D: 10})
	progress.Set(textui.Portion[int]{N: 10, D: 10})
	progress.Done()

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.GreaterOrEqual(t, len(lines), 1)
	assert.LessOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[len(lines)-1], "INF : 100% (10/10)")
}

func TestProgressNeverSet(t *testing.T) {
	t.Parallel()
	var out strings.Builder
	ctx := dlog.WithLogger(context.Background(), textui.NewLogger(&out, dlog.LogLevelInfo))

	progress := textui.NewProgress[textui.Portion[int]](ctx, dlog.LogLevelInfo, time.Hour)
	progress.Done()
	assert.Equal(t, "", out.String())
}
