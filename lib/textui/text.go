// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package textui implements utilities for emitting human-friendly
// text on stdout and stderr.
package textui

import (
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"golang.org/x/exp/constraints"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"git.lukeshu.com/preadbench/lib/fmtutil"
)

var printer = message.NewPrinter(language.English)

// Fprintf is like `fmt.Fprintf`, but groups digits in numbers
// ("12,345"), and marks the call as being part of the UI.
func Fprintf(w io.Writer, key string, a ...any) (n int, err error) {
	return printer.Fprintf(w, key, a...)
}

// Sprintf is to Fprintf as `fmt.Sprintf` is to `fmt.Fprintf`.
func Sprintf(key string, a ...any) string {
	return printer.Sprintf(key, a...)
}

////////////////////////////////////////////////////////////////////////////////

// Portion renders a fraction N/D as both a percentage and
// parenthetically as the exact fractional value, with digit grouping.
//
// For example:
//
//	fmt.Sprint(Portion[int]{N: 1, D: 12345}) ⇒ "0% (1/12,345)"
type Portion[T constraints.Integer] struct {
	N, D T
}

var _ fmt.Stringer = Portion[int]{}

// String implements fmt.Stringer.
func (p Portion[T]) String() string {
	pct := uint64(100)
	if p.D > 0 {
		pct = (uint64(p.N) * 100) / uint64(p.D)
	}
	return printer.Sprintf("%d%% (%v/%v)", pct, uint64(p.N), uint64(p.D))
}

////////////////////////////////////////////////////////////////////////////////

// formatFloatWithSuffix formats val honoring the width and precision
// in f, where the width covers the suffix too.
func formatFloatWithSuffix(f fmt.State, verb rune, val float64, suffix string) {
	var wrapped any = val // float64 or number.Decimal[float64]
	if !math.IsNaN(val) {
		var options []number.Option
		if width, ok := f.Width(); ok {
			options = append(options, number.FormatWidth(width-utf8.RuneCountInString(suffix)))
		}
		if prec, ok := f.Precision(); ok {
			options = append(options, number.Precision(prec))
		}
		wrapped = number.Decimal(val, options...)
	}
	format := fmtutil.FmtStateString(f, verb)
	if width, ok := f.Width(); ok {
		format = fmtutil.FmtStateStringWidth(f, verb, width-utf8.RuneCountInString(suffix))
	}
	_, _ = printer.Fprintf(f, format+"%s", wrapped, suffix)
}

////////////////////////////////////////////////////////////////////////////////

var iecPrefixes = []string{
	"Ki",
	"Mi",
	"Gi",
	"Ti",
	"Pi",
	"Ei",
	"Zi",
	"Yi",
}

type iec struct {
	val  float64
	unit string
}

var (
	_ fmt.Formatter = iec{}
	_ fmt.Stringer  = iec{}
)

// IEC formats x scaled down by powers of 1024, with the matching
// binary prefix in front of unit; `IEC(1536, "B")` is "1.5KiB".
func IEC[T constraints.Integer | constraints.Float](x T, unit string) iec {
	return iec{
		val:  float64(x),
		unit: unit,
	}
}

// Format implements fmt.Formatter.
func (v iec) Format(f fmt.State, verb rune) {
	val := v.val
	var prefix string
	for i := 0; math.Abs(val) >= 1024 && i < len(iecPrefixes); i++ {
		val /= 1024
		prefix = iecPrefixes[i]
	}
	formatFloatWithSuffix(f, verb, val, prefix+v.unit)
}

// String implements fmt.Stringer.
func (v iec) String() string {
	return fmt.Sprint(v)
}
