// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ColorMode selects whether report lines are coloured.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(s); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	}
	return "", errors.Errorf("unknown color mode %q", s)
}

const (
	reset   = "\x1b[0m"
	bold    = "\x1b[1m"
	red     = "\x1b[31m"
	yellow  = "\x1b[33m"
	faint   = "\x1b[2m"
	boldRed = bold + red
)

// A Reporter writes human-readable trial reports.
type Reporter struct {
	w       io.Writer
	color   bool
	metrics bool
	log     *zap.Logger
}

// NewReporter returns a Reporter writing to w without colour.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w, log: zap.NewNop()}
}

// NewFileReporter returns a Reporter writing to f. In ColorAuto mode
// colour is used only if f is a terminal and NO_COLOR is unset.
func NewFileReporter(f *os.File, mode ColorMode) *Reporter {
	color := mode == ColorAlways
	if mode == ColorAuto {
		color = os.Getenv("NO_COLOR") == "" &&
			(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	}
	if !color {
		return NewReporter(f)
	}
	return &Reporter{w: colorable.NewColorable(f), color: true, log: zap.NewNop()}
}

// WithMetrics makes the reporter print derived metrics after each
// successful trial and run their checks against log.
func (r *Reporter) WithMetrics(log *zap.Logger) *Reporter {
	r.metrics = true
	r.log = logger(log)
	return r
}

func (r *Reporter) paint(style, s string) string {
	if !r.color {
		return s
	}
	return style + s + reset
}

// Header starts the reports for one depth.
func (r *Reporter) Header(depth uint64) {
	fmt.Fprintf(r.w, "\n%s\n", r.paint(bold, fmt.Sprintf("=== depth %d ===", depth)))
}

// Outcome reports one trial.
func (r *Reporter) Outcome(o Outcome) {
	label := o.Trial.Label()
	switch {
	case o.Err != nil:
		fmt.Fprintf(r.w, "%s: %s\n", label, r.paint(faint, "skipped: "+o.Err.Error()))
	case o.Overflowed():
		fmt.Fprintf(r.w, "%s: %s\n", label, r.paint(boldRed, "stack overflow! (during "+o.Overflow.String()+")"))
	default:
		u, ok := Analyze(o.Samples)
		if !ok {
			fmt.Fprintf(r.w, "%s: %s\n", label, r.paint(yellow, fmt.Sprintf("insufficient data (%d samples)", len(o.Samples))))
			return
		}
		fmt.Fprintf(r.w, "%s: total used %d bytes (%.2f per level)\n", label, int64(u.Total), u.PerLevel)
		if r.metrics {
			r.writeMetrics(o)
		}
	}
}

func (r *Reporter) writeMetrics(o Outcome) {
	for _, m := range metrics {
		v := m.Fn(o.Samples)
		if math.IsNaN(v) {
			continue
		}
		fmt.Fprintf(r.w, "    %10s %s\n", sigfigs(v), m.Label)
		if m.Check != nil {
			m.Check(r.log.With(zap.String("trial", o.Trial.FullName())), m.Label, v)
		}
	}
}

func indent(s string) string {
	return "    " + strings.Replace(strings.TrimRight(s, "\n"), "\n", "\n    ", -1)
}

// sigfigs formats v with three or more sigfigs.
func sigfigs(v float64) string {
	prec, m := 0, v
	for {
		if 99.5 <= m || m <= -99.5 || m*10 == m || m != m {
			return strconv.FormatFloat(v, 'f', prec, 64)
		}
		m *= 10
		prec++
	}
}
