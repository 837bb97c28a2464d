// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bench reads framecost reports back into records and compares
// the pure and boxed strategies they contain.
//
// A report is a sequence of depth headers, each followed by one line
// per trial:
//
//	=== depth 1000 ===
//	pure(u64): total used 81920 bytes (81.84 per level)
//	boxed(u64): stack overflow! (during evaluation)
//	pure(u8): skipped: ...
//	boxed(u8): insufficient data (0 samples)
package bench

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Record is one trial line of a report.
type Record struct {
	// Depth is the depth of the most recent header.
	Depth uint64

	// Label is the full trial label, such as "boxed(u64)", and
	// Strategy and Kind are its two parts.
	Label, Strategy, Kind string

	// Measured is true for lines that carry usage figures.
	Measured bool
	Total    int64
	PerLevel float64

	// Overflow is the phase named by an overflow line, or "stack"
	// if the line does not name one. It is empty otherwise.
	Overflow string

	Skipped      bool
	Insufficient bool
}

var (
	ansiRe     = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	headerRe   = regexp.MustCompile(`^=== depth ([0-9]+) ===$`)
	trialRe    = regexp.MustCompile(`^(([a-z][a-z-]*)\(([a-z0-9]+)\)): (.*)$`)
	usedRe     = regexp.MustCompile(`^total used ([0-9]+) bytes \(([0-9.]+) per level\)$`)
	overflowRe = regexp.MustCompile(`^stack overflow!(?: \(during ([a-z]+)\))?$`)
)

// Parse parses a framecost report from r. Lines that are neither
// headers nor trial lines, such as metric lines, are ignored.
func Parse(r io.Reader) ([]*Record, error) {
	records := []*Record{}
	var depth uint64

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := ansiRe.ReplaceAllString(scanner.Text(), "")

		if m := headerRe.FindStringSubmatch(line); m != nil {
			d, err := strconv.ParseUint(m[1], 10, 64)
			if err != nil {
				return nil, err
			}
			depth = d
			continue
		}

		if rec := parseTrial(line, depth); rec != nil {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func parseTrial(line string, depth uint64) *Record {
	m := trialRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	rec := &Record{Depth: depth, Label: m[1], Strategy: m[2], Kind: m[3]}
	rest := m[4]

	switch {
	case usedRe.MatchString(rest):
		u := usedRe.FindStringSubmatch(rest)
		total, err := strconv.ParseInt(u[1], 10, 64)
		if err != nil {
			return nil
		}
		per, err := strconv.ParseFloat(u[2], 64)
		if err != nil {
			return nil
		}
		rec.Measured, rec.Total, rec.PerLevel = true, total, per
	case overflowRe.MatchString(rest):
		rec.Overflow = overflowRe.FindStringSubmatch(rest)[1]
		if rec.Overflow == "" {
			rec.Overflow = "stack"
		}
	case strings.HasPrefix(rest, "skipped"):
		rec.Skipped = true
	case strings.HasPrefix(rest, "insufficient data"):
		rec.Insufficient = true
	default:
		return nil
	}
	return rec
}

// Comparison pairs the pure and boxed records of one kind at one
// depth. Either side may be nil if the report lacks it.
type Comparison struct {
	Depth       uint64
	Kind        string
	Pure, Boxed *Record
}

// Saving returns how many fewer bytes per level the boxed walk used
// than the pure one. It is false unless both were measured.
func (c Comparison) Saving() (float64, bool) {
	if c.Pure == nil || c.Boxed == nil || !c.Pure.Measured || !c.Boxed.Measured {
		return 0, false
	}
	return c.Pure.PerLevel - c.Boxed.PerLevel, true
}

// Compare groups records into pure/boxed comparisons in the order the
// (depth, kind) pairs first appear.
func Compare(records []*Record) []Comparison {
	type key struct {
		depth uint64
		kind  string
	}
	index := make(map[key]int)
	var out []Comparison
	for _, r := range records {
		if r.Strategy != "pure" && r.Strategy != "boxed" {
			continue
		}
		k := key{r.Depth, r.Kind}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Comparison{Depth: r.Depth, Kind: r.Kind})
		}
		if r.Strategy == "pure" {
			out[i].Pure = r
		} else {
			out[i].Boxed = r
		}
	}
	return out
}
