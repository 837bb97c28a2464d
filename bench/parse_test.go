// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bench

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const report = `=== Stack usage per recursion level ===
stack budget 67.1MB per trial (lower per level = less stack per call)

=== depth 1000 ===
pure(u8): total used 80080 bytes (80.00 per level)
           80080 bytes-used
boxed(u8): total used 80080 bytes (80.00 per level)
pure(u128): total used 112112 bytes (112.00 per level)
boxed(u128): total used 80080 bytes (80.00 per level)
boxed-rec(u128): ` + "\x1b[1m\x1b[31m" + `stack overflow! (during construction)` + "\x1b[0m" + `

=== depth 100000 ===
pure(string): stack overflow! (during evaluation)
boxed(string): total used 11200112 bytes (112.00 per level)
pure(u8): skipped: u8 cannot count down from 100000: depth exceeds payload range
boxed(u8): insufficient data (0 samples)
`

func TestParse(t *testing.T) {
	records, err := Parse(strings.NewReader(report))
	require.NoError(t, err)
	require.Len(t, records, 9)

	assert.Equal(t, &Record{
		Depth: 1000, Label: "pure(u128)", Strategy: "pure", Kind: "u128",
		Measured: true, Total: 112112, PerLevel: 112,
	}, records[2])
	assert.Equal(t, &Record{
		Depth: 1000, Label: "boxed-rec(u128)", Strategy: "boxed-rec", Kind: "u128",
		Overflow: "construction",
	}, records[4])
	assert.Equal(t, "evaluation", records[5].Overflow)
	assert.Equal(t, uint64(100000), records[5].Depth)
	assert.True(t, records[7].Skipped)
	assert.True(t, records[8].Insufficient)
}

func TestCompare(t *testing.T) {
	records, err := Parse(strings.NewReader(report))
	require.NoError(t, err)
	cs := Compare(records)
	require.Len(t, cs, 4)

	saving, ok := cs[0].Saving()
	require.True(t, ok)
	assert.Equal(t, "u8", cs[0].Kind)
	assert.Equal(t, 0.0, saving)

	saving, ok = cs[1].Saving()
	require.True(t, ok)
	assert.Equal(t, "u128", cs[1].Kind)
	assert.Equal(t, 32.0, saving)

	_, ok = cs[2].Saving()
	assert.False(t, ok, "pure string overflowed")
	assert.Equal(t, "evaluation", cs[2].Pure.Overflow)

	assert.Equal(t, uint64(100000), cs[3].Depth)
	assert.True(t, cs[3].Pure.Skipped)
	assert.True(t, cs[3].Boxed.Insufficient)
}
