// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// stepProbe reads step bytes lower on every call.
type stepProbe struct {
	next, step Bytes
}

func (p *stepProbe) Remaining() (Bytes, bool) {
	r := p.next
	p.next -= p.step
	return r, true
}

func newStepSampler() *Sampler {
	return NewSampler(&stepProbe{next: 1 << 20, step: 64}, 0)
}

func TestWalkSampleCount(t *testing.T) {
	for _, n := range []uint64{0, 1, 2, 10, 255} {
		s := newStepSampler()
		WalkPure(Narrow(n), s)
		require.Len(t, s.Samples, int(n)+1, "pure u8 depth %d", n)

		s = newStepSampler()
		WalkPure(ExtraWide{Lo: n}, s)
		require.Len(t, s.Samples, int(n)+1, "pure u128 depth %d", n)

		s = newStepSampler()
		WalkBoxed(Build(Wide(n)), s)
		require.Len(t, s.Samples, int(n)+1, "boxed u64 depth %d", n)

		var out strings.Builder
		s = newStepSampler()
		WalkLabelsPure(n, s, &out)
		require.Len(t, s.Samples, int(n)+1, "pure string depth %d", n)

		out.Reset()
		s = newStepSampler()
		WalkLabelsBoxed(BuildLabels(n), s, &out)
		require.Len(t, s.Samples, int(n)+1, "boxed string depth %d", n)
	}
}

func TestWalkDepthZero(t *testing.T) {
	s := newStepSampler()
	WalkPure(Wide(0), s)
	require.Len(t, s.Samples, 1)
	_, ok := Analyze(s.Samples)
	require.False(t, ok)
}

func TestWalkLabelsOutput(t *testing.T) {
	var pure, boxed strings.Builder
	WalkLabelsPure(3, newStepSampler(), &pure)
	WalkLabelsBoxed(BuildLabels(3), newStepSampler(), &boxed)
	require.Equal(t, "3-2-1-0-", pure.String())
	require.Equal(t, "3-2-1-0-", boxed.String())
}

func TestWalkNoProbe(t *testing.T) {
	s := NewSampler(NoProbe{}, 0)
	WalkPure(Wide(50), s)
	require.Empty(t, s.Samples)
}

const testStack Bytes = 1 * MiB

func TestRunLocal(t *testing.T) {
	const depth = 200
	for _, k := range Kinds {
		for _, st := range []Strategy{Pure, Boxed, BoxedRecursive} {
			tr := Trial{Kind: k, Strategy: st, Depth: depth, Stack: testStack}
			t.Run(tr.Label(), func(t *testing.T) {
				res, err := RunLocal(tr, nil)
				require.NoError(t, err)
				require.Len(t, res.Samples, depth+1)

				first, last := res.Samples[0], res.Samples[len(res.Samples)-1]
				require.GreaterOrEqual(t, first, last)
				require.LessOrEqual(t, first, testStack)
				require.Zero(t, risingSteps(res.Samples), "readings rose on a reserved stack")

				u, ok := Analyze(res.Samples)
				require.True(t, ok)
				require.Positive(t, u.Total)
				require.Positive(t, u.PerLevel)
			})
		}
	}
}

func TestRunLocalPhases(t *testing.T) {
	var phases []Phase
	record := func(p Phase) { phases = append(phases, p) }

	_, err := RunLocal(Trial{Kind: KindWide, Strategy: Pure, Depth: 10, Stack: testStack}, record)
	require.NoError(t, err)
	require.Equal(t, []Phase{PhaseEvaluation}, phases)

	phases = nil
	_, err = RunLocal(Trial{Kind: KindWide, Strategy: Boxed, Depth: 10, Stack: testStack}, record)
	require.NoError(t, err)
	require.Equal(t, []Phase{PhaseConstruction, PhaseEvaluation}, phases)
}

func TestRunLocalLabels(t *testing.T) {
	for _, st := range []Strategy{Pure, Boxed} {
		res, err := RunLocal(Trial{Kind: KindLabel, Strategy: st, Depth: 3, Stack: testStack}, nil)
		require.NoError(t, err)
		require.Equal(t, "3-2-1-0-", res.Text, st.String())
		require.Equal(t, len("3-2-1-0-"), res.Output)
	}
}

func TestRunLocalRepeatable(t *testing.T) {
	// A second walk over a freshly built chain must not cost more
	// stack than the first.
	tr := Trial{Kind: KindExtraWide, Strategy: Boxed, Depth: 2000, Stack: testStack}
	var totals []Bytes
	for i := 0; i < 3; i++ {
		res, err := RunLocal(tr, nil)
		require.NoError(t, err)
		u, ok := Analyze(res.Samples)
		require.True(t, ok)
		totals = append(totals, u.Total)
	}
	for i, total := range totals[1:] {
		require.LessOrEqual(t, float64(total), float64(totals[0])*1.1+256, fmt.Sprintf("run %d: %v", i+1, totals))
	}
}

func TestRunLocalDepthRange(t *testing.T) {
	_, err := RunLocal(Trial{Kind: KindNarrow, Strategy: Pure, Depth: 256}, nil)
	require.ErrorIs(t, err, ErrDepthRange)
}

func TestRunLocalProbeNone(t *testing.T) {
	res, err := RunLocal(Trial{Kind: KindWide, Strategy: Boxed, Depth: 100, Stack: testStack, Probe: ProbeNone}, nil)
	require.NoError(t, err)
	require.Empty(t, res.Samples)
	_, ok := Analyze(res.Samples)
	require.False(t, ok)
}
