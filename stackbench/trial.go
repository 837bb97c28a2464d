// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"bytes"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/pkg/errors"
)

// Strategy is how the recursive structure of a trial is produced.
type Strategy int

const (
	// Pure recurses directly over a counter.
	Pure Strategy = iota

	// Boxed builds the chain iteratively on the heap, then walks it.
	Boxed

	// BoxedRecursive builds the chain with one call per node, then
	// walks it. Its construction can overflow on its own.
	BoxedRecursive
)

var strategyNames = [...]string{
	Pure:           "pure",
	Boxed:          "boxed",
	BoxedRecursive: "boxed-rec",
}

var ErrUnknownStrategy = errors.New("unknown strategy")

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("strategy(%d)", int(s))
	}
	return strategyNames[s]
}

func ParseStrategy(s string) (Strategy, error) {
	for i, name := range strategyNames {
		if name == s {
			return Strategy(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownStrategy, "%q", s)
}

func (s Strategy) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(strategyNames) {
		return nil, errors.Wrapf(ErrUnknownStrategy, "%d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Phase is the stage of a trial.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseConstruction
	PhaseEvaluation
)

func (p Phase) String() string {
	switch p {
	case PhaseConstruction:
		return "construction"
	case PhaseEvaluation:
		return "evaluation"
	}
	return "none"
}

func parsePhase(s string) (Phase, bool) {
	switch s {
	case "construction":
		return PhaseConstruction, true
	case "evaluation":
		return PhaseEvaluation, true
	}
	return PhaseNone, false
}

// A Trial is one payload kind × strategy × depth measurement.
type Trial struct {
	Kind     Kind      `json:"kind"`
	Strategy Strategy  `json:"strategy"`
	Depth    uint64    `json:"depth"`
	Stack    Bytes     `json:"stack"`
	Probe    ProbeMode `json:"probe"`
}

// Label is the short name trials are reported under, such as
// "boxed(u64)".
func (t Trial) Label() string {
	return fmt.Sprintf("%s(%s)", t.Strategy, t.Kind)
}

// FullName identifies the trial in logs and crash reports.
func (t Trial) FullName() string {
	buf := bytes.NewBufferString("FrameCost")
	fmt.Fprintf(buf, "/kind:%s/strategy:%s/depth:%d/stack:%s", t.Kind, t.Strategy, t.Depth, StackSize(t.Stack))
	if t.Probe != ProbeStack {
		fmt.Fprintf(buf, "/probe:%s", t.Probe)
	}
	return buf.String()
}

func (t Trial) Validate() error {
	if t.Kind < 0 || int(t.Kind) >= len(kindNames) {
		return errors.Wrapf(ErrUnknownKind, "%d", int(t.Kind))
	}
	if t.Strategy < 0 || int(t.Strategy) >= len(strategyNames) {
		return errors.Wrapf(ErrUnknownStrategy, "%d", int(t.Strategy))
	}
	if t.Depth > t.Kind.MaxDepth() {
		return errors.Wrapf(ErrDepthRange, "%s cannot count down from %d", t.Kind, t.Depth)
	}
	return nil
}

// Result is what a completed trial hands back.
type Result struct {
	Samples Samples `json:"samples"`

	// Output is the length of the string walk's output buffer.
	Output int `json:"output"`

	// Text is the string walk's output. It is not sent across the
	// worker boundary.
	Text string `json:"-"`

	// Perturbed is set when a GC cycle ran during the trial.
	Perturbed bool `json:"perturbed"`
}

// An Outcome is the reported result of one trial: either a Result, an
// overflow in some phase, or an error that kept the trial from running.
type Outcome struct {
	Trial Trial
	Result

	// Overflow is the phase in which the stack was exhausted, or
	// PhaseNone if the trial completed.
	Overflow Phase

	// Err is set when the trial was rejected before running.
	Err error
}

func (o Outcome) Overflowed() bool {
	return o.Overflow != PhaseNone
}

// Usage analyzes the outcome's samples.
func (o Outcome) Usage() (Usage, bool) {
	if o.Overflowed() || o.Err != nil {
		return Usage{}, false
	}
	return Analyze(o.Samples)
}

// maxPrealloc bounds the sample buffer allocated up front.
const maxPrealloc = 1 << 22

// RunLocal runs t on a fresh goroutine of this process.
//
// The goroutine reserves a stack of StackSize(t.Stack) before doing
// anything else, and GC is disabled for the duration of the trial so
// the stack is not shrunk under the probe. onPhase, if not nil, is
// called as each phase begins.
//
// RunLocal cannot survive stack exhaustion: Go treats it as a fatal
// error. Trials that may overflow belong in a Driver, which runs each
// one in its own process.
func RunLocal(t Trial, onPhase func(Phase)) (Result, error) {
	if err := t.Validate(); err != nil {
		return Result{}, err
	}
	if onPhase == nil {
		onPhase = func(Phase) {}
	}
	if t.Stack == 0 {
		t.Stack = DefaultStack
	}

	// Let any in-flight cycle finish before turning GC off.
	runtime.GC()
	defer debug.SetGCPercent(debug.SetGCPercent(-1))
	check := NewGCChecker()

	type done struct {
		res Result
		err error
	}
	c := make(chan done, 1)
	go func() {
		var d done
		defer func() {
			if r := recover(); r != nil {
				d.err = newTrialPanic(t, r)
			}
			c <- d
		}()
		d.res = runReserved(t, onPhase)
	}()
	d := <-c
	if d.err != nil {
		return Result{}, d.err
	}
	d.res.Perturbed = check.Perturbed()
	return d.res, nil
}

func runReserved(t Trial, onPhase func(Phase)) Result {
	size := StackSize(t.Stack)
	Reserve(size)
	switch t.Kind {
	case KindNarrow:
		return runInteger(Narrow(t.Depth), t, size, onPhase)
	case KindWide:
		return runInteger(Wide(t.Depth), t, size, onPhase)
	case KindExtraWide:
		return runInteger(ExtraWide{Lo: t.Depth}, t, size, onPhase)
	case KindLabel:
		return runLabels(t, size, onPhase)
	}
	panic("unreachable: trial validated")
}

func sampleCap(depth uint64) int {
	if depth >= maxPrealloc {
		return maxPrealloc
	}
	return int(depth) + 1
}

// The probe is created right before each walk so that its base frame
// is valid even if a recursive construction moved the stack.

func runInteger[P Integer[P]](n P, t Trial, size Bytes, onPhase func(Phase)) Result {
	var s *Sampler
	switch t.Strategy {
	case Pure:
		onPhase(PhaseEvaluation)
		s = NewSampler(newProbe(t.Probe, size), sampleCap(t.Depth))
		WalkPure(n, s)
	default:
		onPhase(PhaseConstruction)
		var chain *Node[P]
		if t.Strategy == BoxedRecursive {
			chain = BuildRecursive(n)
		} else {
			chain = Build(n)
		}
		onPhase(PhaseEvaluation)
		s = NewSampler(newProbe(t.Probe, size), sampleCap(t.Depth))
		WalkBoxed(chain, s)
		Release(chain)
	}
	return Result{Samples: s.Samples}
}

func runLabels(t Trial, size Bytes, onPhase func(Phase)) Result {
	var out strings.Builder
	var s *Sampler
	switch t.Strategy {
	case Pure:
		onPhase(PhaseEvaluation)
		out.Grow(sampleCap(t.Depth) * 4)
		s = NewSampler(newProbe(t.Probe, size), sampleCap(t.Depth))
		WalkLabelsPure(t.Depth, s, &out)
	default:
		onPhase(PhaseConstruction)
		var chain *Node[Label]
		if t.Strategy == BoxedRecursive {
			chain = BuildLabelsRecursive(t.Depth)
		} else {
			chain = BuildLabels(t.Depth)
		}
		onPhase(PhaseEvaluation)
		out.Grow(sampleCap(t.Depth) * 4)
		s = NewSampler(newProbe(t.Probe, size), sampleCap(t.Depth))
		WalkLabelsBoxed(chain, s, &out)
		Release(chain)
	}
	return Result{Samples: s.Samples, Output: out.Len(), Text: out.String()}
}
