// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
)

// A Probe reports the approximate number of bytes left on the current
// goroutine's stack. ok is false when the runtime cannot tell.
type Probe interface {
	Remaining() (remaining Bytes, ok bool)
}

// StackProbe measures remaining stack as the budget minus the distance
// between a base frame and the caller.
//
// The measurement is only meaningful on a goroutine whose stack was
// grown with Reserve beforehand and is not shrunk while probing: a
// stack copy moves every frame and invalidates base.
type StackProbe struct {
	base   uintptr
	budget Bytes
}

// NewStackProbe returns a probe whose base is the caller's frame.
//
//go:noinline
func NewStackProbe(budget Bytes) *StackProbe {
	var marker byte
	return &StackProbe{base: uintptr(unsafe.Pointer(&marker)), budget: budget}
}

//go:noinline
func (p *StackProbe) Remaining() (Bytes, bool) {
	var marker byte
	sp := uintptr(unsafe.Pointer(&marker))
	if sp >= p.base {
		return p.budget, true
	}
	used := Bytes(p.base - sp)
	if used >= p.budget {
		return 0, true
	}
	return p.budget - used, true
}

// NoProbe is the probe of runtimes that cannot report stack usage.
type NoProbe struct{}

func (NoProbe) Remaining() (Bytes, bool) { return 0, false }

// ProbeMode selects the probe a trial samples with.
type ProbeMode int

const (
	ProbeStack ProbeMode = iota
	ProbeNone
)

var probeModeNames = [...]string{
	ProbeStack: "stack",
	ProbeNone:  "none",
}

func (m ProbeMode) String() string {
	if m < 0 || int(m) >= len(probeModeNames) {
		return "probe?"
	}
	return probeModeNames[m]
}

func ParseProbeMode(s string) (ProbeMode, error) {
	for m, name := range probeModeNames {
		if name == s {
			return ProbeMode(m), nil
		}
	}
	return 0, errors.Errorf("unknown probe %q", s)
}

func (m ProbeMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *ProbeMode) UnmarshalText(b []byte) error {
	v, err := ParseProbeMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// newProbe must be called from the trial's root frame.
//
//go:noinline
func newProbe(mode ProbeMode, budget Bytes) Probe {
	if mode == ProbeNone || runtime.Compiler != "gc" {
		return NoProbe{}
	}
	return NewStackProbe(budget)
}

// Samples are probe readings in call order; Samples[0] is depth 0.
type Samples []Bytes

// A Sampler appends one probe reading per call to Samples.
type Sampler struct {
	Probe   Probe
	Samples Samples
}

func NewSampler(p Probe, capacity int) *Sampler {
	return &Sampler{Probe: p, Samples: make(Samples, 0, capacity)}
}

func (s *Sampler) Sample() {
	if r, ok := s.Probe.Remaining(); ok {
		s.Samples = append(s.Samples, r)
	}
}
