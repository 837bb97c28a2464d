// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"math"
	"math/bits"
	"strconv"

	"github.com/pkg/errors"
)

// Narrow is a 1-byte payload.
type Narrow uint8

// Wide is an 8-byte payload.
type Wide uint64

// ExtraWide is a 16-byte unsigned payload stored as two words.
type ExtraWide struct {
	Hi, Lo uint64
}

// Label is a pre-rendered countdown label, the decimal value followed
// by LabelSep.
type Label string

// LabelSep terminates every rendered label.
const LabelSep = '-'

// Integer is the set of integer payloads. Each instantiation gets its
// own stenciled code, so the payload stays in registers or inline in
// the frame rather than behind an interface.
type Integer[P any] interface {
	Narrow | Wide | ExtraWide
	Inc() P
	Dec() P
	IsZero() bool
	Uint64() uint64
}

func (n Narrow) Inc() Narrow { return n + 1 }
func (n Narrow) Dec() Narrow { return n - 1 }
func (n Narrow) IsZero() bool { return n == 0 }
func (n Narrow) Uint64() uint64 { return uint64(n) }
func (n Wide) Inc() Wide { return n + 1 }
func (n Wide) Dec() Wide { return n - 1 }
func (n Wide) IsZero() bool { return n == 0 }
func (n Wide) Uint64() uint64 { return uint64(n) }
func (n ExtraWide) IsZero() bool { return n.Hi == 0 && n.Lo == 0 }

func (n ExtraWide) Inc() ExtraWide {
	lo, carry := bits.Add64(n.Lo, 1, 0)
	return ExtraWide{Hi: n.Hi + carry, Lo: lo}
}

func (n ExtraWide) Dec() ExtraWide {
	lo, borrow := bits.Sub64(n.Lo, 1, 0)
	return ExtraWide{Hi: n.Hi - borrow, Lo: lo}
}

// Uint64 returns the low word. Countdowns never exceed 64 bits.
func (n ExtraWide) Uint64() uint64 { return n.Lo }

// RenderLabel formats n the way both string evaluators do.
func RenderLabel(n uint64) Label {
	var buf [24]byte
	b := strconv.AppendUint(buf[:0], n, 10)
	return Label(append(b, LabelSep))
}

// Kind identifies one of the closed set of payload kinds.
type Kind int

const (
	KindNarrow Kind = iota
	KindWide
	KindExtraWide
	KindLabel
)

// Kinds lists every payload kind in report order.
var Kinds = []Kind{KindNarrow, KindWide, KindExtraWide, KindLabel}

var kindNames = [...]string{
	KindNarrow:    "u8",
	KindWide:      "u64",
	KindExtraWide: "u128",
	KindLabel:     "string",
}

var ErrUnknownKind = errors.New("unknown payload kind")

// ErrDepthRange is returned for depths the payload kind cannot count
// down from.
var ErrDepthRange = errors.New("depth exceeds payload range")

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", s)
}

// MaxDepth returns the largest countdown bound k can represent.
func (k Kind) MaxDepth() uint64 {
	if k == KindNarrow {
		return math.MaxUint8
	}
	return math.MaxUint64
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, errors.Wrapf(ErrUnknownKind, "%d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
