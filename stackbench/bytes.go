// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Bytes is a byte count. Samples, budgets and usage figures are all
// expressed in Bytes.
type Bytes int64

var si = []string{"", "k", "M", "G", "T", "P", "E"}

const (
	B Bytes = 1

	KB = 1e3
	MB = 1e6
	GB = 1e9
	TB = 1e12

	KiB = 1 << 10
	MiB = 1 << 20
	GiB = 1 << 30
	TiB = 1 << 40
)

func (b Bytes) String() string {
	f := float64(b)
	for i, s := range si {
		if f < 1000 || i == len(si)-1 {
			return fmt.Sprintf("%g%sB", f, s)
		}
		f /= 1000
	}
	panic("not reached")
}

func (b *Bytes) Set(s string) error {
	var num float64
	var unit string
	_, err := fmt.Sscanf(s, "%g%s", &num, &unit)
	if strings.HasPrefix(unit, "K") {
		unit = "k" + unit[1:]
	}
	if err == nil {
		// Try SI prefixes first.
		onum := num
		for _, s := range si {
			if unit == s+"B" {
				*b = Bytes(num)
				return nil
			}
			num *= 1000
		}
		// Try binary prefixes.
		num = onum
		for _, s := range si {
			if unit == s+"iB" {
				*b = Bytes(num)
				return nil
			}
			num *= 1024
		}
	}
	return errors.Errorf("invalid byte count %q: expected <num><SI or binary prefix>B", s)
}

// Type implements pflag.Value.
func (b *Bytes) Type() string {
	return "bytes"
}

// FlagBytes defines a Bytes flag on fs.
func FlagBytes(fs *pflag.FlagSet, name string, value Bytes, usage string) *Bytes {
	fs.Var(&value, name, usage)
	return &value
}

func ParseBytes(s string) (Bytes, error) {
	var b Bytes
	err := b.Set(s)
	return b, err
}

// Pow2Floor rounds b down to a power of two. Goroutine stacks only
// ever have power-of-two sizes.
func (b Bytes) Pow2Floor() Bytes {
	if b <= 0 {
		return 0
	}
	return 1 << (63 - bits.LeadingZeros64(uint64(b)))
}
