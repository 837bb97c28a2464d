// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

// Usage summarizes the stack consumed by one walk.
type Usage struct {
	// Total is the first sample minus the smallest sample, that is
	// the distance from depth 0 to the deepest point reached.
	Total Bytes

	// PerLevel is Total divided by the number of samples. It is an
	// empirical estimate of the frame cost, not an exact figure.
	PerLevel float64

	// Levels is the number of samples the summary was computed from.
	Levels int
}

// Analyze reduces samples to a Usage. It returns false when fewer than
// two samples were collected.
//
// The deepest point is taken as the minimum sample, not the last one,
// so a non-monotonic sequence is measured from its lowest reading.
// The subtraction saturates at zero.
func Analyze(samples Samples) (Usage, bool) {
	if len(samples) < 2 {
		return Usage{}, false
	}
	start, low := samples[0], samples[0]
	for _, s := range samples[1:] {
		if s < low {
			low = s
		}
	}
	var used Bytes
	if start > low {
		used = start - low
	}
	return Usage{
		Total:    used,
		PerLevel: float64(used) / float64(len(samples)),
		Levels:   len(samples),
	}, true
}
