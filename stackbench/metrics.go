// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// A Metric is a figure derived from a successful trial's samples.
type Metric struct {
	Label string
	Fn    func(Samples) float64
	Check func(log *zap.Logger, name string, value float64)
}

var metrics = []Metric{
	{"bytes-used", bytesUsed, nil},
	{"bytes/level", bytesPerLevel, nil},
	{"median-bytes/step", distMetric(stepSizes, 0.5), nil},
	{"95%ile-bytes/step", distMetric(stepSizes, 0.95), nil},
	{"rising-steps", risingSteps, warnIf(">", 0)},
}

// Metrics returns the metric table.
func Metrics() []Metric {
	return metrics
}

func bytesUsed(s Samples) float64 {
	u, ok := Analyze(s)
	if !ok {
		return math.NaN()
	}
	return float64(u.Total)
}

func bytesPerLevel(s Samples) float64 {
	u, ok := Analyze(s)
	if !ok {
		return math.NaN()
	}
	return u.PerLevel
}

// stepSizes is the stack consumed between consecutive samples. A
// negative step is a reading that rose while the walk went deeper.
func stepSizes(s Samples) distribution {
	var steps distribution
	for i := 1; i < len(s); i++ {
		steps = append(steps, float64(s[i-1])-float64(s[i]))
	}
	return steps
}

// risingSteps counts readings higher than their predecessor. On a
// reserved, unshrunk stack there should be none.
func risingSteps(s Samples) float64 {
	if len(s) < 2 {
		return math.NaN()
	}
	n := 0
	for i := 1; i < len(s); i++ {
		if s[i] > s[i-1] {
			n++
		}
	}
	return float64(n)
}

type distribution []float64

// distMetric transforms a distribution metric into a point metric at
// the specified percentile.
func distMetric(f func(Samples) distribution, pct float64) func(Samples) float64 {
	return func(s Samples) float64 {
		return pctile([]float64(f(s)), pct)
	}
}

func pctile(xs []float64, pct float64) float64 {
	sort.Float64s(xs)
	if len(xs) == 0 {
		return math.NaN()
	}
	return xs[int(float64(len(xs)-1)*pct)]
}

// warnIf returns a metric check function that compares the metric
// value to the threshold using the given comparison and logs a
// warning if the comparison is true.
func warnIf(compare string, threshold float64) func(*zap.Logger, string, float64) {
	var fn func(a, b float64) bool
	switch compare {
	case ">":
		fn = func(a, b float64) bool { return a > b }
	case ">=":
		fn = func(a, b float64) bool { return a >= b }
	case "<=":
		fn = func(a, b float64) bool { return a <= b }
	case "<":
		fn = func(a, b float64) bool { return a < b }
	default:
		panic(fmt.Sprintf("unknown comparison operator %q", compare))
	}
	return func(log *zap.Logger, name string, value float64) {
		if fn(value, threshold) {
			log.Warn("metric out of range",
				zap.String("metric", name),
				zap.String("value", sigfigs(value)),
				zap.String("limit", compare+" "+sigfigs(threshold)))
		}
	}
}
