// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"runtime"
)

// A GCChecker notices GC cycles that ran while a trial was sampling. A
// GC may shrink and move the trial's stack, after which probe readings
// are no longer comparable.
type GCChecker struct {
	mstats runtime.MemStats
}

func NewGCChecker() *GCChecker {
	c := new(GCChecker)
	runtime.ReadMemStats(&c.mstats)
	return c
}

// Perturbed reports whether any GC cycle completed since c was created.
func (c *GCChecker) Perturbed() bool {
	var mstats runtime.MemStats
	runtime.ReadMemStats(&mstats)
	return mstats.NumGC != c.mstats.NumGC
}
