// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

// A Group is a set of depths, each run for every kind × strategy
// combination of the group.
type Group struct {
	Title      string
	Depths     []uint64
	Kinds      []Kind
	Strategies []Strategy
}

// A Plan is the ordered list of groups a sweep runs.
type Plan []Group

// DefaultPlan is a baseline sweep over every payload kind followed by
// deeper comparisons for the payloads where frame size matters most.
func DefaultPlan() Plan {
	return Plan{
		{
			Title:      "baseline",
			Depths:     []uint64{10, 100, 500, 1000, 5000},
			Kinds:      Kinds,
			Strategies: []Strategy{Pure, Boxed},
		},
		{
			Title:      "wide integers",
			Depths:     []uint64{70000, 90000, 100000},
			Kinds:      []Kind{KindWide, KindExtraWide},
			Strategies: []Strategy{Pure, Boxed},
		},
		{
			Title:      "strings",
			Depths:     []uint64{10000, 32000},
			Kinds:      []Kind{KindLabel},
			Strategies: []Strategy{Pure, Boxed},
		},
	}
}

// DepthPlan is a single group running every kind and the pure and boxed
// strategies at depths.
func DepthPlan(depths []uint64) Plan {
	return Plan{{
		Title:      "custom",
		Depths:     depths,
		Kinds:      Kinds,
		Strategies: []Strategy{Pure, Boxed},
	}}
}

// WithStrategy returns a copy of p with s added to every group that
// lacks it.
func (p Plan) WithStrategy(s Strategy) Plan {
	out := make(Plan, len(p))
	for i, g := range p {
		g.Strategies = append([]Strategy(nil), g.Strategies...)
		has := false
		for _, gs := range g.Strategies {
			has = has || gs == s
		}
		if !has {
			g.Strategies = append(g.Strategies, s)
		}
		out[i] = g
	}
	return out
}

// Trials expands g at one depth, in report order.
func (g Group) Trials(depth uint64) []Trial {
	var ts []Trial
	for _, k := range g.Kinds {
		for _, s := range g.Strategies {
			ts = append(ts, Trial{Kind: k, Strategy: s, Depth: depth})
		}
	}
	return ts
}
