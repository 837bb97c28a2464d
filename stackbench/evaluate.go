// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"strconv"
	"strings"
)

// The walkers below recurse exactly once per level and sample the
// probe once per call, base case included, so a walk from n records
// n+1 samples. None of them may be rewritten as loops: the frames they
// push are what is being measured.

// WalkPure counts n down to 0 with one call per value. The counter is
// the payload, so its width is carried in every frame.
func WalkPure[P Integer[P]](n P, s *Sampler) {
	s.Sample()
	if !n.IsZero() {
		WalkPure(n.Dec(), s)
	}
}

// WalkBoxed follows a pre-built chain with one call per node. Its frame
// holds only the node pointer whatever the payload is.
func WalkBoxed[P any](n *Node[P], s *Sampler) {
	s.Sample()
	if !n.Done() {
		WalkBoxed(n.Rest, s)
	}
}

// WalkLabelsPure counts n down to 0, rendering each value in a frame
// local scratch buffer and appending it to out.
func WalkLabelsPure(n uint64, s *Sampler, out *strings.Builder) {
	s.Sample()
	var scratch [20]byte
	out.Write(strconv.AppendUint(scratch[:0], n, 10))
	out.WriteByte(LabelSep)
	if n > 0 {
		WalkLabelsPure(n-1, s, out)
	}
}

// WalkLabelsBoxed follows a pre-built label chain, appending each
// label to out.
func WalkLabelsBoxed(n *Node[Label], s *Sampler, out *strings.Builder) {
	s.Sample()
	out.WriteString(string(n.Payload))
	if !n.Done() {
		WalkLabelsBoxed(n.Rest, s, out)
	}
}
