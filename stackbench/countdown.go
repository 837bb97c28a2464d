// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

// A Node is one link of a countdown chain n, n-1, ..., 0. A node with
// a nil Rest is the terminal (Done) node. Each node is owned by its
// predecessor and chains are never shared.
type Node[P any] struct {
	Payload P
	Rest    *Node[P]
}

// Done reports whether n is the terminal node.
func (n *Node[P]) Done() bool {
	return n.Rest == nil
}

// Build constructs the countdown chain from n down to 0.
//
// Build never recurses, so constructing a chain costs O(1) stack
// regardless of n. The chain is built tail first: the terminal zero
// node is wrapped n times.
func Build[P Integer[P]](n P) *Node[P] {
	var i P
	head := &Node[P]{Payload: i}
	for i != n {
		i = i.Inc()
		head = &Node[P]{Payload: i, Rest: head}
	}
	return head
}

// BuildLabels constructs the countdown chain of rendered labels from n
// down to 0, iteratively.
func BuildLabels(n uint64) *Node[Label] {
	head := &Node[Label]{Payload: RenderLabel(0)}
	for i := uint64(1); i <= n && i != 0; i++ {
		head = &Node[Label]{Payload: RenderLabel(i), Rest: head}
	}
	return head
}

// BuildRecursive constructs the same chain as Build, but with one call
// frame per node. Its construction cost grows with n and can exhaust
// the stack on its own.
func BuildRecursive[P Integer[P]](n P) *Node[P] {
	if n.IsZero() {
		return &Node[P]{Payload: n}
	}
	return &Node[P]{Payload: n, Rest: BuildRecursive(n.Dec())}
}

// BuildLabelsRecursive is the recursive counterpart of BuildLabels.
func BuildLabelsRecursive(n uint64) *Node[Label] {
	if n == 0 {
		return &Node[Label]{Payload: RenderLabel(0)}
	}
	return &Node[Label]{Payload: RenderLabel(n), Rest: BuildLabelsRecursive(n - 1)}
}

// Len returns the number of nodes in the chain, including the
// terminal node.
func Len[P any](head *Node[P]) int {
	n := 0
	for ; head != nil; head = head.Rest {
		n++
	}
	return n
}

// Payloads returns the chain's payloads from head to tail.
func Payloads[P any](head *Node[P]) []P {
	var out []P
	for ; head != nil; head = head.Rest {
		out = append(out, head.Payload)
	}
	return out
}

// Release unlinks the chain one node at a time. After Release no node
// keeps any other reachable, so teardown never walks the chain deeply.
func Release[P any](head *Node[P]) {
	for head != nil {
		next := head.Rest
		head.Rest = nil
		head = next
	}
}
