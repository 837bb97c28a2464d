// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

const ptrSize = 4 << (^uintptr(0) >> 63)

const frameSize = 512

// MinStack is the smallest stack budget a trial accepts.
const MinStack Bytes = 64 * KiB

// WithStack grows the stack by ~size bytes and calls f.
//
// The stack is grown with a mix of pointer and scalar data to
// simulate a real stack (though all pointers are nil).
func WithStack(size Bytes, f func()) {
	if size < frameSize {
		f()
	} else {
		withStack1(size, f)
	}
}

func withStack1(size Bytes, f func()) uintptr {
	// Use frameSize bytes of stack frame.
	var thing [(frameSize - 4*ptrSize) / ptrSize / 2]struct {
		s uintptr
		p *byte
	}
	if size <= frameSize {
		f()
	} else {
		withStack1(size-frameSize, f)
	}
	return thing[0].s
}

// Reserve grows the calling goroutine's stack to size, which must be a
// power of two, and returns.
//
// The runtime doubles a stack whenever it runs out, copying every frame
// to the new allocation, and only shrinks stacks during GC. Touching
// three quarters of size forces the last doubling to land exactly on
// size. Once Reserve returns, frame addresses on this goroutine stay
// put until the stack outgrows size or a GC shrinks it.
func Reserve(size Bytes) {
	WithStack(size/2+size/4, func() {})
}

// StackSize returns the goroutine stack size a trial with the given
// budget runs on.
func StackSize(budget Bytes) Bytes {
	if budget < MinStack {
		return MinStack
	}
	return budget.Pow2Floor()
}
