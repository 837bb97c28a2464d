// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/antoniszymanski/gopc-go"
	"github.com/pkg/errors"
)

// ErrTrialPanic is wrapped by errors reporting a panic inside a trial.
var ErrTrialPanic = errors.New("trial panicked")

// A PanicError carries a panic recovered from a trial goroutine and
// the call stack at the point of the panic.
type PanicError struct {
	Trial  string
	Value  any
	Frames []runtime.Frame
}

// newTrialPanic must be called from the deferred recover so that the
// panicking frames are still on the stack.
func newTrialPanic(t Trial, r any) *PanicError {
	return &PanicError{Trial: t.FullName(), Value: r, Frames: callStack(3)}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: panic: %v", e.Trial, e.Value)
}

func (e *PanicError) Unwrap() error { return ErrTrialPanic }

// WriteTrace writes the panic's call stack to w, innermost first.
func (e *PanicError) WriteTrace(w io.Writer) {
	for _, f := range e.Frames {
		pkg, fn := splitFuncPath(f.Function)
		fmt.Fprintf(w, "    at %s%s\n        %s:%d\n", pkg, fn, f.File, f.Line)
	}
}

// callStack returns the caller's stack without runtime internals. The
// goroutine's creation site is appended last.
func callStack(skip int) []runtime.Frame {
	callers := make([]uintptr, 16)
	for {
		n := runtime.Callers(2+skip, callers)
		if n < len(callers) {
			callers = callers[:n]
			break
		}
		callers = make([]uintptr, 2*len(callers))
	}
	if pc := gopc.Get(); pc != 0 {
		callers = append(callers, pc)
	}
	var out []runtime.Frame
	frames := runtime.CallersFrames(callers)
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") || frame.Function == "runtime.main" {
			out = append(out, frame)
		}
		if !more {
			break
		}
	}
	return out
}

// splitFuncPath splits a function path as formatted in
// [runtime.Frame.Function] into its package path and function name.
func splitFuncPath(funcPath string) (pkgPath string, funcName string) {
	if funcPath == "" {
		return "", ""
	}
	// The last element of a package path has "." escaped, so the
	// first "." after the last "/" ends the package path. A method on
	// an unexported receiver starts at ".(".
	if sep := strings.Index(funcPath, ".("); sep >= 0 {
		return funcPath[:sep+1], funcPath[sep+1:]
	}
	offset := 1
	if sep := strings.LastIndexByte(funcPath, '/'); sep >= 0 {
		offset += sep
	}
	if offset > len(funcPath) {
		return "", funcPath
	}
	if sep := strings.IndexByte(funcPath[offset:], '.'); sep >= 0 {
		return funcPath[:offset+sep+1], funcPath[offset+sep+1:]
	}
	return "", funcPath
}
