// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// envTrial carries the encoded Trial a worker process should run.
const envTrial = "STACKBENCH_TRIAL"

// Worker exit codes other than the runtime's own.
const (
	exitOK          = 0
	exitWorkerError = 3
)

// MaybeRunWorker runs the trial requested by the parent Driver and
// exits, if this process was started as a worker. Otherwise it returns
// immediately. Programs that use a Driver must call it first thing in
// main (or TestMain).
func MaybeRunWorker() {
	spec := os.Getenv(envTrial)
	if spec == "" {
		return
	}
	os.Exit(runWorker(spec, os.Stdout, os.Stderr))
}

// runWorker expects stdout to be unbuffered so that phase lines reach
// the parent even if the trial kills the process.
func runWorker(spec string, stdout, stderr io.Writer) int {
	var t Trial
	if err := json.Unmarshal([]byte(spec), &t); err != nil {
		fmt.Fprintf(stderr, "stackbench worker: %v\n", errors.Wrap(err, "decode trial"))
		return exitWorkerError
	}

	size := StackSize(t.Stack)
	debug.SetMaxStack(int(size))

	res, err := RunLocal(t, func(p Phase) {
		fmt.Fprintf(stdout, "phase %s\n", p)
	})
	if err != nil {
		fmt.Fprintf(stderr, "stackbench worker: %v\n", err)
		var pe *PanicError
		if errors.As(err, &pe) {
			pe.WriteTrace(stderr)
		}
		return exitWorkerError
	}

	b, err := json.Marshal(res)
	if err != nil {
		fmt.Fprintf(stderr, "stackbench worker: %v\n", errors.Wrap(err, "encode result"))
		return exitWorkerError
	}
	fmt.Fprintf(stdout, "result %s\n", b)
	return exitOK
}
