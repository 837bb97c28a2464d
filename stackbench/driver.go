// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultStack is the stack budget of a trial when none is configured.
const DefaultStack Bytes = 64 * MiB

// ErrWorkerFailed means a worker process died for a reason other than
// stack exhaustion. It is fatal to a sweep.
var ErrWorkerFailed = errors.New("worker failed")

// A Driver runs trials in isolated worker processes, so that a trial
// that exhausts its stack takes down only its own process.
type Driver struct {
	// Stack is the per-trial stack budget. Zero means DefaultStack.
	Stack Bytes

	// Probe selects the stack probe used by workers.
	Probe ProbeMode

	Log *zap.Logger

	// Command returns the command that starts a worker. The worker
	// must call MaybeRunWorker at startup. If nil, the Driver
	// re-executes the running binary.
	Command func(ctx context.Context) *exec.Cmd
}

func (d *Driver) stack() Bytes {
	if d.Stack == 0 {
		return DefaultStack
	}
	return d.Stack
}

func (d *Driver) command(ctx context.Context) *exec.Cmd {
	if d.Command != nil {
		return d.Command(ctx)
	}
	return exec.CommandContext(ctx, os.Args[0])
}

// workerEnv returns env with the worker's settings added. Stack
// shrinking is turned off so that a GC cannot move a probed stack.
func workerEnv(env []string, spec []byte) []string {
	godebug := "gcshrinkstackoff=1"
	out := make([]string, 0, len(env)+2)
	for _, kv := range env {
		switch {
		case strings.HasPrefix(kv, "GODEBUG="):
			godebug = strings.TrimPrefix(kv, "GODEBUG=") + "," + godebug
		case strings.HasPrefix(kv, envTrial+"="):
		default:
			out = append(out, kv)
		}
	}
	return append(out, "GODEBUG="+godebug, envTrial+"="+string(spec))
}

// Run runs one trial in a worker process.
//
// A trial that exhausts its stack yields an Outcome whose Overflow is
// the phase it died in. A trial that cannot run at all, such as a depth
// out of its payload's range, yields an Outcome with Err set. Run
// returns an error only if the worker failed in some other way.
func (d *Driver) Run(ctx context.Context, t Trial) (Outcome, error) {
	log := logger(d.Log)
	if t.Stack == 0 {
		t.Stack = d.stack()
	}
	if t.Probe == ProbeStack {
		t.Probe = d.Probe
	}
	o := Outcome{Trial: t}
	if err := t.Validate(); err != nil {
		o.Err = err
		log.Debug("trial skipped", zap.String("trial", t.FullName()), zap.Error(err))
		return o, nil
	}

	spec, err := json.Marshal(t)
	if err != nil {
		return o, errors.Wrap(err, "encode trial")
	}
	cmd := d.command(ctx)
	cmd.Env = workerEnv(os.Environ(), spec)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	log.Debug("trial started", zap.String("trial", t.FullName()))
	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	out, perr := ParseWorkerOutput(stdout.String(), stderr.String())
	switch {
	case runErr == nil && perr == nil && out.Result != nil:
		o.Result = *out.Result
		log.Debug("trial finished",
			zap.String("trial", t.FullName()),
			zap.Int("samples", len(o.Samples)),
			zap.Duration("elapsed", elapsed))
		if o.Perturbed {
			log.Warn("GC ran during trial; samples may be shifted", zap.String("trial", t.FullName()))
		}
		return o, nil

	case runErr != nil && out.Overflow && out.Phase != PhaseNone:
		o.Overflow = out.Phase
		log.Info("stack overflow",
			zap.String("trial", t.FullName()),
			zap.Stringer("phase", out.Phase),
			zap.Stringer("limit", out.Limit))
		return o, nil

	case ctx.Err() != nil:
		return o, ctx.Err()
	}

	if perr == nil {
		perr = runErr
	}
	if perr == nil {
		perr = errors.New("no result")
	}
	log.Error("worker failed",
		zap.String("trial", t.FullName()),
		zap.Error(perr),
		zap.String("stderr", stderr.String()))
	return o, errors.Wrapf(ErrWorkerFailed, "%s: %v\n%s", t.FullName(), perr, indent(stderr.String()))
}

// Sweep runs every trial of p in order, reporting each outcome to r as
// it completes. Overflowing and skipped trials do not stop the sweep;
// a failed worker does.
func (d *Driver) Sweep(ctx context.Context, p Plan, r *Reporter) error {
	log := logger(d.Log)
	for _, g := range p {
		log.Info("group", zap.String("title", g.Title), zap.Uint64s("depths", g.Depths))
		for _, depth := range g.Depths {
			r.Header(depth)
			for _, t := range g.Trials(depth) {
				o, err := d.Run(ctx, t)
				if err != nil {
					return err
				}
				r.Outcome(o)
			}
		}
	}
	return nil
}
