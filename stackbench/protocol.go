// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"regexp"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// A worker announces each phase on stdout before entering it and
// finishes with the encoded Result:
//
//	phase construction
//	phase evaluation
//	result {"samples":[...],"output":0,"perturbed":false}
//
// Stack exhaustion kills the worker with the runtime's own message on
// stderr, so the last phase line tells where it happened.

// WorkerOutput is the parsed output of one worker.
type WorkerOutput struct {
	// Phase is the last phase the worker announced.
	Phase Phase

	// Result is nil unless the worker finished the trial.
	Result *Result

	// Overflow is true if the runtime reported stack exhaustion.
	Overflow bool

	// Limit is the stack limit from the runtime's message, if any.
	Limit Bytes
}

var (
	workerPhase  = regexp.MustCompile(`(?m)^phase (\S+)$`)
	workerResult = regexp.MustCompile(`(?m)^result (.*)$`)
	stackLimit   = regexp.MustCompile(`(?m)stack exceeds ([0-9]+)-byte limit`)
	stackFatal   = regexp.MustCompile(`(?m)^fatal error: stack overflow`)
)

func ParseWorkerOutput(stdout, stderr string) (WorkerOutput, error) {
	var out WorkerOutput
	for _, m := range workerPhase.FindAllStringSubmatch(stdout, -1) {
		p, ok := parsePhase(m[1])
		if !ok {
			return out, errors.Errorf("unknown phase %q in worker output", m[1])
		}
		out.Phase = p
	}

	if m := workerResult.FindStringSubmatch(stdout); m != nil {
		var res Result
		if err := json.Unmarshal([]byte(m[1]), &res); err != nil {
			return out, errors.Wrap(err, "decode worker result")
		}
		out.Result = &res
	}

	if m := stackLimit.FindStringSubmatch(stderr); m != nil {
		out.Overflow = true
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err == nil {
			out.Limit = Bytes(n)
		}
	}
	if stackFatal.MatchString(stderr) {
		out.Overflow = true
	}
	return out, nil
}
