// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

const overflowStderr = `runtime: goroutine stack exceeds 262144-byte limit
runtime: sp=0xc020160398 stack=[0xc020160000, 0xc0201a0000]
fatal error: stack overflow

runtime stack:
runtime.throw({0x4b6a1b?, 0x0?})
`

func TestParseWorkerOutputOverflow(t *testing.T) {
	out, err := ParseWorkerOutput("phase construction\nphase evaluation\n", overflowStderr)
	require.NoError(t, err)
	require.Equal(t, WorkerOutput{Phase: PhaseEvaluation, Overflow: true, Limit: 256 * KiB}, out)

	out, err = ParseWorkerOutput("phase construction\n", "fatal error: stack overflow\n")
	require.NoError(t, err)
	require.Equal(t, PhaseConstruction, out.Phase)
	require.True(t, out.Overflow)
}

func TestParseWorkerOutputResult(t *testing.T) {
	stdout := "phase evaluation\nresult {\"samples\":[300,200,100],\"output\":8,\"perturbed\":true}\n"
	out, err := ParseWorkerOutput(stdout, "")
	require.NoError(t, err)
	require.False(t, out.Overflow)
	require.NotNil(t, out.Result)
	require.Equal(t, Result{Samples: Samples{300, 200, 100}, Output: 8, Perturbed: true}, *out.Result)
}

func TestParseWorkerOutputErrors(t *testing.T) {
	_, err := ParseWorkerOutput("phase teardown\n", "")
	require.Error(t, err)

	_, err = ParseWorkerOutput("result {not json\n", "")
	require.Error(t, err)
}

func TestRunWorkerBadSpec(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := runWorker("{", &stdout, &stderr)
	require.Equal(t, exitWorkerError, code)
	require.Empty(t, stdout.String())
	require.Contains(t, stderr.String(), "decode trial")
}
