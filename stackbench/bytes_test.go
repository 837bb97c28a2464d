// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackbench

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestParseBytes(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Bytes
	}{
		{"512B", 512},
		{"64kB", 64000},
		{"64KiB", 64 * KiB},
		{"1.5MiB", 3 * MiB / 2},
		{"1GB", GB},
	} {
		got, err := ParseBytes(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseBytes("64 furlongs")
	require.Error(t, err)
}

func TestFlagBytes(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	stack := FlagBytes(fs, "stack", DefaultStack, "")
	require.Equal(t, DefaultStack, *stack)
	require.NoError(t, fs.Parse([]string{"--stack", "8MiB"}))
	require.Equal(t, 8*MiB, int(*stack))
	require.Equal(t, "bytes", fs.Lookup("stack").Value.Type())
}

func TestStackSize(t *testing.T) {
	require.Equal(t, MinStack, StackSize(0))
	require.Equal(t, MinStack, StackSize(1000))
	require.Equal(t, Bytes(64*MiB), StackSize(64*MiB))
	require.Equal(t, Bytes(64*MiB), StackSize(100*MiB))
	require.Equal(t, Bytes(MiB), StackSize(MB*1.5))
}
