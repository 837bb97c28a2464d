// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Framecost measures how many bytes of stack each recursive call
// consumes, for several payload sizes, with the recursion either
// carried on the call stack (pure) or walked over a chain pre-built on
// the heap (boxed).
//
// Every trial runs in its own process with a fixed stack budget, so a
// trial that exhausts its stack is reported as an overflow and the
// sweep carries on.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/filipevarjao/go-stackbench/bench"
	"github.com/filipevarjao/go-stackbench/stackbench"
	"github.com/spf13/cobra"
)

var (
	flagStack          *stackbench.Bytes
	flagDepths         []uint
	flagProbe          string
	flagRecursiveBuild bool
	flagMetrics        bool
	flagColor          string
	flagLogLevel       string
)

var rootCmd = &cobra.Command{
	Use:          "framecost",
	Short:        "Measure per-call stack cost of pure and boxed recursion",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSweep,
}

var compareCmd = &cobra.Command{
	Use:   "compare [report]",
	Short: "Compare pure and boxed per-level cost in a framecost report",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCompare,
}

func init() {
	fs := rootCmd.Flags()
	flagStack = stackbench.FlagBytes(fs, "stack", stackbench.DefaultStack, "per-trial stack `budget`, rounded down to a power of two")
	fs.UintSliceVar(&flagDepths, "depths", nil, "run every kind at these `depths` instead of the default plan")
	fs.StringVar(&flagProbe, "probe", "stack", "stack probe: stack or none")
	fs.BoolVar(&flagRecursiveBuild, "recursive-build", false, "also run boxed trials whose chain is built recursively")
	fs.BoolVar(&flagMetrics, "metrics", false, "print derived metrics after each trial")
	fs.StringVar(&flagColor, "color", "auto", "colour overflow lines: auto, always or never")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log `level` for diagnostics on stderr")

	rootCmd.AddCommand(compareCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	log, err := stackbench.NewLogger(flagLogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	probe, err := stackbench.ParseProbeMode(flagProbe)
	if err != nil {
		return err
	}
	color, err := stackbench.ParseColorMode(flagColor)
	if err != nil {
		return err
	}

	plan := stackbench.DefaultPlan()
	if len(flagDepths) > 0 {
		depths := make([]uint64, len(flagDepths))
		for i, d := range flagDepths {
			depths[i] = uint64(d)
		}
		plan = stackbench.DepthPlan(depths)
	}
	if flagRecursiveBuild {
		plan = plan.WithStrategy(stackbench.BoxedRecursive)
	}

	r := stackbench.NewFileReporter(os.Stdout, color)
	if flagMetrics {
		r.WithMetrics(log)
	}

	fmt.Fprintln(os.Stdout, "=== Stack usage per recursion level ===")
	fmt.Fprintf(os.Stdout, "stack budget %s per trial (lower per level = less stack per call)\n", stackbench.StackSize(*flagStack))

	d := &stackbench.Driver{Stack: *flagStack, Probe: probe, Log: log}
	return d.Sweep(cmd.Context(), plan, r)
}

func runCompare(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	records, err := bench.Parse(in)
	if err != nil {
		return err
	}
	for _, c := range bench.Compare(records) {
		saving, ok := c.Saving()
		if !ok {
			fmt.Printf("depth %d %s: %s vs %s\n", c.Depth, c.Kind, status(c.Pure), status(c.Boxed))
			continue
		}
		fmt.Printf("depth %d %s: pure %.2f, boxed %.2f bytes/level (boxed saves %.2f)\n",
			c.Depth, c.Kind, c.Pure.PerLevel, c.Boxed.PerLevel, saving)
	}
	return nil
}

func status(r *bench.Record) string {
	switch {
	case r == nil:
		return "missing"
	case r.Measured:
		return fmt.Sprintf("%s %.2f", r.Strategy, r.PerLevel)
	case r.Overflow != "":
		return r.Strategy + " overflowed"
	case r.Skipped:
		return r.Strategy + " skipped"
	}
	return r.Strategy + " insufficient data"
}

func main() {
	stackbench.MaybeRunWorker()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
