// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Perflog summarizes the logs of RDMA benchmark runs.
//
// Usage:
//
//	perflog analyse [-x...] [dir]
//	perflog paint [-x...] [-o name] dir...
//	perflog race [-o name] [label=log...]
//	perflog show [id]
//
// A result directory holds one run-<index>.toml configuration per run
// and, next to it, the run's log run-<index>.toml.txt. Each log line of
// the form
//
//	@<node> ... thpt: <float> reqs/sec ... epoch. <float> us
//
// is one throughput and latency sample of a node. Reading stops at the
// first line containing "exit".
//
// For every node, perflog averages the second to fifth smallest
// throughput samples and the fifth to second largest latency samples.
// The throughput of a run is the sum over its nodes and the latency of
// a run is the mean over its nodes. The runs of a directory form a
// curve whose x-axis key is the run index times the x-factor, which is
// the number of times -x (or --xfactor) is given.
//
// Analyse prints one line per run of a single directory followed by the
// curve, and draws it as <dir>.png. Paint draws one curve per
// directory into a single figure, result.png by default. Curves whose
// name contains "connect" are plotted on log10 axes.
//
// Race reads timeline logs, where each line of the form
//
//	... epoch @<int>: ... thpt: <float> reqs/sec
//
// is one epoch, removes the five highest-throughput epochs and plots
// the throughput of each log over time. A line containing "Trigger"
// marks the moment an event was injected. Inputs are label=path pairs;
// without any, race reads the three race hashing logs below the first
// --input directory.
//
// The -format flag selects text, csv, json or yaml output. With
// --db-driver and --db-dsn set, results are also stored in a sqlite3
// or MySQL database, and show prints stored results back.
//
// Every flag can also be set in a yaml file given by --config or
// through a PERFLOG_<KEY> environment variable, optionally from a .env
// file in the current directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	checkError(err)
}

func checkError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
