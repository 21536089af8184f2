// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/krcore/perflog/internal/config"
	"github.com/krcore/perflog/internal/logger"
	"github.com/krcore/perflog/logfmt"
	"github.com/krcore/perflog/logseries"
)

// raceLogs are the timeline logs read below the input directory when
// race is given no logs.
var raceLogs = []struct{ label, path string }{
	{"KRCore", "race-hashing-krcore/run-krcore-race-hashing.toml.txt"},
	{"KRCore (async)", "race-hashing-krcore-async/run-krcore-race-hashing-async.toml.txt"},
	{"Verbs", "race-hashing-verbs/run-verbs-race-hashing.toml.txt"},
}

var raceCmd = &cobra.Command{
	Use:   "race [label=log...]",
	Short: "Draw the throughput of timeline logs over time",
	Long: `Race reads timeline logs, drops the five highest-throughput epochs of
each and draws their throughput in M op/s against the epoch. Without
arguments it reads the KRCore, KRCore (async) and Verbs race hashing
logs below the first --input directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return race(cmd.Context(), cmd.OutOrStdout(), cfg, raceInputs(args, cfg))
	},
}

func init() {
	rootCmd.AddCommand(raceCmd)
}

// A labeledLog is a timeline log and the name of its curve.
type labeledLog struct {
	label, path string
}

// raceInputs returns the timeline logs named by args, or the default
// race hashing logs if there are none.
func raceInputs(args []string, c *config.Config) []labeledLog {
	var logs []labeledLog
	for _, arg := range args {
		label, path := logfmt.SplitLabel(arg)
		logs = append(logs, labeledLog{label, path})
	}
	if len(logs) > 0 {
		return logs
	}
	dir := "."
	if len(c.Inputs) > 0 {
		dir = c.Inputs[0]
	}
	for _, l := range raceLogs {
		logs = append(logs, labeledLog{l.label, filepath.Join(dir, l.path)})
	}
	return logs
}

func race(ctx context.Context, w io.Writer, c *config.Config, logs []labeledLog) error {
	opts := c.BuilderOptions(logger.Warnf)
	tls := make([]*logseries.Timeline, len(logs))
	g, gctx := errgroup.WithContext(ctx)
	if c.Parallelism > 0 {
		g.SetLimit(c.Parallelism)
	}
	for i, l := range logs {
		i, l := i, l
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tl, err := logseries.ReadTimelineFile(l.path, l.label, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", l.label, err)
			}
			tls[i] = tl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f, err := logseries.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	if err := logseries.WriteTimelines(w, f, tls); err != nil {
		return err
	}
	if c.ASCII {
		asciiOut(w, f, timelinesASCII(tls))
	}
	if c.Chart {
		name := c.Output
		if name == "" {
			name = "result"
		}
		err := writeFigure(c, figurePath(name), func(w io.Writer, opts logseries.ChartOptions) error {
			return logseries.TimelineChart(w, tls, opts)
		})
		if err != nil {
			return err
		}
	}
	return storeTimelines(ctx, c, tls)
}
