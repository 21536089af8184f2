// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/krcore/perflog/internal/config"
	"github.com/krcore/perflog/internal/logger"
	"github.com/krcore/perflog/logseries"
)

// defaultAnalyseDir is the result directory analysed when none is
// given.
const defaultAnalyseDir = "out"

var analyseCmd = &cobra.Command{
	Use:     "analyse [dir]",
	Aliases: []string{"analyze"},
	Short:   "Summarize the runs of one result directory",
	Long: `Analyse prints the throughput and latency of every run in a result
directory, then the curve they form, and draws the curve as <dir>.png.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs := inputs(args, cfg)
		dir := defaultAnalyseDir
		if len(dirs) > 0 {
			dir = dirs[0]
		}
		build := func() error {
			return analyse(cmd.Context(), cmd.OutOrStdout(), cfg, dir)
		}
		if cfg.Watch {
			return watch(cmd.Context(), []string{dir}, cfg.Debounce, build)
		}
		return build()
	},
}

var paintCmd = &cobra.Command{
	Use:   "paint dir...",
	Short: "Draw the curves of several result directories",
	Long: `Paint builds one curve per result directory and draws them all into a
single figure, result.png unless --output says otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs := inputs(args, cfg)
		if len(dirs) == 0 {
			return fmt.Errorf("no input directories")
		}
		build := func() error {
			return paint(cmd.Context(), cmd.OutOrStdout(), cfg, dirs)
		}
		if cfg.Watch {
			return watch(cmd.Context(), dirs, cfg.Debounce, build)
		}
		return build()
	},
}

func init() {
	rootCmd.AddCommand(analyseCmd)
	rootCmd.AddCommand(paintCmd)
	addWatchFlags(analyseCmd)
	addWatchFlags(paintCmd)
}

// inputs returns the command-line arguments, or the configured inputs
// if there are none.
func inputs(args []string, c *config.Config) []string {
	if len(args) > 0 {
		return args
	}
	return c.Inputs
}

func analyse(ctx context.Context, w io.Writer, c *config.Config, dir string) error {
	b, err := logseries.NewBuilder(c.BuilderOptions(logger.Warnf))
	if err != nil {
		return err
	}
	s, err := b.BuildDir(dir)
	if err != nil {
		return fmt.Errorf("%s: %w", dir, err)
	}
	if f, _ := logseries.ParseFormat(c.Format); f == logseries.FormatText {
		for _, key := range s.Keys() {
			fmt.Fprintln(w, logseries.RunLine(s.Get(key)))
		}
		fmt.Fprintln(w)
	}
	name := c.Output
	if name == "" {
		name = filepath.Clean(dir)
	}
	return report(ctx, w, c, []*logseries.Series{s}, name)
}

func paint(ctx context.Context, w io.Writer, c *config.Config, dirs []string) error {
	b, err := logseries.NewBuilder(c.BuilderOptions(logger.Warnf))
	if err != nil {
		return err
	}
	ss, err := b.BuildAll(ctx, dirs)
	if err != nil {
		return err
	}
	name := c.Output
	if name == "" {
		name = "result"
	}
	return report(ctx, w, c, ss, name)
}

// report writes ss to w in the configured format and then produces
// the configured figures and database records. figure names the
// figure file.
func report(ctx context.Context, w io.Writer, c *config.Config, ss []*logseries.Series, figure string) error {
	f, err := logseries.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	if err := logseries.WriteSeries(w, f, ss); err != nil {
		return err
	}
	if c.ASCII {
		asciiOut(w, f, seriesASCII(ss))
	}
	if c.Chart {
		err := writeFigure(c, figurePath(figure), func(w io.Writer, opts logseries.ChartOptions) error {
			return logseries.SeriesChart(w, ss, opts)
		})
		if err != nil {
			return err
		}
	}
	return storeSeries(ctx, c, ss)
}

// asciiOut prints a terminal chart after text output, or on standard
// error when w carries machine-readable output.
func asciiOut(w io.Writer, f logseries.Format, graph string) {
	if graph == "" {
		return
	}
	if f != logseries.FormatText {
		w = os.Stderr
	}
	fmt.Fprintf(w, "\n%s\n", graph)
}
