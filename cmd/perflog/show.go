// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/krcore/perflog/internal/config"
	"github.com/krcore/perflog/logseries"
	"github.com/krcore/perflog/storage/db"
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print stored series and timelines",
	Long: `Show lists the experiments stored in the database, newest first. Given
an experiment ID it prints that series or timeline in the configured
format.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		if len(args) > 0 {
			id = args[0]
		}
		return show(cmd.Context(), cmd.OutOrStdout(), cfg, id, showOpts)
	},
}

type showOptions struct {
	curve  string
	limit  int
	delete bool
}

var showOpts showOptions

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showOpts.curve, "curve", "", "only list experiments of this curve")
	showCmd.Flags().IntVar(&showOpts.limit, "limit", 20, "list at most this many experiments (0 means all)")
	showCmd.Flags().BoolVar(&showOpts.delete, "delete", false, "delete the experiment instead of printing it")
}

func show(ctx context.Context, w io.Writer, c *config.Config, id string, opts showOptions) error {
	if !c.UseDB() {
		return errors.New("show needs --db-driver and --db-dsn")
	}
	d, err := openDB(c)
	if err != nil {
		return err
	}
	defer d.Close()

	if id == "" {
		if opts.delete {
			return errors.New("--delete needs an experiment ID")
		}
		return listExperiments(ctx, w, d, opts)
	}
	if opts.delete {
		if err := d.DeleteExperiment(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(w, "deleted %s\n", id)
		return nil
	}

	f, err := logseries.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	e, err := d.Experiment(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	switch e.Kind {
	case db.KindSeries:
		s, err := d.Series(ctx, id)
		if err != nil {
			return err
		}
		return logseries.WriteSeries(w, f, []*logseries.Series{s})
	case db.KindTimeline:
		tl, err := d.Timeline(ctx, id)
		if err != nil {
			return err
		}
		return logseries.WriteTimelines(w, f, []*logseries.Timeline{tl})
	}
	return fmt.Errorf("%s: unknown experiment kind %q", id, e.Kind)
}

func listExperiments(ctx context.Context, w io.Writer, d *db.DB, opts showOptions) error {
	es, err := d.ListExperiments(ctx, opts.curve, opts.limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tCURVE\tX-FACTOR\tCREATED\tDIR")
	for _, e := range es {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", e.ID, e.Kind, e.Curve, e.XFactor, e.Created.Format(time.RFC3339), e.Dir)
	}
	return tw.Flush()
}
