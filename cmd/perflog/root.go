// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/krcore/perflog/internal/config"
	"github.com/krcore/perflog/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "perflog",
	Short: "RDMA benchmark log analyser",
	Long: `Perflog summarizes the throughput and latency logs of benchmark runs,
draws them as curves and stores them for later comparison.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml)")
	pf.StringSliceP("input", "i", nil, "input directories or logs")
	pf.StringP("output", "o", "", "output figure name (.png is added if there is no extension)")
	pf.CountP("xfactor", "x", "x-axis multi-factor; each occurrence adds one")
	pf.String("format", "text", "output format: text, csv, json or yaml")
	pf.Bool("skip-malformed", false, "skip malformed log lines with a warning")
	pf.Bool("strict", false, "fail when two runs map to the same key")
	pf.Int("parallelism", 0, "directories read concurrently (0 means all)")
	pf.Bool("chart", true, "write the figure")
	pf.String("chart-format", "", "figure format (default from the output extension)")
	pf.Bool("ascii", false, "also draw a terminal chart")
	pf.String("db-driver", "", "store results in a database: sqlite3 or mysql")
	pf.String("db-dsn", "", "database data source name")
	pf.String("log-level", "info", "log level: debug, info, warn or error")

	for key, flag := range map[string]string{
		config.KeyInput:         "input",
		config.KeyOutput:        "output",
		config.KeyXFactor:       "xfactor",
		config.KeyFormat:        "format",
		config.KeySkipMalformed: "skip-malformed",
		config.KeyStrict:        "strict",
		config.KeyParallelism:   "parallelism",
		config.KeyChart:         "chart",
		config.KeyChartFormat:   "chart-format",
		config.KeyASCII:         "ascii",
		config.KeyDBDriver:      "db-driver",
		config.KeyDBDSN:         "db-dsn",
		config.KeyLogLevel:      "log-level",
	} {
		viper.BindPFlag(key, pf.Lookup(flag))
	}
}

func initConfig() {
	checkError(config.LoadDotEnv())
	checkError(config.Init(viper.GetViper(), cfgFile))
}

// loadConfig reads and validates the configuration of the command
// about to run.
func loadConfig(cmd *cobra.Command, args []string) error {
	cfg = config.New(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	return nil
}

// addWatchFlags adds the flags of the commands that can rebuild their
// output when the input changes.
func addWatchFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("watch", false, "rebuild whenever a run log changes")
	cmd.Flags().Duration("debounce", 500*time.Millisecond, "quiet period before a rebuild")
	cmd.PreRunE = bindWatchFlags
}

// bindWatchFlags binds the watch flags of cmd, which is about to run,
// and reloads the configuration. Only the running command's flags may
// be bound, since they share their configuration keys.
func bindWatchFlags(cmd *cobra.Command, args []string) error {
	for key, flag := range map[string]string{
		config.KeyWatch:    "watch",
		config.KeyDebounce: "debounce",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return loadConfig(cmd, args)
}
