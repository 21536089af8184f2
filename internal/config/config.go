// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/krcore/perflog/internal/logger"
	"github.com/krcore/perflog/logseries"
)

// EnvPrefix prefixes the environment variables that set configuration
// keys, for example PERFLOG_XFACTOR.
const EnvPrefix = "PERFLOG"

// Configuration keys.
const (
	KeyInput         = "input"
	KeyOutput        = "output"
	KeyXFactor       = "xfactor"
	KeyFormat        = "format"
	KeySkipMalformed = "skip_malformed"
	KeyStrict        = "strict"
	KeyParallelism   = "parallelism"
	KeyChart         = "chart"
	KeyChartFormat   = "chart_format"
	KeyASCII         = "ascii"
	KeyDBDriver      = "db_driver"
	KeyDBDSN         = "db_dsn"
	KeyLogLevel      = "log_level"
	KeyWatch         = "watch"
	KeyDebounce      = "debounce"
)

// Default values
const (
	defaultFormat   = "text"
	defaultLogLevel = "info"
	defaultDebounce = 500 * time.Millisecond
)

var (
	validDrivers = map[string]bool{
		"sqlite3": true, "mysql": true,
	}
	validChartFormats = map[string]bool{
		"png": true, "jpg": true, "jpeg": true, "tif": true, "tiff": true, "svg": true, "pdf": true,
	}
)

// Config is the configuration of one invocation.
type Config struct {
	Inputs        []string
	Output        string
	XFactor       int
	Format        string
	SkipMalformed bool
	Strict        bool
	Parallelism   int
	Chart         bool
	ChartFormat   string
	ASCII         bool
	DBDriver      string
	DBDSN         string
	LogLevel      string
	Watch         bool
	Debounce      time.Duration
}

// LoadDotEnv loads the first .env file found in paths into the
// environment. Variables already set are not overridden. Missing files
// are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		return nil
	}
	return nil
}

// Init sets up v to read PERFLOG_* environment variables and, if
// cfgFile is not empty, the configuration file cfgFile.
func Init(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyFormat, defaultFormat)
	v.SetDefault(KeyChart, true)
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyDebounce, defaultDebounce)

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	logger.Debug("loaded config file", "path", v.ConfigFileUsed())
	return nil
}

// New reads a Config from v.
func New(v *viper.Viper) *Config {
	return &Config{
		Inputs:        v.GetStringSlice(KeyInput),
		Output:        v.GetString(KeyOutput),
		XFactor:       v.GetInt(KeyXFactor),
		Format:        v.GetString(KeyFormat),
		SkipMalformed: v.GetBool(KeySkipMalformed),
		Strict:        v.GetBool(KeyStrict),
		Parallelism:   v.GetInt(KeyParallelism),
		Chart:         v.GetBool(KeyChart),
		ChartFormat:   v.GetString(KeyChartFormat),
		ASCII:         v.GetBool(KeyASCII),
		DBDriver:      v.GetString(KeyDBDriver),
		DBDSN:         v.GetString(KeyDBDSN),
		LogLevel:      v.GetString(KeyLogLevel),
		Watch:         v.GetBool(KeyWatch),
		Debounce:      v.GetDuration(KeyDebounce),
	}
}

func (c *Config) Validate() error {
	if _, err := logseries.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("invalid format: %s (valid: text, csv, json, yaml)", c.Format)
	}

	if c.XFactor < 0 {
		return fmt.Errorf("invalid x-factor: %d (must not be negative)", c.XFactor)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("invalid parallelism: %d (must not be negative)", c.Parallelism)
	}

	if c.ChartFormat != "" && !validChartFormats[strings.ToLower(c.ChartFormat)] {
		return fmt.Errorf("invalid chart format: %s (valid: png, jpg, tif, svg, pdf)", c.ChartFormat)
	}

	// Validate database settings
	if (c.DBDriver == "") != (c.DBDSN == "") {
		return fmt.Errorf("db driver and db dsn must be set together")
	}
	if c.DBDriver != "" && !validDrivers[c.DBDriver] {
		return fmt.Errorf("invalid db driver: %s (valid: sqlite3, mysql)", c.DBDriver)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Watch && c.Debounce <= 0 {
		return fmt.Errorf("invalid debounce: %v (must be positive)", c.Debounce)
	}

	return nil
}

// ChartFormatFor returns the chart format for writing to path: the
// configured format if any, or the one implied by path.
func (c *Config) ChartFormatFor(path string) string {
	if c.ChartFormat != "" {
		return strings.ToLower(c.ChartFormat)
	}
	return logseries.ChartFormat(path)
}

// BuilderOptions returns the analysis options of c. Warnings go to
// warn.
func (c *Config) BuilderOptions(warn func(format string, args ...interface{})) *logseries.BuilderOptions {
	return &logseries.BuilderOptions{
		XFactor:       c.XFactor,
		SkipMalformed: c.SkipMalformed,
		Strict:        c.Strict,
		Parallelism:   c.Parallelism,
		Warn:          warn,
	}
}

// UseDB reports whether results are stored in a database.
func (c *Config) UseDB() bool {
	return c.DBDriver != ""
}
