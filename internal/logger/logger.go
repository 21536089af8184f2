// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logger provides a simple wrapper around slog for structured logging.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

var level = new(slog.LevelVar)

// Logger is the global logger instance.
var Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

// SetLevel sets the minimum level logged by the default handler.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// ParseLevel parses a level name such as "debug" or "WARN".
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warnf logs a printf-style warning. Its signature matches the Warn
// hook of the analysis options.
func Warnf(format string, args ...interface{}) {
	Logger.Warn(strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
}
