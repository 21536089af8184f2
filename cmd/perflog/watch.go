// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/krcore/perflog/internal/logger"
	"github.com/krcore/perflog/logfmt"
)

// watch calls rebuild once, and again each time a run file in dirs
// changes and then stays quiet for debounce. It returns when ctx is
// done. Rebuild errors are logged and do not stop watching.
func watch(ctx context.Context, dirs []string, debounce time.Duration, rebuild func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	if err := rebuild(); err != nil {
		logger.Error("build failed", "error", err)
	}
	logger.Info("watching for changes", "dirs", dirs)

	// The timer only signals; rebuilds happen on this goroutine, one
	// at a time.
	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRunFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("run file changed", "path", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			if err := rebuild(); err != nil {
				logger.Error("rebuild failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

// isRunFile reports whether path is a run configuration or run log.
func isRunFile(path string) bool {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "run-") {
		return false
	}
	return strings.HasSuffix(base, ".toml") || strings.HasSuffix(base, ".toml"+logfmt.LogSuffix)
}
