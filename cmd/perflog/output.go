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
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/krcore/perflog/internal/config"
	"github.com/krcore/perflog/internal/logger"
	"github.com/krcore/perflog/logseries"
	"github.com/krcore/perflog/storage/db"
	_ "github.com/krcore/perflog/storage/db/sqlite3"
)

// figurePath returns the path of the figure called name. Names
// without a figure extension get ".png", so result.svg stays as is but
// results/rc.sweep becomes results/rc.sweep.png.
func figurePath(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".svg", ".pdf":
		return name
	}
	return name + ".png"
}

// writeFigure creates the figure at path and draws it with draw.
func writeFigure(c *config.Config, path string, draw func(w io.Writer, opts logseries.ChartOptions) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := draw(f, logseries.ChartOptions{Format: c.ChartFormatFor(path)}); err != nil {
		return fmt.Errorf("drawing %s: %w", path, err)
	}
	logger.Info("figure has been stored", "path", path)
	return nil
}

func openDB(c *config.Config) (*db.DB, error) {
	d, err := db.OpenSQL(c.DBDriver, c.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", c.DBDriver, err)
	}
	return d, nil
}

// storeSeries saves ss in the configured database, if any.
func storeSeries(ctx context.Context, c *config.Config, ss []*logseries.Series) error {
	if !c.UseDB() {
		return nil
	}
	d, err := openDB(c)
	if err != nil {
		return err
	}
	defer d.Close()
	for _, s := range ss {
		e, err := d.InsertSeries(ctx, s, c.XFactor)
		if err != nil {
			return fmt.Errorf("storing %s: %w", s.Dir, err)
		}
		logger.Info("stored series", "id", e.ID, "curve", e.Curve)
	}
	return nil
}

// storeTimelines saves tls in the configured database, if any.
func storeTimelines(ctx context.Context, c *config.Config, tls []*logseries.Timeline) error {
	if !c.UseDB() {
		return nil
	}
	d, err := openDB(c)
	if err != nil {
		return err
	}
	defer d.Close()
	for _, tl := range tls {
		e, err := d.InsertTimeline(ctx, tl)
		if err != nil {
			return fmt.Errorf("storing %s: %w", tl.Name, err)
		}
		logger.Info("stored timeline", "id", e.ID, "curve", e.Curve)
	}
	return nil
}
