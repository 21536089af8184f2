// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logseries

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/krcore/perflog/logfmt"
)

// A Series maps run keys to run summaries for one result directory.
// Keys iterate in ascending order.
type Series struct {
	// Dir is the result directory the series was built from.
	Dir string
	// Title is the curve title derived from Dir.
	Title string

	keys []int
	runs map[int]*RunSummary

	// Collisions records every run that replaced an earlier run with
	// the same key.
	Collisions []Collision

	// Warnings holds the directory's warnings, including those of
	// its runs.
	Warnings []error
}

// A Collision records two runs of one directory that map to the same
// key. The later run, in (index, file name) order, wins.
type Collision struct {
	Key      int    `json:"key" yaml:"key"`
	Replaced string `json:"replaced" yaml:"replaced"`
	By       string `json:"by" yaml:"by"`
}

// NewSeries returns an empty Series for dir.
func NewSeries(dir string) *Series {
	return &Series{Dir: dir, Title: Title(dir), runs: make(map[int]*RunSummary)}
}

// Set stores rs under key. If key was already present, Set returns the
// replaced summary.
func (s *Series) Set(key int, rs *RunSummary) (old *RunSummary) {
	old, ok := s.runs[key]
	s.runs[key] = rs
	if !ok {
		i := sort.SearchInts(s.keys, key)
		s.keys = append(s.keys, 0)
		copy(s.keys[i+1:], s.keys[i:])
		s.keys[i] = key
	}
	return old
}

// Get returns the summary stored under key, or nil.
func (s *Series) Get(key int) *RunSummary {
	return s.runs[key]
}

// Keys returns the keys of s in ascending order.
func (s *Series) Keys() []int {
	return append([]int(nil), s.keys...)
}

// Len returns the number of keys in s.
func (s *Series) Len() int {
	return len(s.keys)
}

// A Point is one entry of a Series.
type Point struct {
	Key        int
	Throughput float64
	Latency    float64
}

// Points returns the entries of s in ascending key order.
func (s *Series) Points() []Point {
	pts := make([]Point, len(s.keys))
	for i, k := range s.keys {
		rs := s.runs[k]
		pts[i] = Point{k, rs.Throughput, rs.Latency}
	}
	return pts
}

// A CollisionError is returned in strict mode when two runs of a
// directory map to the same key.
type CollisionError struct {
	Dir string
	Collision
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: runs %s and %s both map to key %d", e.Dir, e.Replaced, e.By, e.Key)
}

// BuilderOptions configure a Builder and the run readers it uses.
type BuilderOptions struct {
	XFactor       int  // run key = run index * XFactor
	SkipMalformed bool // skip malformed data lines with a warning instead of failing the run
	Strict        bool // treat key collisions as errors
	Parallelism   int  // directories built concurrently by BuildAll; 0 means one per directory
	Warn          func(format string, args ...interface{})
}

// DefaultBuilderOptions returns the options of a plain invocation:
// x-factor 0, malformed lines fatal, collisions reported as warnings on
// standard error.
func DefaultBuilderOptions() *BuilderOptions {
	return &BuilderOptions{
		Warn: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format, args...)
		},
	}
}

func (bo *BuilderOptions) warnf(format string, args ...interface{}) {
	if bo.Warn != nil {
		bo.Warn(format, args...)
	}
}

// A Builder builds Series from result directories.
type Builder struct {
	opts BuilderOptions
}

// NewBuilder creates a Builder with options bo.
func NewBuilder(bo *BuilderOptions) (*Builder, error) {
	if bo == nil {
		bo = DefaultBuilderOptions()
	}
	if bo.XFactor < 0 {
		return nil, fmt.Errorf("x-factor %d is negative", bo.XFactor)
	}
	if bo.Parallelism < 0 {
		return nil, fmt.Errorf("parallelism %d is negative", bo.Parallelism)
	}
	return &Builder{opts: *bo}, nil
}

// BuildDir builds the Series of the runs in dir.
//
// Runs are aggregated in ascending (index, file name) order, so when
// two runs map to the same key the later one deterministically wins.
// The collision is recorded in the Series and reported through Warn,
// or returned as a *CollisionError if the Builder is strict.
func (b *Builder) BuildDir(dir string) (*Series, error) {
	runs, warnings, err := logfmt.FindRuns(dir)
	if err != nil {
		return nil, fmt.Errorf("finding runs: %w", err)
	}
	s := NewSeries(dir)
	for _, w := range warnings {
		b.opts.warnf("skipping run: %v\n", w)
		s.Warnings = append(s.Warnings, w)
	}
	if b.opts.XFactor == 0 && len(runs) > 0 {
		w := fmt.Errorf("%s: x-factor is 0, every run maps to key 0", dir)
		b.opts.warnf("%v\n", w)
		s.Warnings = append(s.Warnings, w)
	}
	for _, run := range runs {
		name := filepath.Base(run.Config)
		rs, err := AggregateFile(run.Log, name, &b.opts)
		if err != nil {
			return nil, err
		}
		s.Warnings = append(s.Warnings, rs.Warnings...)
		key := run.Index * b.opts.XFactor
		old := s.Set(key, rs)
		if old == nil {
			continue
		}
		c := Collision{Key: key, Replaced: old.Name, By: rs.Name}
		if b.opts.Strict {
			return nil, &CollisionError{dir, c}
		}
		w := &CollisionError{dir, c}
		b.opts.warnf("%v; keeping %s\n", w, rs.Name)
		s.Collisions = append(s.Collisions, c)
		s.Warnings = append(s.Warnings, w)
	}
	return s, nil
}

// BuildAll builds the Series of each of dirs, concurrently, and
// returns them in the order of dirs. It stops at the first failing
// directory or when ctx is done.
func (b *Builder) BuildAll(ctx context.Context, dirs []string) ([]*Series, error) {
	out := make([]*Series, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	if b.opts.Parallelism > 0 {
		g.SetLimit(b.opts.Parallelism)
	}
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := b.BuildDir(dir)
			if err != nil {
				return fmt.Errorf("%s: %w", dir, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
