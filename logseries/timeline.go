// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logseries

import (
	"fmt"
	"io"
	"os"

	"github.com/krcore/perflog/logfmt"
	"github.com/krcore/perflog/logmath"
)

// OutlierCount is the number of highest-throughput samples removed
// from a timeline.
const OutlierCount = 5

// A TimelinePoint is one epoch of a timeline.
type TimelinePoint struct {
	Epoch      int64
	Throughput float64
}

// A Timeline is the throughput of one run over time.
type Timeline struct {
	Name string
	// Points are the samples in line order, without the removed
	// outliers.
	Points []TimelinePoint

	// TriggerIndex is the number of samples accepted before the last
	// trigger line, counting the outliers. It is 0 if there was no
	// trigger line.
	TriggerIndex int
	// Triggered reports whether the log had a trigger line.
	Triggered bool
	// TriggerEpoch is the epoch of the last sample before the
	// trigger, or 0 if there was none.
	TriggerEpoch int64
	// TriggerPoint is the index in Points of the first point read
	// after the trigger line. It may equal len(Points).
	TriggerPoint int

	// Removed are the outliers, in removal order.
	Removed []TimelinePoint

	Warnings []error
}

// ReadTimeline reads a timeline log from r. name is used in error
// messages and names the result.
//
// Malformed numbers are returned as a *logfmt.SyntaxError unless
// opts.SkipMalformed is set. If opts is nil, DefaultBuilderOptions is
// used.
func ReadTimeline(r io.Reader, name string, opts *BuilderOptions) (*Timeline, error) {
	if opts == nil {
		opts = DefaultBuilderOptions()
	}
	tl := &Timeline{Name: name}
	var all []TimelinePoint
	rd := logfmt.NewReader(r, name, logfmt.TimelineMode)
	for rd.Scan() {
		switch rec := rd.Result().(type) {
		case *logfmt.Marker:
			if rec.Kind != logfmt.Trigger {
				continue
			}
			tl.Triggered = true
			tl.TriggerIndex = len(all)
			tl.TriggerEpoch = 0
			if len(all) > 0 {
				tl.TriggerEpoch = all[len(all)-1].Epoch
			}
		case *logfmt.SyntaxError:
			if !opts.SkipMalformed {
				return nil, rec
			}
			opts.warnf("skipping malformed line: %v\n", rec)
			tl.Warnings = append(tl.Warnings, rec)
		case *logfmt.Sample:
			all = append(all, TimelinePoint{rec.Epoch, rec.Throughput})
		}
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}

	if len(all) < OutlierCount {
		w := fmt.Errorf("%s: only %d sample(s), removed %d outliers instead of %d", name, len(all), len(all), OutlierCount)
		opts.warnf("%v\n", w)
		tl.Warnings = append(tl.Warnings, w)
	}
	thpts := make([]float64, len(all))
	for i, p := range all {
		thpts[i] = p.Throughput
	}
	drop := make([]bool, len(all))
	for _, i := range logmath.TopIndexes(thpts, OutlierCount) {
		drop[i] = true
		tl.Removed = append(tl.Removed, all[i])
	}
	tl.Points = make([]TimelinePoint, 0, len(all)-len(tl.Removed))
	for i, p := range all {
		if drop[i] {
			continue
		}
		if i < tl.TriggerIndex {
			tl.TriggerPoint++
		}
		tl.Points = append(tl.Points, p)
	}
	return tl, nil
}

// ReadTimelineFile reads the timeline log at path. The timeline is
// named name.
func ReadTimelineFile(path, name string, opts *BuilderOptions) (*Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening timeline log: %w", err)
	}
	defer f.Close()
	tl, err := ReadTimeline(f, path, opts)
	if err != nil {
		return nil, err
	}
	tl.Name = name
	return tl, nil
}
