// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logmath provides the order statistics used to reduce noisy
// per-epoch benchmark reports to a single value.
//
// The reductions are fixed-count trims of a sorted sample. Degenerate
// inputs do not fail; they add warnings to the Sample, to be reported
// with the results.
package logmath

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
)

// A Sample is a set of repeated measurements of one quantity.
type Sample struct {
	// Values are the measured values, in ascending order.
	Values []float64

	// Warnings is a list of warnings about this sample that
	// should be reported to the user.
	Warnings []error
}

// NewSample constructs a Sample from a set of measurements. values is
// copied.
func NewSample(values []float64) *Sample {
	vs := append([]float64(nil), values...)
	sort.Float64s(vs)
	return &Sample{Values: vs}
}

func (s *Sample) sample() stats.Sample {
	return stats.Sample{Xs: s.Values, Sorted: true}
}

// Mean returns the mean of all values, or NaN if s is empty.
func (s *Sample) Mean() float64 {
	return s.sample().Mean()
}

// Bounds returns the smallest and largest values, or NaN, NaN if s is
// empty.
func (s *Sample) Bounds() (lo, hi float64) {
	return s.sample().Bounds()
}

// A Trim selects a window of a sorted sample using slice bounds. A
// negative bound counts from the end of the sample, and bounds are
// clamped to the sample, so Trim{-5, -1} of a 3 value sample selects
// values [0, 2).
type Trim struct {
	Lo, Hi int
	Name   string
}

var (
	// ColdStartTrim drops the smallest value and keeps the next
	// four. It rejects the cold-start epoch of a run along with the
	// bulk of the fast epochs, for throughput.
	ColdStartTrim = Trim{1, 5, "cold-start"}

	// TailTrim keeps the four largest values except the largest. It
	// rejects one spike while weighting toward tail latency.
	TailTrim = Trim{-5, -1, "tail"}
)

// Width returns the number of values the trim keeps from a large
// enough sample.
func (t Trim) Width() int {
	if (t.Lo < 0) == (t.Hi < 0) {
		return t.Hi - t.Lo
	}
	// Mixed-sign bounds depend on the sample size.
	return -1
}

// bounds resolves t against a sample of n values.
func (t Trim) bounds(n int) (lo, hi int) {
	clamp := func(i int) int {
		if i < 0 {
			i += n
		}
		return min(max(i, 0), n)
	}
	lo, hi = clamp(t.Lo), clamp(t.Hi)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Window returns the values of s selected by t.
func (s *Sample) Window(t Trim) []float64 {
	lo, hi := t.bounds(len(s.Values))
	return s.Values[lo:hi]
}

// ErrEmpty is the warning recorded when a statistic is requested of
// an empty sample.
var ErrEmpty = errors.New("no values")

// TrimmedMean returns the mean of the values of s selected by t.
//
// If the sample is too small for the full window, the clamped window
// is used. If the clamped window is empty but s is not, trimming is
// skipped and the mean of all values is returned. If s is empty, the
// result is NaN. Each of these cases adds a warning to s.
func (s *Sample) TrimmedMean(t Trim) float64 {
	n := len(s.Values)
	if n == 0 {
		s.Warnings = append(s.Warnings, fmt.Errorf("%s trimmed mean: %w", t.Name, ErrEmpty))
		return math.NaN()
	}
	w := s.Window(t)
	if len(w) == 0 {
		s.Warnings = append(s.Warnings, fmt.Errorf("%s trimmed mean: only %d value(s), trimming skipped", t.Name, n))
		return s.Mean()
	}
	if want := t.Width(); want > 0 && len(w) < want {
		s.Warnings = append(s.Warnings, fmt.Errorf("%s trimmed mean: only %d value(s), averaged %d of %d", t.Name, n, len(w), want))
	}
	return stats.Mean(w)
}
