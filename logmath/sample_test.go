// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logmath

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestNewSampleCopies(t *testing.T) {
	in := []float64{3, 1, 2}
	s := NewSample(in)
	if !reflect.DeepEqual(s.Values, []float64{1, 2, 3}) {
		t.Errorf("Values = %v, want sorted", s.Values)
	}
	if !reflect.DeepEqual(in, []float64{3, 1, 2}) {
		t.Errorf("NewSample modified its input: %v", in)
	}
}

func TestWindow(t *testing.T) {
	six := NewSample([]float64{60, 10, 50, 20, 40, 30})
	for _, test := range []struct {
		s    *Sample
		t    Trim
		want []float64
	}{
		{six, ColdStartTrim, []float64{20, 30, 40, 50}},
		{six, TailTrim, []float64{20, 30, 40, 50}},
		{NewSample([]float64{1, 2, 3, 4, 5, 6, 7, 8}), ColdStartTrim, []float64{2, 3, 4, 5}},
		{NewSample([]float64{1, 2, 3, 4, 5, 6, 7, 8}), TailTrim, []float64{4, 5, 6, 7}},
		{NewSample([]float64{3, 1, 2}), ColdStartTrim, []float64{2, 3}},
		{NewSample([]float64{3, 1, 2}), TailTrim, []float64{1, 2}},
		{NewSample([]float64{1}), ColdStartTrim, []float64{}},
		{NewSample([]float64{1}), TailTrim, []float64{}},
		{NewSample(nil), TailTrim, []float64{}},
	} {
		got := test.s.Window(test.t)
		if len(got) == 0 && len(test.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%v.Window(%s) = %v, want %v", test.s.Values, test.t.Name, got, test.want)
		}
	}
}

func TestTrimmedMean(t *testing.T) {
	for _, test := range []struct {
		values   []float64
		trim     Trim
		want     float64
		warnings int
	}{
		// Throughputs of six epochs: mean(20, 30, 40, 50).
		{[]float64{10, 20, 30, 40, 50, 60}, ColdStartTrim, 35, 0},
		// Latencies of six epochs: mean(10, 15, 20, 25).
		{[]float64{5, 10, 15, 20, 25, 30}, TailTrim, 17.5, 0},
		{[]float64{30, 5, 25, 10, 20, 15}, TailTrim, 17.5, 0},
		{[]float64{7, 7, 7, 7, 7}, ColdStartTrim, 7, 0},
		// Short samples use the clamped window.
		{[]float64{1, 2, 3}, ColdStartTrim, 2.5, 1},
		{[]float64{1, 2, 3}, TailTrim, 1.5, 1},
		// A single value is used as is.
		{[]float64{42}, ColdStartTrim, 42, 1},
		{[]float64{42}, TailTrim, 42, 1},
	} {
		s := NewSample(test.values)
		got := s.TrimmedMean(test.trim)
		if got != test.want {
			t.Errorf("TrimmedMean(%v, %s) = %v, want %v", test.values, test.trim.Name, got, test.want)
		}
		if len(s.Warnings) != test.warnings {
			t.Errorf("TrimmedMean(%v, %s) warnings = %v, want %d", test.values, test.trim.Name, s.Warnings, test.warnings)
		}
	}
}

func TestTrimmedMeanEmpty(t *testing.T) {
	s := NewSample(nil)
	if got := s.TrimmedMean(ColdStartTrim); !math.IsNaN(got) {
		t.Errorf("TrimmedMean(empty) = %v, want NaN", got)
	}
	if len(s.Warnings) != 1 || !errors.Is(s.Warnings[0], ErrEmpty) {
		t.Errorf("warnings = %v, want ErrEmpty", s.Warnings)
	}
}

func TestBounds(t *testing.T) {
	lo, hi := NewSample([]float64{4, -1, 9}).Bounds()
	if lo != -1 || hi != 9 {
		t.Errorf("Bounds = %v, %v, want -1, 9", lo, hi)
	}
	lo, hi = NewSample(nil).Bounds()
	if !math.IsNaN(lo) || !math.IsNaN(hi) {
		t.Errorf("Bounds(empty) = %v, %v, want NaN, NaN", lo, hi)
	}
}
