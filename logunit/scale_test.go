// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logunit

import (
	"math"
	"testing"
)

func TestScale(t *testing.T) {
	test := func(num float64, want, wantPred string) {
		t.Helper()

		got := Scale(num)
		if got != want {
			t.Errorf("for %v, got %s, want %s", num, got, want)
		}

		// Check what happens when this number is exactly on
		// the crux between two scale factors.
		pred := math.Nextafter(num, 0)
		got = Scale(pred)
		if got != wantPred {
			dir := "-ε"
			if num < 0 {
				dir = "+ε"
			}
			t.Errorf("for %v%s, got %s, want %s", num, dir, got, wantPred)
		}
	}

	// Smoke tests
	test(0, "0.000", "0.000")
	test(1, "1.000", "1.000")
	test(-1, "-1.000", "-1.000")
	// Full range
	test(9999500000000000, "9999.5T", "9999.5T")
	test(999950000000000, "1000.0T", "999.9T")
	test(99995000000000, "100.0T", "99.99T")
	test(999950000, "1.000G", "999.9M")
	test(99995000, "100.0M", "99.99M")
	test(9999500, "10.00M", "9.999M")
	test(999950, "1.000M", "999.9k")
	test(99995, "100.0k", "99.99k")
	test(9999.5, "10.00k", "9.999k")
	test(999.95, "1.000k", "999.9")
	test(99.995, "100.0", "99.99")
	test(9.9995, "10.00", "9.999")
	// Below the base unit there is no prefix, only more digits.
	test(.99995, "1.000", "0.9999")
	test(.099995, "0.1000", "0.09999")
	test(.0099995, "0.01000", "0.009999")

	// Misc
	test(-99995000000000, "-100.0T", "-99.99T")
	test(1523401.5, "1.523M", "1.523M")
}

func TestCommonScale(t *testing.T) {
	s := CommonScale([]float64{1523401.5, 98000, math.NaN(), math.Inf(1)})
	if got := s.Format(1523401.5); got != "1523.40k" {
		t.Errorf("Format(1523401.5) = %s, want 1523.40k", got)
	}
	if got := s.Format(math.NaN()); got != "NaNk" {
		t.Errorf("Format(NaN) = %s, want NaNk", got)
	}
	if s := CommonScale([]float64{math.NaN()}); s != (Scaler{3, 1, ""}) {
		t.Errorf("CommonScale(NaN) = %+v, want unit scale", s)
	}
}

func TestNoOpScaler(t *testing.T) {
	if got := NoOpScaler.Format(1523401.5); got != "1523401.5" {
		t.Errorf("NoOpScaler.Format = %s", got)
	}
	if got := NoOpScaler.With(17.5, Latency); got != "17.5 us" {
		t.Errorf("NoOpScaler.With = %s", got)
	}
}

func TestAxisLabel(t *testing.T) {
	for _, test := range []struct {
		a    Axis
		dim  string
		want string
	}{
		{Axis{"Throughput", Throughput, false}, "x", "Throughput (op/s)"},
		{Axis{"Throughput", Throughput, true}, "x", "Throughput (10^x op/s)"},
		{Axis{"latency", Latency, true}, "y", "latency (10^y us)"},
		{Axis{"Thread Number", "", false}, "x", "Thread Number"},
	} {
		if got := test.a.Label(test.dim); got != test.want {
			t.Errorf("%+v.Label(%q) = %q, want %q", test.a, test.dim, got, test.want)
		}
	}
}
