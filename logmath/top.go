// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logmath

import "math"

// ArgMax returns the index of the first largest value in xs, or -1 if
// xs is empty. A NaN compares larger than any number, so the first NaN
// wins if there is one.
func ArgMax(xs []float64) int {
	best := -1
	for i, x := range xs {
		if best >= 0 && math.IsNaN(xs[best]) {
			break
		}
		if best < 0 || math.IsNaN(x) || x > xs[best] {
			best = i
		}
	}
	return best
}

// TopIndexes returns the indexes in xs of the n values removed by
// repeatedly deleting the current maximum, in removal order. Ties go
// to the earliest value. n is clamped to len(xs).
func TopIndexes(xs []float64, n int) []int {
	n = min(max(n, 0), len(xs))
	// rest holds the indexes of values not yet removed, in order.
	rest := make([]int, len(xs))
	for i := range rest {
		rest[i] = i
	}
	vals := append([]float64(nil), xs...)
	top := make([]int, 0, n)
	for k := 0; k < n; k++ {
		i := ArgMax(vals)
		top = append(top, rest[i])
		vals = append(vals[:i], vals[i+1:]...)
		rest = append(rest[:i], rest[i+1:]...)
	}
	return top
}
