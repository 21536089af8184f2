// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logunit

import "fmt"

// Units of the quantities read from harness logs.
const (
	Throughput = "op/s"
	Latency    = "us"
)

// With formats val scaled by s followed by unit, for example
// "1.523M op/s".
func (s Scaler) With(val float64, unit string) string {
	return s.Format(val) + " " + unit
}

// An Axis describes how one quantity is laid out on a chart axis.
type Axis struct {
	Name string
	Unit string
	// Log reports whether values are plotted as their base-10
	// logarithm.
	Log bool
}

// Label returns the axis label, noting the log transform if any, for
// example "Throughput (op/s)" or "latency (10^y us)".
func (a Axis) Label(dim string) string {
	if a.Unit == "" {
		return a.Name
	}
	if a.Log {
		return fmt.Sprintf("%s (10^%s %s)", a.Name, dim, a.Unit)
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.Unit)
}
