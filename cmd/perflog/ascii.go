// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/guptarohit/asciigraph"

	"github.com/krcore/perflog/logseries"
)

const (
	asciiWidth  = 60
	asciiHeight = 12
)

var asciiColors = []asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Cyan,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Orange,
	asciigraph.Red,
	asciigraph.Magenta,
	asciigraph.Purple,
}

// plotMany draws the non-empty curves of data with their legends. It
// returns "" if every curve is empty.
func plotMany(data [][]float64, legends []string, caption string) string {
	var keep [][]float64
	var names []string
	var colors []asciigraph.AnsiColor
	for i, d := range data {
		if len(d) == 0 {
			continue
		}
		keep = append(keep, d)
		names = append(names, legends[i])
		colors = append(colors, asciiColors[i%len(asciiColors)])
	}
	if len(keep) == 0 {
		return ""
	}
	return asciigraph.PlotMany(keep,
		asciigraph.Height(asciiHeight),
		asciigraph.Width(asciiWidth),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(names...),
	)
}

// seriesASCII draws the throughput of each series in key order.
func seriesASCII(ss []*logseries.Series) string {
	data := make([][]float64, len(ss))
	legends := make([]string, len(ss))
	for i, s := range ss {
		legends[i] = s.Title
		for _, p := range s.Points() {
			data[i] = append(data[i], p.Throughput)
		}
	}
	return plotMany(data, legends, "Thread-Throughput (op/s)")
}

// timelinesASCII draws the throughput of each timeline in M op/s.
func timelinesASCII(tls []*logseries.Timeline) string {
	const M = 1000 * 1000
	data := make([][]float64, len(tls))
	legends := make([]string, len(tls))
	for i, tl := range tls {
		legends[i] = tl.Name
		for _, p := range tl.Points {
			data[i] = append(data[i], p.Throughput/M)
		}
	}
	return plotMany(data, legends, "Throughput (M op/s)")
}
