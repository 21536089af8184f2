// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

type CsvOptions int

const (
	CSV_PLAIN CsvOptions = 0
	CSV_NODES CsvOptions = 1 // one extra row per node of each run
)

// ToCsv writes the series in ss to out, one row per run key. Missing
// or non-finite values are written as empty cells.
func ToCsv(out io.Writer, ss []*Series, options CsvOptions) error {
	tab := [][]string{{"curve", "key", "run", "node", "throughput_ops", "latency_us"}}
	for _, s := range ss {
		for _, k := range s.keys {
			rs := s.runs[k]
			key := strconv.Itoa(k)
			tab = append(tab, []string{s.Title, key, rs.Name, "", strof(rs.Throughput), strof(rs.Latency)})
			if options&CSV_NODES == 0 {
				continue
			}
			for _, n := range rs.Nodes {
				tab = append(tab, []string{s.Title, key, rs.Name, n.Node, strof(n.Throughput), strof(n.Latency)})
			}
		}
	}
	return writeAll(out, tab)
}

// TimelinesToCsv writes the points of each timeline in tls to out.
// Removed outliers are not written. The trigger column marks the first
// point read after the trigger line.
func TimelinesToCsv(out io.Writer, tls []*Timeline) error {
	tab := [][]string{{"curve", "epoch", "throughput_ops", "trigger"}}
	for _, tl := range tls {
		for i, p := range tl.Points {
			mark := ""
			if tl.Triggered && i == tl.TriggerPoint {
				mark = "1"
			}
			tab = append(tab, []string{tl.Name, strconv.FormatInt(p.Epoch, 10), strof(p.Throughput), mark})
		}
	}
	return writeAll(out, tab)
}

func writeAll(out io.Writer, tab [][]string) error {
	csvw := csv.NewWriter(out)
	if err := csvw.WriteAll(tab); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func strof(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return ""
	}
	return fmt.Sprintf("%f", x)
}
