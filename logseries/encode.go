// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logseries

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/krcore/perflog/logunit"
)

// A Format is an output format for series and timelines.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatText, FormatCSV, FormatJSON, FormatYAML}

// ParseFormat parses the name of an output format.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Documents for JSON and YAML output. Non-finite values are encoded as
// null.

type seriesDoc struct {
	Curve      string      `json:"curve" yaml:"curve"`
	Dir        string      `json:"dir" yaml:"dir"`
	Runs       []runDoc    `json:"runs" yaml:"runs"`
	Collisions []Collision `json:"collisions,omitempty" yaml:"collisions,omitempty"`
	Warnings   []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

type runDoc struct {
	Key        int       `json:"key" yaml:"key"`
	Run        string    `json:"run" yaml:"run"`
	Throughput *float64  `json:"throughput" yaml:"throughput"`
	Latency    *float64  `json:"latency" yaml:"latency"`
	Nodes      []nodeDoc `json:"nodes" yaml:"nodes"`
}

type nodeDoc struct {
	Node       string   `json:"node" yaml:"node"`
	Samples    int      `json:"samples" yaml:"samples"`
	Throughput *float64 `json:"throughput" yaml:"throughput"`
	Latency    *float64 `json:"latency" yaml:"latency"`
}

type timelineDoc struct {
	Curve        string     `json:"curve" yaml:"curve"`
	Points       []epochDoc `json:"points" yaml:"points"`
	Triggered    bool       `json:"triggered" yaml:"triggered"`
	TriggerIndex int        `json:"trigger_index" yaml:"trigger_index"`
	TriggerEpoch int64      `json:"trigger_epoch" yaml:"trigger_epoch"`
	Removed      []epochDoc `json:"removed" yaml:"removed"`
	Warnings     []string   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

type epochDoc struct {
	Epoch      int64    `json:"epoch" yaml:"epoch"`
	Throughput *float64 `json:"throughput" yaml:"throughput"`
}

func num(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

func errStrings(errs []error) []string {
	var out []string
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

func (s *Series) doc() seriesDoc {
	d := seriesDoc{
		Curve:      s.Title,
		Dir:        s.Dir,
		Runs:       []runDoc{},
		Collisions: s.Collisions,
		Warnings:   errStrings(s.Warnings),
	}
	for _, k := range s.keys {
		rs := s.runs[k]
		rd := runDoc{Key: k, Run: rs.Name, Throughput: num(rs.Throughput), Latency: num(rs.Latency), Nodes: []nodeDoc{}}
		for _, n := range rs.Nodes {
			rd.Nodes = append(rd.Nodes, nodeDoc{n.Node, n.N, num(n.Throughput), num(n.Latency)})
		}
		d.Runs = append(d.Runs, rd)
	}
	return d
}

func (tl *Timeline) doc() timelineDoc {
	points := func(ps []TimelinePoint) []epochDoc {
		out := make([]epochDoc, len(ps))
		for i, p := range ps {
			out[i] = epochDoc{p.Epoch, num(p.Throughput)}
		}
		return out
	}
	return timelineDoc{
		Curve:        tl.Name,
		Points:       points(tl.Points),
		Triggered:    tl.Triggered,
		TriggerIndex: tl.TriggerIndex,
		TriggerEpoch: tl.TriggerEpoch,
		Removed:      points(tl.Removed),
		Warnings:     errStrings(tl.Warnings),
	}
}

// WriteSeries writes ss to w in format f.
func WriteSeries(w io.Writer, f Format, ss []*Series) error {
	switch f {
	case FormatCSV:
		return ToCsv(w, ss, CSV_PLAIN)
	case FormatText:
		return writeSeriesText(w, ss)
	}
	docs := make([]seriesDoc, len(ss))
	for i, s := range ss {
		docs[i] = s.doc()
	}
	return encode(w, f, docs)
}

// WriteTimelines writes tls to w in format f.
func WriteTimelines(w io.Writer, f Format, tls []*Timeline) error {
	switch f {
	case FormatCSV:
		return TimelinesToCsv(w, tls)
	case FormatText:
		return writeTimelinesText(w, tls)
	}
	docs := make([]timelineDoc, len(tls))
	for i, tl := range tls {
		docs[i] = tl.doc()
	}
	return encode(w, f, docs)
}

func encode(w io.Writer, f Format, v interface{}) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", f)
}

// RunLine formats rs the way the harness scripts report a run, for
// example "run-2.toml: thpt: 35 op/s		latency: 17.5 us".
func RunLine(rs *RunSummary) string {
	return fmt.Sprintf("%s: thpt: %v %s\t\tlatency: %v %s", rs.Name, rs.Throughput, logunit.Throughput, rs.Latency, logunit.Latency)
}

func writeSeriesText(w io.Writer, ss []*Series) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	for i, s := range ss {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s (%s)\n", s.Title, s.Dir)
		pts := s.Points()
		var thpts, lats []float64
		for _, p := range pts {
			thpts = append(thpts, p.Throughput)
			lats = append(lats, p.Latency)
		}
		ts, ls := logunit.CommonScale(thpts), logunit.CommonScale(lats)
		fmt.Fprintf(tw, "key\trun\tthroughput\tlatency\t\n")
		for _, p := range pts {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", p.Key, s.runs[p.Key].Name, ts.With(p.Throughput, logunit.Throughput), ls.With(p.Latency, logunit.Latency))
		}
	}
	return tw.Flush()
}

func writeTimelinesText(w io.Writer, tls []*Timeline) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	for i, tl := range tls {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s: %d points, %d outliers removed", tl.Name, len(tl.Points), len(tl.Removed))
		if tl.Triggered {
			fmt.Fprintf(tw, ", trigger after epoch %d", tl.TriggerEpoch)
		}
		fmt.Fprintln(tw)
		var thpts []float64
		for _, p := range tl.Points {
			thpts = append(thpts, p.Throughput)
		}
		sc := logunit.CommonScale(thpts)
		fmt.Fprintf(tw, "epoch\tthroughput\t\n")
		for j, p := range tl.Points {
			mark := ""
			if tl.Triggered && j == tl.TriggerPoint {
				mark = "  <- trigger"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\n", p.Epoch, sc.With(p.Throughput, logunit.Throughput), mark)
		}
	}
	return tw.Flush()
}
