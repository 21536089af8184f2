// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logseries reduces harness logs to run summaries, series of
// runs and throughput timelines.
//
// A run log holds one report line per node per epoch. ReadRun groups
// these by node, Summarize reduces each node to a trimmed-mean
// throughput and latency, and a Builder combines the runs of a result
// directory into a Series keyed by run index times the x-factor.
package logseries

import (
	"fmt"
	"io"
	"os"

	"github.com/aclements/go-moremath/stats"

	"github.com/krcore/perflog/logfmt"
	"github.com/krcore/perflog/logmath"
)

// A NodeSeries collects the samples of one run by reporting node.
// Nodes are kept in order of first appearance and samples in line
// order.
type NodeSeries struct {
	nodes   []string
	samples map[string][]logfmt.Sample

	// Warnings are problems found while reading the run, such as
	// skipped malformed lines.
	Warnings []error
}

// NewNodeSeries returns an empty NodeSeries.
func NewNodeSeries() *NodeSeries {
	return &NodeSeries{samples: make(map[string][]logfmt.Sample)}
}

// Add appends s to the samples of s.Node.
func (ns *NodeSeries) Add(s *logfmt.Sample) {
	if _, ok := ns.samples[s.Node]; !ok {
		ns.nodes = append(ns.nodes, s.Node)
	}
	ns.samples[s.Node] = append(ns.samples[s.Node], *s)
}

// Nodes returns the nodes in order of first appearance.
func (ns *NodeSeries) Nodes() []string {
	return append([]string(nil), ns.nodes...)
}

// Samples returns the samples of node in line order.
func (ns *NodeSeries) Samples(node string) []logfmt.Sample {
	return ns.samples[node]
}

// Len returns the number of nodes.
func (ns *NodeSeries) Len() int {
	return len(ns.nodes)
}

// A NodeSummary is the reduction of one node's samples.
type NodeSummary struct {
	Node string
	// Throughput is the cold-start trimmed mean of the node's
	// throughput samples, in op/s.
	Throughput float64
	// Latency is the tail trimmed mean of the node's latency
	// samples, in us.
	Latency float64
	// N is the number of samples.
	N int

	Warnings []error
}

// A RunSummary is the reduction of one run log.
type RunSummary struct {
	// Name identifies the run, usually the base name of its
	// configuration file.
	Name string
	// Throughput is the sum of the per-node throughputs.
	Throughput float64
	// Latency is the mean of the per-node latencies. It is NaN if
	// the run has no nodes.
	Latency float64
	Nodes   []NodeSummary

	// Warnings holds the run's read warnings and the warnings of
	// each node summary.
	Warnings []error
}

// ReadRun reads a run log from r in throughput mode, up to its exit
// line or EOF. name is used in error messages.
//
// A malformed data line is returned as a *logfmt.SyntaxError unless
// opts.SkipMalformed is set, in which case it is reported through
// opts.Warn and recorded in the result's Warnings. If opts is nil,
// DefaultBuilderOptions is used.
func ReadRun(r io.Reader, name string, opts *BuilderOptions) (*NodeSeries, error) {
	if opts == nil {
		opts = DefaultBuilderOptions()
	}
	ns := NewNodeSeries()
	rd := logfmt.NewReader(r, name, logfmt.ThroughputMode)
scan:
	for rd.Scan() {
		switch rec := rd.Result().(type) {
		case *logfmt.Marker:
			if rec.Kind == logfmt.Exit {
				break scan
			}
		case *logfmt.SyntaxError:
			if !opts.SkipMalformed {
				return nil, rec
			}
			opts.warnf("skipping malformed line: %v\n", rec)
			ns.Warnings = append(ns.Warnings, rec)
		case *logfmt.Sample:
			ns.Add(rec)
		}
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return ns, nil
}

// Summarize reduces the samples of each node of ns and combines the
// nodes into a RunSummary.
func Summarize(name string, ns *NodeSeries) *RunSummary {
	rs := &RunSummary{Name: name}
	rs.Warnings = append(rs.Warnings, ns.Warnings...)
	lats := make([]float64, 0, ns.Len())
	for _, node := range ns.nodes {
		samples := ns.samples[node]
		thpts := make([]float64, len(samples))
		nodeLats := make([]float64, len(samples))
		for i, s := range samples {
			thpts[i], nodeLats[i] = s.Throughput, s.Latency
		}
		thpt, lat := logmath.NewSample(thpts), logmath.NewSample(nodeLats)
		sum := NodeSummary{
			Node:       node,
			Throughput: thpt.TrimmedMean(logmath.ColdStartTrim),
			Latency:    lat.TrimmedMean(logmath.TailTrim),
			N:          len(samples),
		}
		for _, w := range thpt.Warnings {
			sum.Warnings = append(sum.Warnings, fmt.Errorf("%s: @%s throughput: %w", name, node, w))
		}
		for _, w := range lat.Warnings {
			sum.Warnings = append(sum.Warnings, fmt.Errorf("%s: @%s latency: %w", name, node, w))
		}
		rs.Warnings = append(rs.Warnings, sum.Warnings...)
		rs.Nodes = append(rs.Nodes, sum)
		rs.Throughput += sum.Throughput
		lats = append(lats, sum.Latency)
	}
	// stats.Mean of no values is NaN.
	rs.Latency = stats.Mean(lats)
	return rs
}

// AggregateFile reads and summarizes the run log at path. The summary
// is named name.
func AggregateFile(path, name string, opts *BuilderOptions) (*RunSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()
	ns, err := ReadRun(f, path, opts)
	if err != nil {
		return nil, err
	}
	return Summarize(name, ns), nil
}
