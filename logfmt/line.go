// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logfmt reads the line-oriented log format written by the
// benchmark harness.
//
// The harness prints one report line per reporting node and epoch, for
// example
//
//	@val02 [client 3] thpt: 1523401.5 reqs/sec, epoch. 2.31 us
//
// and, in the timeline reporter,
//
//	epoch @ 12: thpt: 1523401.5 reqs/sec.
//
// Everything else in a log (banners, connection chatter) is ignored.
// The grammar is deliberately loose: each field is located by a lazy,
// start-anchored pattern, so a field matches at most once per line and
// the first occurrence of its tag wins.
package logfmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// A Mode selects which fields a line must carry to count as a sample.
type Mode int

const (
	// ThroughputMode extracts node, throughput and latency. It is
	// used to aggregate runs.
	ThroughputMode Mode = iota
	// TimelineMode extracts throughput and epoch. It is used to
	// build timelines.
	TimelineMode
)

func (m Mode) String() string {
	switch m {
	case ThroughputMode:
		return "throughput"
	case TimelineMode:
		return "timeline"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// A Sample is one observation extracted from a log line.
type Sample struct {
	// Node is the reporting node, the text following '@' up to the
	// first space. It is empty in TimelineMode.
	Node string
	// Throughput is in requests per second.
	Throughput float64
	// Latency is in microseconds. It is zero in TimelineMode.
	Latency float64
	// Epoch is the reporter's epoch number. It is zero in
	// ThroughputMode.
	Epoch int64

	fileName string
	line     int
}

// Pos returns the file name and 1-based line number s was read from.
// If s was not read by a Reader, it returns "", 0.
func (s *Sample) Pos() (fileName string, line int) {
	return s.fileName, s.line
}

var (
	nodePattern       = regexp.MustCompile(`^@(.*?)\s.*?$`)
	throughputPattern = regexp.MustCompile(`^.*?thpt:\s(.*?)\sreqs/sec.*?$`)
	latencyPattern    = regexp.MustCompile(`^.*?epoch\.\s(.*?)\sus`)
	epochPattern      = regexp.MustCompile(`^.*?epoch\s@(.*?):.*?$`)
)

// Marker substrings. A line containing exitMarker ends a throughput
// log; a line containing triggerMarker marks the trigger event in a
// timeline log.
const (
	exitMarker    = "exit"
	triggerMarker = "Trigger"
)

// IsExit reports whether line is an exit marker line.
func IsExit(line string) bool {
	return strings.Contains(line, exitMarker)
}

// IsTrigger reports whether line is a trigger marker line.
func IsTrigger(line string) bool {
	return strings.Contains(line, triggerMarker)
}

// lastSubmatch returns the capture of the last match of re in line.
func lastSubmatch(re *regexp.Regexp, line string) (string, bool) {
	ms := re.FindAllStringSubmatch(line, -1)
	if len(ms) == 0 {
		return "", false
	}
	return ms[len(ms)-1][1], true
}

// ParseThroughputLine parses line in ThroughputMode.
//
// If line carries no "thpt: <x> reqs/sec" segment, it is not a data
// line and ParseThroughputLine returns ok == false and a nil error.
// Otherwise the node and latency fields are required: a missing field
// or an unparsable number is reported as an error and no sample is
// returned.
func ParseThroughputLine(line string) (s Sample, ok bool, err error) {
	thpt, found := lastSubmatch(throughputPattern, line)
	if !found {
		return Sample{}, false, nil
	}
	node, found := lastSubmatch(nodePattern, line)
	if !found {
		return Sample{}, false, fmt.Errorf("data line has no @node field")
	}
	s.Node = node
	if s.Throughput, err = parseFloat(thpt); err != nil {
		return Sample{}, false, fmt.Errorf("bad throughput %q", thpt)
	}
	lat, found := lastSubmatch(latencyPattern, line)
	if !found {
		return Sample{}, false, fmt.Errorf("data line has no \"epoch. <lat> us\" field")
	}
	if s.Latency, err = parseFloat(lat); err != nil {
		return Sample{}, false, fmt.Errorf("bad latency %q", lat)
	}
	return s, true, nil
}

// ParseTimelineLine parses line in TimelineMode.
//
// A line is a timeline sample only if it carries both a throughput
// segment and an "epoch @<n>:" segment, and its throughput is not
// zero. Otherwise ParseTimelineLine returns ok == false and a nil
// error. Unparsable numbers are reported as errors.
func ParseTimelineLine(line string) (s Sample, ok bool, err error) {
	thpt, found := lastSubmatch(throughputPattern, line)
	if !found {
		return Sample{}, false, nil
	}
	epoch, found := lastSubmatch(epochPattern, line)
	if !found {
		return Sample{}, false, nil
	}
	if s.Throughput, err = parseFloat(thpt); err != nil {
		return Sample{}, false, fmt.Errorf("bad throughput %q", thpt)
	}
	if s.Epoch, err = strconv.ParseInt(strings.TrimSpace(epoch), 10, 64); err != nil {
		return Sample{}, false, fmt.Errorf("bad epoch %q", epoch)
	}
	if s.Throughput == 0 {
		return Sample{}, false, nil
	}
	return s, true, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
