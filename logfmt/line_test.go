// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logfmt

import (
	"strings"
	"testing"
)

func TestParseThroughputLine(t *testing.T) {
	for _, test := range []struct {
		line    string
		want    Sample
		ok      bool
		wantErr string
	}{
		{
			line: "@val02 [client] thpt: 1523401.5 reqs/sec, epoch. 2.31 us",
			want: Sample{Node: "val02", Throughput: 1523401.5, Latency: 2.31},
			ok:   true,
		},
		{
			line: "@n1 x thpt: 100 reqs/sec y epoch. 50 us",
			want: Sample{Node: "n1", Throughput: 100, Latency: 50},
			ok:   true,
		},
		{
			// The first thpt tag wins.
			line: "@n1 thpt: 1 reqs/sec thpt: 2 reqs/sec epoch. 3 us",
			want: Sample{Node: "n1", Throughput: 1, Latency: 3},
			ok:   true,
		},
		{
			line: "@n1 thpt: 1e6 reqs/sec epoch. 0.5 us",
			want: Sample{Node: "n1", Throughput: 1e6, Latency: 0.5},
			ok:   true,
		},
		// Not data lines.
		{line: ""},
		{line: "[bootstrap] connecting to val03"},
		{line: "@n1 epoch. 50 us"},
		{line: "@n1 thpt: 100 op/s epoch. 50 us"},
		// Data lines missing the other fields.
		{line: "thpt: 100 reqs/sec epoch. 50 us", wantErr: "no @node"},
		{line: "@n1 thpt: 100 reqs/sec", wantErr: "no \"epoch. <lat> us\""},
		{line: "client @n1 thpt: 100 reqs/sec epoch. 5 us", wantErr: "no @node"},
		{line: "@n1 thpt: [ 100 ] reqs/sec epoch. 50 us", wantErr: "bad throughput"},
		{line: "@n1 thpt: 100 reqs/sec epoch. fast us", wantErr: "bad latency"},
	} {
		got, ok, err := ParseThroughputLine(test.line)
		if test.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("%q: want error containing %q, got %v", test.line, test.wantErr, err)
			}
			if ok || got != (Sample{}) {
				t.Errorf("%q: got partial sample %+v with error", test.line, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", test.line, err)
			continue
		}
		if ok != test.ok || got != test.want {
			t.Errorf("%q: got %+v, %v, want %+v, %v", test.line, got, ok, test.want, test.ok)
		}
	}
}

func TestParseTimelineLine(t *testing.T) {
	for _, test := range []struct {
		line    string
		want    Sample
		ok      bool
		wantErr string
	}{
		{
			line: "epoch @ 12: thpt: 1523401.5 reqs/sec.",
			want: Sample{Epoch: 12, Throughput: 1523401.5},
			ok:   true,
		},
		{
			line: "[reporter.hh:30] epoch @7: thpt: 42 reqs/sec",
			want: Sample{Epoch: 7, Throughput: 42},
			ok:   true,
		},
		// Zero throughput is discarded.
		{line: "epoch @ 3: thpt: 0 reqs/sec."},
		// Both segments are required.
		{line: "thpt: 42 reqs/sec"},
		{line: "epoch @ 3: starting"},
		{line: "@n1 thpt: 42 reqs/sec epoch. 3 us"},
		{line: "epoch @ three: thpt: 42 reqs/sec", wantErr: "bad epoch"},
		{line: "epoch @ 3: thpt: many reqs/sec", wantErr: "bad throughput"},
	} {
		got, ok, err := ParseTimelineLine(test.line)
		if test.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("%q: want error containing %q, got %v", test.line, test.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", test.line, err)
			continue
		}
		if ok != test.ok || got != test.want {
			t.Errorf("%q: got %+v, %v, want %+v, %v", test.line, got, ok, test.want, test.ok)
		}
	}
}

func TestMarkers(t *testing.T) {
	if !IsExit("[main] client exit") {
		t.Error("exit line not recognized")
	}
	if IsExit("Exit") {
		t.Error("marker match must be case sensitive")
	}
	if !IsTrigger("=== Trigger race ===") {
		t.Error("trigger line not recognized")
	}
	if IsTrigger("trigger") {
		t.Error("marker match must be case sensitive")
	}
}
