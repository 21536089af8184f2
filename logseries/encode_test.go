// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logseries

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func testSeries() *Series {
	s := NewSeries("results/rc.sweep")
	s.Set(4, &RunSummary{
		Name: "run-4.toml", Throughput: 350, Latency: 3.5,
		Nodes: []NodeSummary{{Node: "n1", Throughput: 350, Latency: 3.5, N: 6}},
	})
	s.Set(2, &RunSummary{
		Name: "run-2.toml", Throughput: 35, Latency: 17.5,
		Nodes: []NodeSummary{{Node: "n1", Throughput: 35, Latency: 17.5, N: 6}},
	})
	s.Set(8, &RunSummary{Name: "run-8.toml", Throughput: 0, Latency: math.NaN()})
	return s
}

func testTimeline() *Timeline {
	return &Timeline{
		Name:         "KRCore",
		Points:       []TimelinePoint{{2, 1e6}, {4, 3e6}, {7, 2e6}},
		TriggerIndex: 3,
		Triggered:    true,
		TriggerEpoch: 3,
		TriggerPoint: 1,
		Removed:      []TimelinePoint{{3, 9e6}},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"text", "CSV", "json", "Yaml"} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q): %v", name, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) succeeded")
	}
}

func TestToCsv(t *testing.T) {
	var buf bytes.Buffer
	if err := ToCsv(&buf, []*Series{testSeries()}, CSV_NODES); err != nil {
		t.Fatal(err)
	}
	want := `curve,key,run,node,throughput_ops,latency_us
sweep,2,run-2.toml,,35.000000,17.500000
sweep,2,run-2.toml,n1,35.000000,17.500000
sweep,4,run-4.toml,,350.000000,3.500000
sweep,4,run-4.toml,n1,350.000000,3.500000
sweep,8,run-8.toml,,0.000000,
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestTimelinesToCsv(t *testing.T) {
	var buf bytes.Buffer
	if err := TimelinesToCsv(&buf, []*Timeline{testTimeline()}); err != nil {
		t.Fatal(err)
	}
	want := `curve,epoch,throughput_ops,trigger
KRCore,2,1000000.000000,
KRCore,4,3000000.000000,1
KRCore,7,2000000.000000,
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteSeriesJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSeries(&buf, FormatJSON, []*Series{testSeries()}); err != nil {
		t.Fatal(err)
	}
	var got []struct {
		Curve string
		Runs  []struct {
			Key        int
			Run        string
			Throughput *float64
			Latency    *float64
		}
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("%v in\n%s", err, buf.String())
	}
	if len(got) != 1 || got[0].Curve != "sweep" || len(got[0].Runs) != 3 {
		t.Fatalf("got %+v", got)
	}
	last := got[0].Runs[2]
	if last.Key != 8 || last.Latency != nil || last.Throughput == nil || *last.Throughput != 0 {
		t.Errorf("NaN latency not encoded as null: %s", buf.String())
	}
}

func TestWriteSeriesYAML(t *testing.T) {
	s := testSeries()
	s.Collisions = []Collision{{Key: 2, Replaced: "run-02.toml", By: "run-2.toml"}}
	var buf bytes.Buffer
	if err := WriteSeries(&buf, FormatYAML, []*Series{s}); err != nil {
		t.Fatal(err)
	}
	var got []map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("%v in\n%s", err, buf.String())
	}
	if len(got) != 1 || got[0]["curve"] != "sweep" || got[0]["dir"] != "results/rc.sweep" {
		t.Fatalf("got %v", got)
	}
	if !strings.Contains(buf.String(), "latency: null") {
		t.Errorf("NaN latency not encoded as null:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "replaced: run-02.toml") {
		t.Errorf("collision missing:\n%s", buf.String())
	}
}

func TestWriteTimelinesJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTimelines(&buf, FormatJSON, []*Timeline{testTimeline()}); err != nil {
		t.Fatal(err)
	}
	var got []struct {
		Curve        string `json:"curve"`
		TriggerIndex int    `json:"trigger_index"`
		Points       []struct {
			Epoch int64 `json:"epoch"`
		} `json:"points"`
		Removed []struct {
			Epoch int64 `json:"epoch"`
		} `json:"removed"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].TriggerIndex != 3 || len(got[0].Points) != 3 || len(got[0].Removed) != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSeries(&buf, FormatText, []*Series{testSeries()}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"sweep (results/rc.sweep)", "run-4.toml", "350.00 op/s", "NaN us"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteTimelines(&buf, FormatText, []*Timeline{testTimeline()}); err != nil {
		t.Fatal(err)
	}
	out = buf.String()
	for _, want := range []string{"KRCore: 3 points, 1 outliers removed, trigger after epoch 3", "3.000M op/s", "<- trigger"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestRunLine(t *testing.T) {
	got := RunLine(&RunSummary{Name: "run-2.toml", Throughput: 35, Latency: 17.5})
	if want := "run-2.toml: thpt: 35 op/s\t\tlatency: 17.5 us"; got != want {
		t.Errorf("RunLine = %q, want %q", got, want)
	}
}
