// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/krcore/perflog/logseries"
	. "github.com/krcore/perflog/storage/db"
	"github.com/krcore/perflog/storage/db/dbtest"
)

func testSeries() *logseries.Series {
	s := logseries.NewSeries("results/rc.sweep")
	s.Set(2, &logseries.RunSummary{
		Name: "run-2.toml", Throughput: 35, Latency: 17.5,
		Nodes: []logseries.NodeSummary{
			{Node: "val02", Throughput: 20, Latency: 15, N: 6},
			{Node: "val01", Throughput: 15, Latency: 20, N: 6},
		},
	})
	s.Set(8, &logseries.RunSummary{Name: "run-8.toml", Throughput: 0, Latency: math.NaN()})
	return s
}

// TestExperimentIDs verifies that inserts generate the correct sequence of experiment IDs.
func TestExperimentIDs(t *testing.T) {
	ctx := context.Background()

	db, cleanup := dbtest.NewDB(t)
	defer cleanup()

	defer SetNow(time.Time{})

	tests := []struct {
		sec int64
		id  string
	}{
		{0, "19700101.1"},
		{0, "19700101.2"},
		{86400, "19700102.1"},
		{86400, "19700102.2"},
		{86400, "19700102.3"},
		{86400, "19700102.4"},
		{86400, "19700102.5"},
		{86400, "19700102.6"},
		{86400, "19700102.7"},
		{86400, "19700102.8"},
		{86400, "19700102.9"},
		{86400, "19700102.10"},
		{86400, "19700102.11"},
	}
	for _, test := range tests {
		SetNow(time.Unix(test.sec, 0))
		e, err := db.InsertTimeline(ctx, &logseries.Timeline{Name: "t"})
		if err != nil {
			t.Fatalf("InsertTimeline: %v", err)
		}
		if e.ID != test.id {
			t.Fatalf("e.ID = %q, want %q", e.ID, test.id)
		}
	}
	if n, err := db.CountExperiments(); err != nil || n != len(tests) {
		t.Errorf("CountExperiments() = %d, %v; want %d", n, err, len(tests))
	}
}

func TestSeriesRoundTrip(t *testing.T) {
	SetNow(time.Unix(0, 0))
	defer SetNow(time.Time{})
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()
	ctx := context.Background()

	s := testSeries()
	e, err := db.InsertSeries(ctx, s, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := &Experiment{ID: "19700101.1", Kind: KindSeries, Curve: "sweep", Dir: "results/rc.sweep", XFactor: 2, Created: time.Unix(0, 0).UTC()}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("experiment mismatch (-want +got):\n%s", diff)
	}

	got, err := db.Series(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s.Keys(), got.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	for _, k := range s.Keys() {
		if diff := cmp.Diff(s.Get(k), got.Get(k), cmpopts.EquateNaNs(), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("key %d mismatch (-want +got):\n%s", k, diff)
		}
	}
	if got.Title != "sweep" || got.Dir != s.Dir {
		t.Errorf("got title %q dir %q", got.Title, got.Dir)
	}

	// The stored NaN latency is NULL.
	var n int
	if err := DBSQL(db).QueryRow("SELECT COUNT(*) FROM Runs WHERE Latency IS NULL").Scan(&n); err != nil || n != 1 {
		t.Errorf("NULL latencies = %d, %v; want 1", n, err)
	}

	if _, err := db.Timeline(ctx, e.ID); err == nil {
		t.Error("Timeline of a series succeeded")
	}
}

func TestTimelineRoundTrip(t *testing.T) {
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()
	ctx := context.Background()

	tl := &logseries.Timeline{
		Name:         "KRCore",
		Points:       []logseries.TimelinePoint{{Epoch: 2, Throughput: 1}, {Epoch: 4, Throughput: 3}},
		TriggerIndex: 3,
		Triggered:    true,
		TriggerEpoch: 3,
		TriggerPoint: 1,
		Removed:      []logseries.TimelinePoint{{Epoch: 3, Throughput: 9}, {Epoch: 1, Throughput: 5}},
	}
	e, err := db.InsertTimeline(ctx, tl)
	if err != nil {
		t.Fatal(err)
	}
	got, err := db.Timeline(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(tl, got); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
	if _, err := db.Series(ctx, e.ID); err == nil {
		t.Error("Series of a timeline succeeded")
	}
}

func TestListExperiments(t *testing.T) {
	defer SetNow(time.Time{})
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()
	ctx := context.Background()

	var ids []string
	for i, name := range []string{"a", "b", "a"} {
		SetNow(time.Unix(int64(i)*86400, 0))
		e, err := db.InsertTimeline(ctx, &logseries.Timeline{Name: name})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, e.ID)
	}
	list := func(curve string, limit int) []string {
		es, err := db.ListExperiments(ctx, curve, limit)
		if err != nil {
			t.Fatal(err)
		}
		var out []string
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}
	if diff := cmp.Diff([]string{ids[2], ids[1], ids[0]}, list("", 0)); diff != "" {
		t.Errorf("all mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{ids[2]}, list("a", 1)); diff != "" {
		t.Errorf("latest a mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteExperiment(t *testing.T) {
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()
	ctx := context.Background()

	e, err := db.InsertSeries(ctx, testSeries(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteExperiment(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Series(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Series after delete: got %v, want ErrNotFound", err)
	}
	var n int
	if err := DBSQL(db).QueryRow("SELECT COUNT(*) FROM NodeSummaries").Scan(&n); err != nil || n != 0 {
		t.Errorf("node rows after delete = %d, %v; want 0", n, err)
	}
	if err := db.DeleteExperiment(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}
