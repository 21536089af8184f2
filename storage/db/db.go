// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores analysed series and timelines in a SQL database.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/krcore/perflog/logseries"
)

// DB is a high-level interface to a database of experiments. It's
// safe for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	lastExperiment *sql.Stmt
	insertExp      *sql.Stmt
	insertRun      *sql.Stmt
	insertNode     *sql.Stmt
	insertTimeline *sql.Stmt
	insertPoint    *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to register a ConnectHook.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Experiments (
	ExperimentID VARCHAR(20) PRIMARY KEY,
	Day VARCHAR(8),
	Seq BIGINT UNSIGNED,
	Kind VARCHAR(16),
	Curve VARCHAR(255),
	Dir VARCHAR(1024),
	XFactor INT,
	Created BIGINT
{{if not .sqlite3}}
	, Index (Day, Seq)
{{end}}
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS ExperimentsDaySeq ON Experiments(Day, Seq);
{{end}}
CREATE TABLE IF NOT EXISTS Runs (
	ExperimentID VARCHAR(20),
	RunKey BIGINT,
	Name VARCHAR(255),
	Throughput DOUBLE,
	Latency DOUBLE,
	PRIMARY KEY (ExperimentID, RunKey),
	FOREIGN KEY (ExperimentID) REFERENCES Experiments(ExperimentID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS NodeSummaries (
	ExperimentID VARCHAR(20),
	RunKey BIGINT,
	Pos INT,
	Node VARCHAR(255),
	Samples INT,
	Throughput DOUBLE,
	Latency DOUBLE,
	PRIMARY KEY (ExperimentID, RunKey, Pos),
	FOREIGN KEY (ExperimentID, RunKey) REFERENCES Runs(ExperimentID, RunKey) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS Timelines (
	ExperimentID VARCHAR(20) PRIMARY KEY,
	Triggered INT,
	TriggerIndex INT,
	TriggerEpoch BIGINT,
	TriggerPoint INT,
	FOREIGN KEY (ExperimentID) REFERENCES Experiments(ExperimentID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS TimelinePoints (
	ExperimentID VARCHAR(20),
	Removed INT,
	Pos INT,
	Epoch BIGINT,
	Throughput DOUBLE,
	PRIMARY KEY (ExperimentID, Removed, Pos),
	FOREIGN KEY (ExperimentID) REFERENCES Timelines(ExperimentID) ON UPDATE CASCADE ON DELETE CASCADE
);
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	prepare := func(q string) *sql.Stmt {
		if err != nil {
			return nil
		}
		var stmt *sql.Stmt
		stmt, err = db.sql.Prepare(q)
		return stmt
	}
	db.lastExperiment = prepare("SELECT ExperimentID FROM Experiments ORDER BY Day DESC, Seq DESC LIMIT 1")
	db.insertExp = prepare("INSERT INTO Experiments(ExperimentID, Day, Seq, Kind, Curve, Dir, XFactor, Created) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	db.insertRun = prepare("INSERT INTO Runs(ExperimentID, RunKey, Name, Throughput, Latency) VALUES (?, ?, ?, ?, ?)")
	db.insertNode = prepare("INSERT INTO NodeSummaries(ExperimentID, RunKey, Pos, Node, Samples, Throughput, Latency) VALUES (?, ?, ?, ?, ?, ?, ?)")
	db.insertTimeline = prepare("INSERT INTO Timelines(ExperimentID, Triggered, TriggerIndex, TriggerEpoch, TriggerPoint) VALUES (?, ?, ?, ?, ?)")
	db.insertPoint = prepare("INSERT INTO TimelinePoints(ExperimentID, Removed, Pos, Epoch, Throughput) VALUES (?, ?, ?, ?, ?)")
	return err
}

// Experiment kinds.
const (
	KindSeries   = "series"
	KindTimeline = "timeline"
)

// An Experiment is one stored series or timeline.
type Experiment struct {
	// ID is a date-based identifier of the form YYYYMMDD.N.
	ID      string
	Kind    string
	Curve   string
	Dir     string
	XFactor int
	Created time.Time
}

// ErrNotFound is returned when an experiment does not exist.
var ErrNotFound = errors.New("experiment not found")

// now is a hook for testing
var now = time.Now

// SetNow sets the time used for experiment IDs. A zero time restores
// the clock.
func SetNow(t time.Time) {
	if t.IsZero() {
		now = time.Now
		return
	}
	now = func() time.Time { return t }
}

// withTx runs fn in a transaction, committing if fn succeeds.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	return fn(tx)
}

// newExperiment allocates the next experiment ID and inserts e.
func (db *DB) newExperiment(ctx context.Context, tx *sql.Tx, e *Experiment) error {
	t := now().UTC()
	day := t.Format("20060102")
	var num int64
	var lastID string
	err := tx.StmtContext(ctx, db.lastExperiment).QueryRowContext(ctx).Scan(&lastID)
	switch err {
	case sql.ErrNoRows:
	case nil:
		if strings.HasPrefix(lastID, day+".") {
			num, err = strconv.ParseInt(lastID[len(day)+1:], 10, 64)
			if err != nil {
				return fmt.Errorf("bad experiment ID %q: %v", lastID, err)
			}
		}
	default:
		return err
	}
	num++
	e.ID = fmt.Sprintf("%s.%d", day, num)
	e.Created = t.Truncate(time.Second)
	_, err = tx.StmtContext(ctx, db.insertExp).ExecContext(ctx, e.ID, day, num, e.Kind, e.Curve, e.Dir, e.XFactor, e.Created.Unix())
	return err
}

// nullable converts non-finite values to SQL NULL.
func nullable(x float64) interface{} {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return x
}

func fromNull(x sql.NullFloat64) float64 {
	if !x.Valid {
		return math.NaN()
	}
	return x.Float64
}

// InsertSeries stores s, built with the given x-factor, as a new
// experiment.
func (db *DB) InsertSeries(ctx context.Context, s *logseries.Series, xfactor int) (*Experiment, error) {
	e := &Experiment{Kind: KindSeries, Curve: s.Title, Dir: s.Dir, XFactor: xfactor}
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if err := db.newExperiment(ctx, tx, e); err != nil {
			return err
		}
		insertRun := tx.StmtContext(ctx, db.insertRun)
		insertNode := tx.StmtContext(ctx, db.insertNode)
		for _, k := range s.Keys() {
			rs := s.Get(k)
			if _, err := insertRun.ExecContext(ctx, e.ID, k, rs.Name, nullable(rs.Throughput), nullable(rs.Latency)); err != nil {
				return err
			}
			for i, n := range rs.Nodes {
				if _, err := insertNode.ExecContext(ctx, e.ID, k, i, n.Node, n.N, nullable(n.Throughput), nullable(n.Latency)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("inserting series %s: %w", s.Dir, err)
	}
	return e, nil
}

// InsertTimeline stores tl as a new experiment.
func (db *DB) InsertTimeline(ctx context.Context, tl *logseries.Timeline) (*Experiment, error) {
	e := &Experiment{Kind: KindTimeline, Curve: tl.Name}
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if err := db.newExperiment(ctx, tx, e); err != nil {
			return err
		}
		triggered := 0
		if tl.Triggered {
			triggered = 1
		}
		if _, err := tx.StmtContext(ctx, db.insertTimeline).ExecContext(ctx, e.ID, triggered, tl.TriggerIndex, tl.TriggerEpoch, tl.TriggerPoint); err != nil {
			return err
		}
		insertPoint := tx.StmtContext(ctx, db.insertPoint)
		for removed, pts := range [][]logseries.TimelinePoint{tl.Points, tl.Removed} {
			for i, p := range pts {
				if _, err := insertPoint.ExecContext(ctx, e.ID, removed, i, p.Epoch, nullable(p.Throughput)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("inserting timeline %s: %w", tl.Name, err)
	}
	return e, nil
}

// Experiment returns the experiment with the given ID.
func (db *DB) Experiment(ctx context.Context, id string) (*Experiment, error) {
	row := db.sql.QueryRowContext(ctx, "SELECT ExperimentID, Kind, Curve, Dir, XFactor, Created FROM Experiments WHERE ExperimentID = ?", id)
	e, err := scanExperiment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return e, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanExperiment(row scanner) (*Experiment, error) {
	var e Experiment
	var created int64
	if err := row.Scan(&e.ID, &e.Kind, &e.Curve, &e.Dir, &e.XFactor, &created); err != nil {
		return nil, err
	}
	e.Created = time.Unix(created, 0).UTC()
	return &e, nil
}

// ListExperiments returns up to limit experiments, newest first. If
// curve is not empty, only experiments of that curve are returned. A
// limit of 0 means no limit.
func (db *DB) ListExperiments(ctx context.Context, curve string, limit int) ([]*Experiment, error) {
	q := "SELECT ExperimentID, Kind, Curve, Dir, XFactor, Created FROM Experiments"
	var args []interface{}
	if curve != "" {
		q += " WHERE Curve = ?"
		args = append(args, curve)
	}
	q += " ORDER BY Day DESC, Seq DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Experiment
	for rows.Next() {
		e, err := scanExperiment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Series loads the series stored as experiment id. Collisions and
// warnings are not stored.
func (db *DB) Series(ctx context.Context, id string) (*logseries.Series, error) {
	e, err := db.Experiment(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Kind != KindSeries {
		return nil, fmt.Errorf("%s is a %s, not a series", id, e.Kind)
	}
	s := logseries.NewSeries(e.Dir)
	s.Title = e.Curve

	rows, err := db.sql.QueryContext(ctx, "SELECT RunKey, Name, Throughput, Latency FROM Runs WHERE ExperimentID = ? ORDER BY RunKey", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var key int
		var rs logseries.RunSummary
		var thpt, lat sql.NullFloat64
		if err := rows.Scan(&key, &rs.Name, &thpt, &lat); err != nil {
			return nil, err
		}
		rs.Throughput, rs.Latency = fromNull(thpt), fromNull(lat)
		s.Set(key, &rs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	nodes, err := db.sql.QueryContext(ctx, "SELECT RunKey, Node, Samples, Throughput, Latency FROM NodeSummaries WHERE ExperimentID = ? ORDER BY RunKey, Pos", id)
	if err != nil {
		return nil, err
	}
	defer nodes.Close()
	for nodes.Next() {
		var key int
		var n logseries.NodeSummary
		var thpt, lat sql.NullFloat64
		if err := nodes.Scan(&key, &n.Node, &n.N, &thpt, &lat); err != nil {
			return nil, err
		}
		n.Throughput, n.Latency = fromNull(thpt), fromNull(lat)
		if rs := s.Get(key); rs != nil {
			rs.Nodes = append(rs.Nodes, n)
		}
	}
	return s, nodes.Err()
}

// Timeline loads the timeline stored as experiment id. Warnings are
// not stored.
func (db *DB) Timeline(ctx context.Context, id string) (*logseries.Timeline, error) {
	e, err := db.Experiment(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Kind != KindTimeline {
		return nil, fmt.Errorf("%s is a %s, not a timeline", id, e.Kind)
	}
	tl := &logseries.Timeline{Name: e.Curve}
	var triggered int
	err = db.sql.QueryRowContext(ctx, "SELECT Triggered, TriggerIndex, TriggerEpoch, TriggerPoint FROM Timelines WHERE ExperimentID = ?", id).
		Scan(&triggered, &tl.TriggerIndex, &tl.TriggerEpoch, &tl.TriggerPoint)
	if err != nil {
		return nil, err
	}
	tl.Triggered = triggered != 0

	rows, err := db.sql.QueryContext(ctx, "SELECT Removed, Epoch, Throughput FROM TimelinePoints WHERE ExperimentID = ? ORDER BY Removed, Pos", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tl.Points = []logseries.TimelinePoint{}
	for rows.Next() {
		var removed int
		var p logseries.TimelinePoint
		var thpt sql.NullFloat64
		if err := rows.Scan(&removed, &p.Epoch, &thpt); err != nil {
			return nil, err
		}
		p.Throughput = fromNull(thpt)
		if removed != 0 {
			tl.Removed = append(tl.Removed, p)
		} else {
			tl.Points = append(tl.Points, p)
		}
	}
	return tl, rows.Err()
}

// DeleteExperiment deletes experiment id and everything stored with
// it.
func (db *DB) DeleteExperiment(ctx context.Context, id string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, q := range []string{
			"DELETE FROM NodeSummaries WHERE ExperimentID = ?",
			"DELETE FROM Runs WHERE ExperimentID = ?",
			"DELETE FROM TimelinePoints WHERE ExperimentID = ?",
			"DELETE FROM Timelines WHERE ExperimentID = ?",
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM Experiments WHERE ExperimentID = ?", id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// CountExperiments returns the number of stored experiments.
func (db *DB) CountExperiments() (int, error) {
	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Experiments").Scan(&count)
	return count, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.lastExperiment, db.insertExp, db.insertRun, db.insertNode, db.insertTimeline, db.insertPoint} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
