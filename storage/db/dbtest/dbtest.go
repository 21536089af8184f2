// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest provides test databases for storage/db.
package dbtest

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"flag"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"github.com/krcore/perflog/storage/db"
	_ "github.com/krcore/perflog/storage/db/sqlite3"
)

var mysqlDSN = flag.String("mysql", "", "run database tests on a scratch database of the MySQL server at this DSN (e.g. root:@tcp(localhost:3306)/) instead of in-memory SQLite")

// createEmptyMySQLDB makes a new, empty database for the test.
func createEmptyMySQLDB(t *testing.T) (dsn string, cleanup func()) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		t.Fatal(err)
	}

	name := "perflog-test-" + base64.RawURLEncoding.EncodeToString(buf)

	prefix := *mysqlDSN

	db, err := sql.Open("mysql", prefix)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE `%s`", name)); err != nil {
		db.Close()
		t.Fatal(err)
	}

	t.Logf("Using database %q", name)

	return prefix + name, func() {
		if _, err := db.Exec(fmt.Sprintf("DROP DATABASE `%s`", name)); err != nil {
			t.Error(err)
		}
		db.Close()
	}
}

// NewDB makes a connection to a testing database, either sqlite3 or
// MySQL depending on the -mysql flag. cleanup must be called when
// done with the testing database, instead of calling db.Close()
func NewDB(t *testing.T) (*db.DB, func()) {
	driverName, dataSourceName := "sqlite3", ":memory:"
	var mysqlCleanup func()
	if *mysqlDSN != "" {
		driverName = "mysql"
		dataSourceName, mysqlCleanup = createEmptyMySQLDB(t)
	}
	d, err := db.OpenSQL(driverName, dataSourceName)
	if err != nil {
		if mysqlCleanup != nil {
			mysqlCleanup()
		}
		t.Fatalf("open database: %v", err)
	}

	cleanup := func() {
		if mysqlCleanup != nil {
			mysqlCleanup()
		}
		d.Close()
	}
	// Make sure the database really is empty.
	experiments, err := d.CountExperiments()
	if err != nil {
		cleanup()
		t.Fatal(err)
	}
	if experiments != 0 {
		cleanup()
		t.Fatalf("found %d row(s) in Experiments, want 0", experiments)
	}
	return d, cleanup
}
