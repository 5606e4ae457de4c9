// Package climatetest seeds small observation databases for tests.
package climatetest

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"hawaii-climate-server/internal/migrate"
)

// Row is one measurement fixture. A nil Prcp is stored as NULL.
type Row struct {
	Station string
	Date    string
	Prcp    *float64
	Tobs    float64
}

func F(v float64) *float64 { return &v }

// Stations are listed in insertion order.
var Stations = []string{"USC00519397", "USC00519281", "USC00513117"}

// Measurements is a trimmed slice of the Hawaii dataset around the
// trailing-year cutoff. USC00519281 has the most rows after 2016-08-23.
var Measurements = []Row{
	{Station: "USC00519397", Date: "2016-08-23", Prcp: F(0.00), Tobs: 81},
	{Station: "USC00519397", Date: "2016-08-24", Prcp: F(0.08), Tobs: 79},
	{Station: "USC00519397", Date: "2017-08-23", Prcp: F(0.00), Tobs: 81},
	{Station: "USC00519281", Date: "2016-08-22", Prcp: F(1.79), Tobs: 77},
	{Station: "USC00519281", Date: "2016-08-23", Prcp: F(1.79), Tobs: 77},
	{Station: "USC00519281", Date: "2016-08-24", Prcp: F(2.15), Tobs: 77},
	{Station: "USC00519281", Date: "2016-08-25", Prcp: nil, Tobs: 80},
	{Station: "USC00519281", Date: "2017-08-18", Prcp: F(0.06), Tobs: 79},
	{Station: "USC00513117", Date: "2015-12-31", Prcp: F(0.10), Tobs: 60},
	{Station: "USC00513117", Date: "2016-01-01", Prcp: F(0.00), Tobs: 65},
	{Station: "USC00513117", Date: "2017-08-24", Prcp: F(0.00), Tobs: 90},
}

// NewDB returns an in-memory database with the observation schema. The pool
// is pinned to one connection so every caller sees the same memory database.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	if err := migrate.Run(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Seed inserts stations and measurements in the given order.
func Seed(t *testing.T, db *sql.DB, stations []string, rows []Row) {
	t.Helper()
	for _, s := range stations {
		if _, err := db.Exec(`INSERT INTO station (station) VALUES (?)`, s); err != nil {
			t.Fatalf("insert station %s: %v", s, err)
		}
	}
	for _, r := range rows {
		var prcp any
		if r.Prcp != nil {
			prcp = *r.Prcp
		}
		if _, err := db.Exec(
			`INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`,
			r.Station, r.Date, prcp, r.Tobs,
		); err != nil {
			t.Fatalf("insert measurement %s %s: %v", r.Station, r.Date, err)
		}
	}
}

// NewSeededDB is NewDB followed by Seed with the default fixture.
func NewSeededDB(t *testing.T) *sql.DB {
	t.Helper()
	db := NewDB(t)
	Seed(t, db, Stations, Measurements)
	return db
}
