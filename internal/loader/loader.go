// Package loader imports the Hawaii climate CSV exports into the observation
// store. It is the only writer of the measurement and station tables.
package loader

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Result counts the rows written by Load.
type Result struct {
	Stations     int
	Measurements int
}

var (
	stationColumns     = []string{"station", "name", "latitude", "longitude", "elevation"}
	measurementColumns = []string{"station", "date", "prcp", "tobs"}
)

// Load reads hawaii_stations.csv and hawaii_measurements.csv style input and
// inserts every row in a single transaction. Either reader may be nil.
// Nothing is written if any row is malformed.
func Load(ctx context.Context, db *sql.DB, stations io.Reader, measurements io.Reader) (res Result, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("begin load: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("rollback load", "error", rbErr)
			}
		}
	}()

	if stations != nil {
		res.Stations, err = loadStations(ctx, tx, stations)
		if err != nil {
			return Result{}, fmt.Errorf("load stations: %w", err)
		}
	}
	if measurements != nil {
		res.Measurements, err = loadMeasurements(ctx, tx, measurements)
		if err != nil {
			return Result{}, fmt.Errorf("load measurements: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit load: %w", err)
	}
	return res, nil
}

func loadStations(ctx context.Context, tx *sql.Tx, r io.Reader) (int, error) {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO station (station, name, latitude, longitude, elevation) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer closeStmt(stmt)

	return eachRecord(r, stationColumns, func(line int, rec map[string]string) error {
		if rec["station"] == "" {
			return fmt.Errorf("line %d: empty station", line)
		}
		lat, err := optionalFloat(rec["latitude"])
		if err != nil {
			return fmt.Errorf("line %d: latitude: %w", line, err)
		}
		lon, err := optionalFloat(rec["longitude"])
		if err != nil {
			return fmt.Errorf("line %d: longitude: %w", line, err)
		}
		elev, err := optionalFloat(rec["elevation"])
		if err != nil {
			return fmt.Errorf("line %d: elevation: %w", line, err)
		}
		_, err = stmt.ExecContext(ctx, rec["station"], nullString(rec["name"]), lat, lon, elev)
		return err
	})
}

func loadMeasurements(ctx context.Context, tx *sql.Tx, r io.Reader) (int, error) {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer closeStmt(stmt)

	return eachRecord(r, measurementColumns, func(line int, rec map[string]string) error {
		if rec["station"] == "" {
			return fmt.Errorf("line %d: empty station", line)
		}
		if _, err := time.Parse(time.DateOnly, rec["date"]); err != nil {
			return fmt.Errorf("line %d: date %q: expected YYYY-MM-DD", line, rec["date"])
		}
		prcp, err := optionalFloat(rec["prcp"])
		if err != nil {
			return fmt.Errorf("line %d: prcp: %w", line, err)
		}
		tobs, err := strconv.ParseFloat(rec["tobs"], 64)
		if err != nil {
			return fmt.Errorf("line %d: tobs: %w", line, err)
		}
		_, err = stmt.ExecContext(ctx, rec["station"], rec["date"], prcp, tobs)
		return err
	})
}

// eachRecord reads a headed CSV and calls fn with each row keyed by the
// lower-cased header name. Every column in required must be in the header.
func eachRecord(r io.Reader, required []string, fn func(line int, rec map[string]string) error) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return 0, errors.New("empty input (missing header)")
	}
	if err != nil {
		return 0, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("header missing column %q", col)
		}
	}

	n := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		line, _ := cr.FieldPos(0)
		rec := make(map[string]string, len(required))
		for _, col := range required {
			rec[col] = strings.TrimSpace(row[index[col]])
		}
		if err := fn(line, rec); err != nil {
			return n, err
		}
		n++
	}
}

func optionalFloat(s string) (any, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func closeStmt(stmt *sql.Stmt) {
	if err := stmt.Close(); err != nil {
		slog.Error("close statement", "error", err)
	}
}
