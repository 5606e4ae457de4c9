package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// RequiredColumns lists, per table, the columns the query layer reads.
// Extra columns (station name, coordinates, row ids) are ignored.
var RequiredColumns = map[string][]string{
	"measurement": {"station", "date", "prcp", "tobs"},
	"station":     {"station"},
}

// ValidateSchema checks that every table and column in RequiredColumns is
// present so a mismatched database is rejected at startup, not per request.
func ValidateSchema(ctx context.Context, db *sql.DB) error {
	for _, table := range []string{"measurement", "station"} {
		have, err := tableColumns(ctx, db, table)
		if err != nil {
			return fmt.Errorf("inspect table %s: %w", table, err)
		}
		if len(have) == 0 {
			return fmt.Errorf("schema: table %q not found", table)
		}
		var missing []string
		for _, col := range RequiredColumns[table] {
			if !have[col] {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("schema: table %q missing columns: %s", table, strings.Join(missing, ", "))
		}
	}
	return nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close table_info rows", "table", table, "error", err)
		}
	}()
	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[strings.ToLower(name)] = true
	}
	return out, rows.Err()
}
