package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"hawaii-climate-server/internal/modules/climate/types"
)

// TrailingYearCutoff is one year before the last date in the dataset. The
// "last 12 months" queries use it as a literal and never derive it from now.
const TrailingYearCutoff = "2016-08-23"

// Compiled-in bounds for /api/v1.0/start and /api/v1.0/start/end.
const (
	DefaultStartDate = "2016-01-01"
	DefaultEndDate   = "2017-08-23"
)

// ErrNoData is returned when a query that must pick a single row finds none.
var ErrNoData = errors.New("no measurements in range")

//go:embed sql/get-precipitation.sql
var getPrecipitationSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-most-active-station.sql
var getMostActiveStationSQL string

//go:embed sql/get-station-tobs.sql
var getStationTobsSQL string

//go:embed sql/get-temperature-stats.sql
var getTemperatureStatsSQL string

type ClimateRepository interface {
	GetPrecipitation(ctx context.Context) ([]types.Precipitation, error)
	GetStations(ctx context.Context) ([]types.Station, error)
	GetMostActiveStation(ctx context.Context, since string) (types.StationActivity, error)
	GetMostActiveStationTobs(ctx context.Context) (types.StationActivity, []types.TemperatureObservation, error)
	GetTemperatureStats(ctx context.Context, start string, end *string) (types.TemperatureStats, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

// withConn runs fn on a dedicated pool connection and always hands the
// connection back, whether fn succeeds or not.
func (r *repositoryImpl) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Error("release connection", "error", err)
		}
	}()
	return fn(conn)
}

func (r *repositoryImpl) GetPrecipitation(ctx context.Context) ([]types.Precipitation, error) {
	out := make([]types.Precipitation, 0)
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, getPrecipitationSQL, TrailingYearCutoff)
		if err != nil {
			return err
		}
		defer closeRows(rows, "precipitation")
		for rows.Next() {
			var rec types.Precipitation
			var prcp sql.NullFloat64
			if err := rows.Scan(&rec.Date, &prcp); err != nil {
				return err
			}
			rec.Prcp = nullFloat(prcp)
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("get precipitation: %w", err)
	}
	return out, nil
}

func (r *repositoryImpl) GetStations(ctx context.Context) ([]types.Station, error) {
	out := make([]types.Station, 0)
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, getStationsSQL)
		if err != nil {
			return err
		}
		defer closeRows(rows, "stations")
		for rows.Next() {
			var s types.Station
			if err := rows.Scan(&s.StationID); err != nil {
				return err
			}
			out = append(out, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("get stations: %w", err)
	}
	return out, nil
}

func (r *repositoryImpl) GetMostActiveStation(ctx context.Context, since string) (types.StationActivity, error) {
	var activity types.StationActivity
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		activity, err = mostActiveStation(ctx, conn, since)
		return err
	})
	return activity, err
}

// GetMostActiveStationTobs picks the station with the most observations after
// the cutoff (strictly later) and returns its observations on or after the
// cutoff. Both steps share one connection. An empty dataset yields an empty
// list rather than an error.
func (r *repositoryImpl) GetMostActiveStationTobs(ctx context.Context) (types.StationActivity, []types.TemperatureObservation, error) {
	var activity types.StationActivity
	out := make([]types.TemperatureObservation, 0)
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		activity, err = mostActiveStation(ctx, conn, TrailingYearCutoff)
		if errors.Is(err, ErrNoData) {
			return nil
		}
		if err != nil {
			return err
		}

		rows, err := conn.QueryContext(ctx, getStationTobsSQL, TrailingYearCutoff, activity.StationID)
		if err != nil {
			return fmt.Errorf("get tobs for %s: %w", activity.StationID, err)
		}
		defer closeRows(rows, "tobs")
		for rows.Next() {
			var rec types.TemperatureObservation
			if err := rows.Scan(&rec.Date, &rec.Tobs); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return types.StationActivity{}, nil, err
	}
	return activity, out, nil
}

// GetTemperatureStats aggregates tobs over date >= start and, when end is
// non-nil, date <= end. The aggregate always yields one row.
func (r *repositoryImpl) GetTemperatureStats(ctx context.Context, start string, end *string) (types.TemperatureStats, error) {
	var stats types.TemperatureStats
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		var endArg any
		if end != nil {
			endArg = *end
		}
		var minT, avgT, maxT sql.NullFloat64
		if err := conn.QueryRowContext(ctx, getTemperatureStatsSQL, start, endArg, endArg).Scan(&minT, &avgT, &maxT); err != nil {
			return err
		}
		stats = types.TemperatureStats{
			MinTemp: nullFloat(minT),
			AvgTemp: nullFloat(avgT),
			MaxTemp: nullFloat(maxT),
		}
		return nil
	})
	if err != nil {
		return types.TemperatureStats{}, fmt.Errorf("get temperature stats: %w", err)
	}
	return stats, nil
}

func mostActiveStation(ctx context.Context, conn *sql.Conn, since string) (types.StationActivity, error) {
	var a types.StationActivity
	err := conn.QueryRowContext(ctx, getMostActiveStationSQL, since).Scan(&a.StationID, &a.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return types.StationActivity{}, ErrNoData
	}
	if err != nil {
		return types.StationActivity{}, fmt.Errorf("get most active station: %w", err)
	}
	return a, nil
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close "+what+" rows", "error", err)
	}
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
