package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"hawaii-climate-server/internal/config"
	db "hawaii-climate-server/internal/db"
	httpapi "hawaii-climate-server/internal/httpapi"
	climate "hawaii-climate-server/internal/modules/climate"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteReadOnly", cfg.SQLiteReadOnly,
		"sqliteLogSQL", cfg.SQLiteLogSQL,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
	)

	dbConn, err := db.Open(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := db.ValidateSchema(ctx, dbConn); err != nil {
		return err
	}
	slog.Info("database schema validated")

	srv := NewServer(cfg, dbConn, prometheus.NewRegistry())

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// NewServer assembles the HTTP server over an open store: operational
// routes, the climate API and request instrumentation registered on reg.
func NewServer(cfg config.Config, dbConn *sql.DB, reg *prometheus.Registry) *http.Server {
	metrics := httpapi.NewMetrics(reg)
	mux := httpapi.NewMux(dbConn, metrics)
	climate.RegisterFeature(mux, dbConn)
	return httpapi.NewServer(cfg, mux, metrics)
}
