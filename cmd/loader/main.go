// Command loader prepares the observation database the API serves: it
// applies the schema and imports the station and measurement CSV exports.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hawaii-climate-server/internal/config"
	"hawaii-climate-server/internal/db"
	"hawaii-climate-server/internal/loader"
	"hawaii-climate-server/internal/logging"
	"hawaii-climate-server/internal/migrate"
)

const appName = "climate-loader"

var version = "dev"

var (
	stationsPath     string
	measurementsPath string
)

var rootCmd = &cobra.Command{
	Use:           "loader",
	Short:         "Prepare the Hawaii climate observation database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB) error {
			if err := migrate.Run(ctx, conn); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			cmd.Println("migrations applied")
			return nil
		})
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Apply migrations and import station/measurement CSV files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if stationsPath == "" && measurementsPath == "" {
			return fmt.Errorf("nothing to load: pass --stations and/or --measurements")
		}
		return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB) error {
			if err := migrate.Run(ctx, conn); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			stations, closeStations, err := openOptional(stationsPath)
			if err != nil {
				return err
			}
			defer closeStations()
			measurements, closeMeasurements, err := openOptional(measurementsPath)
			if err != nil {
				return err
			}
			defer closeMeasurements()

			res, err := loader.Load(ctx, conn, stations, measurements)
			if err != nil {
				return err
			}
			slog.Info("load complete", "stations", res.Stations, "measurements", res.Measurements)
			cmd.Printf("loaded %d stations, %d measurements\n", res.Stations, res.Measurements)
			return nil
		})
	},
}

func init() {
	loadCmd.Flags().StringVar(&stationsPath, "stations", "", "path to hawaii_stations.csv")
	loadCmd.Flags().StringVar(&measurementsPath, "measurements", "", "path to hawaii_measurements.csv")
	rootCmd.AddCommand(migrateCmd, loadCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		stop()
		os.Exit(1)
	}
}

// withDB opens the database named by SQLITE_PATH / DB_DSN read-write.
func withDB(ctx context.Context, fn func(ctx context.Context, conn *sql.DB) error) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	cfg.SQLiteReadOnly = false
	slog.SetDefault(logging.New(os.Stderr, cfg, version, appName))

	conn, err := db.Open(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			slog.Error("db close", "error", err)
		}
	}()
	return fn(ctx, conn)
}

func openOptional(path string) (io.Reader, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
