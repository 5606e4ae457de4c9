package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hawaii-climate-server/internal/config"
	"hawaii-climate-server/internal/migrate"
	"hawaii-climate-server/internal/modules/climate/climatetest"
)

func testConfig(path string) config.Config {
	return config.Config{
		AppEnv:             "dev",
		HTTPAddr:           "127.0.0.1:0",
		ShutdownTimeout:    2 * time.Second,
		SQLiteDriver:       "sqlite3",
		SQLitePath:         path,
		SQLiteReadOnly:     true,
		SQLiteMaxOpenConns: 2,
		SQLiteMaxIdleConns: 2,
	}
}

func writeDB(t *testing.T, schema string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	conn, err := sql.Open("sqlite3", "file:"+path)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	if schema == "" {
		require.NoError(t, migrate.Run(context.Background(), conn))
	} else {
		_, err = conn.Exec(schema)
		require.NoError(t, err)
	}
	return path
}

func TestRun_MissingDatabase(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "absent.sqlite"))

	err := Run(context.Background(), cfg)
	require.Error(t, err)
}

func TestRun_SchemaMismatch(t *testing.T) {
	path := writeDB(t, `CREATE TABLE readings (station_id INTEGER, ts TEXT);`)

	err := Run(context.Background(), testConfig(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "measurement")
}

func TestRun_StopsOnCancel(t *testing.T) {
	path := writeDB(t, "")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, testConfig(path)) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewServer_ServesClimateAndOpsRoutes(t *testing.T) {
	srv := NewServer(testConfig(""), climatetest.NewSeededDB(t), prometheus.NewRegistry())
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	for _, path := range []string{
		"/",
		"/healthz",
		"/metrics",
		"/api/v1.0/precipitation",
		"/api/v1.0/stations",
		"/api/v1.0/tobs",
		"/api/v1.0/start",
		"/api/v1.0/start/end",
	} {
		resp, err := ts.Client().Get(ts.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := ts.Client().Get(ts.URL + "/api/v1.0/start")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var body []map[string]*float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	for _, k := range []string{"min_temp", "avg_temp", "max_temp"} {
		assert.NotNil(t, body[0][k], k)
	}
}
