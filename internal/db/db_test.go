package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hawaii-climate-server/internal/config"
	"hawaii-climate-server/internal/migrate"
)

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "hawaii.sqlite")
	createDB(t, existing)

	tests := []struct {
		name    string
		cfg     config.Config
		want    string
		wantErr bool
	}{
		{
			name: "explicit DSN wins",
			cfg:  config.Config{SQLiteDSN: "file:x.db?mode=memory", SQLitePath: existing},
			want: "file:x.db?mode=memory",
		},
		{
			name: "read-only plain path",
			cfg:  config.Config{SQLitePath: existing, SQLiteReadOnly: true},
			want: "file:" + existing + "?_busy_timeout=5000&mode=ro",
		},
		{
			name: "read-only file URI with params",
			cfg:  config.Config{SQLitePath: "file:" + existing + "?cache=shared", SQLiteReadOnly: true},
			want: "file:" + existing + "?cache=shared&_busy_timeout=5000&mode=ro",
		},
		{
			name:    "read-only missing file",
			cfg:     config.Config{SQLitePath: filepath.Join(dir, "missing.sqlite"), SQLiteReadOnly: true},
			wantErr: true,
		},
		{
			name: "read-write creates parent dir",
			cfg:  config.Config{SQLitePath: filepath.Join(dir, "nested", "load.sqlite")},
			want: "file:" + filepath.Join(dir, "nested", "load.sqlite") + "?_busy_timeout=5000&_foreign_keys=on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestOpen_ReadOnlyRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	createDB(t, path)

	cfg := config.Config{
		SQLiteDriver:       "sqlite3",
		SQLitePath:         path,
		SQLiteReadOnly:     true,
		SQLiteMaxOpenConns: 2,
		SQLiteMaxIdleConns: 2,
	}
	conn, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(conn) })

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM station`).Scan(&n))
	assert.Equal(t, 0, n)

	_, err = conn.Exec(`INSERT INTO station (station) VALUES ('USC00519397')`)
	require.Error(t, err)
	assert.True(t, strings.Contains(strings.ToLower(err.Error()), "readonly"), "got %v", err)
}

func TestOpen_WithSQLLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	createDB(t, path)

	handler := &captureHandler{}
	cfg := config.Config{
		SQLiteDriver:   "sqlite3",
		SQLitePath:     path,
		SQLiteReadOnly: true,
		SQLiteLogSQL:   true,
	}
	conn, err := Open(context.Background(), cfg, newSlog(handler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(conn) })

	var one int
	require.NoError(t, conn.QueryRow(`SELECT 1`).Scan(&one))
	assert.NotEmpty(t, handler.recordsFor(t, "sql"))
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}

// createDB writes an empty observation database at path.
func createDB(t *testing.T, path string) {
	t.Helper()
	cfg := config.Config{SQLiteDriver: "sqlite3", SQLitePath: path}
	conn, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NoError(t, migrate.Run(context.Background(), conn))
	require.NoError(t, Close(conn))
}
