package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/lockguard-core/internal/infrastructure/config"
)

// openTestDB opens a fresh database in a temp directory.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup
	return db
}

func TestOpen(t *testing.T) {
	t.Run("creates nested directory and file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

		db, err := Open(context.Background(), config.DatabaseConfig{Path: dbPath, BusyTimeout: 1})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // test cleanup

		if _, err := db.ExecContext(context.Background(), "CREATE TABLE t (id INTEGER)"); err != nil {
			t.Fatalf("create table: %v", err)
		}
		if _, err := os.Stat(dbPath); err != nil {
			t.Errorf("database file not created: %v", err)
		}
		if db.Path() != dbPath {
			t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
		}
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Open(ctx, config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "x.db")})
		if err == nil {
			t.Error("Open() with cancelled context: error = nil, want error")
		}
	})
}

func TestDSN(t *testing.T) {
	got := dsn(config.DatabaseConfig{Path: "/data/lg.db", BusyTimeout: 5, WALMode: true})
	for _, want := range []string{"file:/data/lg.db?", "_busy_timeout=5000", "_foreign_keys=on", "_journal_mode=WAL"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn() = %q, missing %q", got, want)
		}
	}

	got = dsn(config.DatabaseConfig{Path: "/data/lg.db"})
	if strings.Contains(got, "WAL") {
		t.Errorf("dsn() without WAL = %q, should not enable WAL", got)
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	db.DB.Close() //nolint:errcheck // forcing failure
	if err := db.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() on closed DB: error = nil, want error")
	}
}

func TestClose(t *testing.T) {
	db := openTestDB(t)
	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	var nilDB *DB
	if err := nilDB.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}
}
