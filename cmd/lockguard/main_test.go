package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestConfig(t *testing.T, content string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("LOCKGUARD_CONFIG", path)
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("LOCKGUARD_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("run() error = %v, want a config loading error", err)
	}
}

// TestRun_MissingJWTSecret verifies run refuses to start without a token secret.
func TestRun_MissingJWTSecret(t *testing.T) {
	t.Setenv("LOCKGUARD_JWT_SECRET", "")
	writeTestConfig(t, `
database:
  path: "`+filepath.Join(t.TempDir(), "lockguard.db")+`"
mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail without a JWT secret")
	}
	if !strings.Contains(err.Error(), "security.jwt.secret") {
		t.Errorf("run() error = %v, want a jwt secret validation error", err)
	}
}

// TestRun_BrokerUnreachable verifies run fails cleanly when the broker is down,
// after the database has been opened and migrated.
func TestRun_BrokerUnreachable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lockguard.db")
	writeTestConfig(t, `
database:
  path: "`+dbPath+`"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "127.0.0.1"
    port: 1
  reconnect:
    connect_timeout: 1
security:
  jwt:
    secret: "test-secret-key-at-least-32-characters-long"
`)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail when the broker is unreachable")
	}
	if !strings.Contains(err.Error(), "connecting to MQTT") {
		t.Errorf("run() error = %v, want an MQTT connection error", err)
	}
	if _, statErr := os.Stat(dbPath); statErr != nil {
		t.Errorf("database file not created before MQTT connect: %v", statErr)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("LOCKGUARD_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("LOCKGUARD_CONFIG", "/etc/lockguard/config.yaml")
	if got := getConfigPath(); got != "/etc/lockguard/config.yaml" {
		t.Errorf("getConfigPath() = %q, want override", got)
	}
}
