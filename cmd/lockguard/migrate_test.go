package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func writeMigrateConfig(t *testing.T) {
	t.Helper()
	writeTestConfig(t, `
database:
  path: "`+filepath.Join(t.TempDir(), "lockguard.db")+`"
security:
  jwt:
    secret: "test-secret-key-at-least-32-characters-long"
`)
}

func TestRunMigrate_UpStatusDown(t *testing.T) {
	writeMigrateConfig(t)
	ctx := context.Background()

	var out bytes.Buffer
	if err := runMigrate(ctx, nil, &out); err != nil {
		t.Fatalf("migrate up error = %v", err)
	}

	out.Reset()
	if err := runMigrate(ctx, []string{"status"}, &out); err != nil {
		t.Fatalf("migrate status error = %v", err)
	}
	if strings.Contains(out.String(), "pending") || strings.Count(out.String(), "applied") != 2 {
		t.Errorf("status after up:\n%s", out.String())
	}

	if err := runMigrate(ctx, []string{"down"}, &out); err != nil {
		t.Fatalf("migrate down error = %v", err)
	}

	out.Reset()
	if err := runMigrate(ctx, []string{"status"}, &out); err != nil {
		t.Fatalf("migrate status error = %v", err)
	}
	if !strings.Contains(out.String(), "pending  20260301_100100  create_device_events") {
		t.Errorf("status after down:\n%s", out.String())
	}
}

func TestRunMigrate_Usage(t *testing.T) {
	for _, args := range [][]string{{"sideways"}, {"up", "extra"}} {
		if err := runMigrate(context.Background(), args, &bytes.Buffer{}); !errors.Is(err, errUsage) {
			t.Errorf("runMigrate(%v) error = %v, want usage error", args, err)
		}
	}
}
