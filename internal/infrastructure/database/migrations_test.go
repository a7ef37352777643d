package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/nerrad567/lockguard-core/migrations"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20260101_120000_create_widgets.up.sql":   {Data: []byte("CREATE TABLE widgets (id INTEGER PRIMARY KEY);")},
		"20260101_120000_create_widgets.down.sql": {Data: []byte("DROP TABLE widgets;")},
		"20260102_090000_create_gadgets.up.sql":   {Data: []byte("CREATE TABLE gadgets (id INTEGER PRIMARY KEY);")},
		"README.md":                               {Data: []byte("not a migration")},
		"notes.sql":                               {Data: []byte("-- ignored")},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	return n == 1
}

func TestLoadMigrations(t *testing.T) {
	got, err := LoadMigrations(testMigrations())
	if err != nil {
		t.Fatalf("LoadMigrations() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LoadMigrations() returned %d migrations, want 2", len(got))
	}
	if got[0].Version != "20260101_120000" || got[0].Name != "create_widgets" {
		t.Errorf("first migration = %+v", got[0])
	}
	if got[0].DownSQL == "" {
		t.Error("first migration is missing its down SQL")
	}
	if got[1].DownSQL != "" {
		t.Error("second migration should have no down SQL")
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		wantVersion string
		wantDesc    string
		wantUp      bool
		wantOK      bool
	}{
		{"20260118_120000_initial_schema.up.sql", "20260118_120000", "initial_schema", true, true},
		{"20260118_120000_initial_schema.down.sql", "20260118_120000", "initial_schema", false, true},
		{"20260118_120000.up.sql", "20260118_120000", "", true, true},
		{"initial.up.sql", "", "", false, false},
		{"20260118_120000_x.sql", "", "", false, false},
		{"2026_1200_x.up.sql", "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, desc, up, ok := parseMigrationFilename(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion || desc != tt.wantDesc || up != tt.wantUp {
				t.Errorf("got (%q, %q, %v), want (%q, %q, %v)",
					version, desc, up, tt.wantVersion, tt.wantDesc, tt.wantUp)
			}
		})
	}
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := testMigrations()

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "widgets") || !tableExists(t, db, "gadgets") {
		t.Fatal("migrations were not applied")
	}

	applied, pending, err := db.MigrationStatus(ctx, fsys)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("applied=%d pending=%d, want 2 and 0", len(applied), len(pending))
	}

	// Idempotent.
	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrate_FailureKeepsEarlierMigrations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := testMigrations()
	fsys["20260103_000000_broken.up.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE oops (")}

	if err := db.Migrate(ctx, fsys); err == nil {
		t.Fatal("Migrate() error = nil, want error for broken SQL")
	}
	if !tableExists(t, db, "gadgets") {
		t.Error("migration before the broken one was rolled back")
	}

	_, pending, err := db.MigrationStatus(ctx, fsys)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(pending) != 1 || pending[0].Name != "broken" {
		t.Errorf("pending = %+v, want only the broken migration", pending)
	}
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := testMigrations()
	delete(fsys, "20260102_090000_create_gadgets.up.sql")

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx, fsys); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "widgets") {
		t.Error("widgets table still exists after MigrateDown")
	}

	// Nothing left to roll back.
	if err := db.MigrateDown(ctx, fsys); err != nil {
		t.Errorf("MigrateDown() on empty history error = %v", err)
	}
}

func TestMigrateDown_NoDownSQL(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := testMigrations()

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	err := db.MigrateDown(ctx, fsys)
	if !errors.Is(err, ErrNoDownMigration) {
		t.Errorf("MigrateDown() error = %v, want ErrNoDownMigration", err)
	}
}

func TestMigrate_ShippedSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate(migrations.FS) error = %v", err)
	}
	for _, table := range []string{"users", "device_events"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s missing after shipped migrations", table)
		}
	}

	// Every shipped migration must roll back cleanly.
	for {
		applied, _, err := db.MigrationStatus(ctx, migrations.FS)
		if err != nil {
			t.Fatalf("MigrationStatus() error = %v", err)
		}
		if len(applied) == 0 {
			break
		}
		if err := db.MigrateDown(ctx, migrations.FS); err != nil {
			t.Fatalf("MigrateDown() error = %v", err)
		}
	}
	if tableExists(t, db, "users") {
		t.Error("users table still exists after full rollback")
	}
}
