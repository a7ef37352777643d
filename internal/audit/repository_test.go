package audit

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/nerrad567/lockguard-core/internal/infrastructure/config"
	"github.com/nerrad567/lockguard-core/internal/infrastructure/database"
	"github.com/nerrad567/lockguard-core/migrations"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "events.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db.DB
}

func TestRecorder_RoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	rec := NewRecorder(repo)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	day2 := day1.Add(2 * time.Minute)

	if err := rec.RecordMotion(ctx, "alice", 1, day1); err != nil {
		t.Fatalf("RecordMotion() error = %v", err)
	}
	if err := rec.RecordMotion(ctx, "alice", 0, day2); err != nil {
		t.Fatalf("RecordMotion() error = %v", err)
	}
	if err := rec.RecordAccessAttempt(ctx, "alice", false, day1); err != nil {
		t.Fatalf("RecordAccessAttempt() error = %v", err)
	}
	if err := rec.RecordIntrusion(ctx, "bob", day1); err != nil {
		t.Fatalf("RecordIntrusion() error = %v", err)
	}

	motion, err := repo.ListDay(ctx, "alice", KindMotion, "2026-03-01")
	if err != nil {
		t.Fatalf("ListDay() error = %v", err)
	}
	if len(motion) != 1 || motion[0].Value == nil || *motion[0].Value != 1 {
		t.Errorf("motion on 2026-03-01 = %+v, want one reading of 1", motion)
	}

	next, _ := repo.ListDay(ctx, "alice", KindMotion, "2026-03-02")
	if len(next) != 1 {
		t.Errorf("motion on 2026-03-02 = %d events, want 1", len(next))
	}

	access, _ := repo.ListDay(ctx, "alice", KindAccess, "2026-03-01")
	if len(access) != 1 || access[0].Success == nil || *access[0].Success {
		t.Errorf("access = %+v, want one failed attempt", access)
	}

	// Bob's intrusion is not visible to alice.
	none, _ := repo.ListDay(ctx, "alice", KindIntrusion, "2026-03-01")
	if len(none) != 0 {
		t.Errorf("alice sees %d intrusion events, want 0", len(none))
	}
	bob, _ := repo.ListDay(ctx, "bob", KindIntrusion, "2026-03-01")
	if len(bob) != 1 || bob[0].Value != nil || bob[0].Success != nil {
		t.Errorf("bob intrusions = %+v", bob)
	}
}

func TestCreate_DayFollowsUTC(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	// 01:30 in UTC+3 is still the previous day in UTC.
	loc := time.FixedZone("UTC+3", 3*60*60)
	e := &Event{Identity: "alice", Kind: KindMotion, CreatedAt: time.Date(2026, 3, 2, 1, 30, 0, 0, loc)}

	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.Day != "2026-03-01" {
		t.Errorf("Day = %q, want 2026-03-01", e.Day)
	}
	if e.ID == "" {
		t.Error("ID not generated")
	}
}

func TestListDay_OrdersWithinSecond(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	rec := NewRecorder(repo)
	ctx := context.Background()

	whole := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	half := whole.Add(500 * time.Millisecond)
	later := whole.Add(time.Second)

	// Inserted out of order; a whole-second timestamp must still sort first.
	for _, r := range []struct {
		value int
		at    time.Time
	}{{3, later}, {2, half}, {1, whole}} {
		if err := rec.RecordMotion(ctx, "alice", r.value, r.at); err != nil {
			t.Fatalf("RecordMotion() error = %v", err)
		}
	}

	events, err := repo.ListDay(ctx, "alice", KindMotion, "2026-03-01")
	if err != nil {
		t.Fatalf("ListDay() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("ListDay() returned %d events, want 3", len(events))
	}
	for i, e := range events {
		if e.Value == nil || *e.Value != i+1 {
			t.Errorf("events[%d] value = %v, want %d", i, e.Value, i+1)
		}
	}
	if !events[0].CreatedAt.Equal(whole) || !events[1].CreatedAt.Equal(half) {
		t.Errorf("timestamps = %v, %v; want %v, %v", events[0].CreatedAt, events[1].CreatedAt, whole, half)
	}
}

func TestCreate_GeneratesFullIDs(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 50 {
		e := &Event{Identity: "alice", Kind: KindMotion}
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if len(e.ID) != len("evt-")+36 {
			t.Errorf("ID %q is not a full UUID", e.ID)
		}
		if seen[e.ID] {
			t.Fatalf("duplicate ID %q", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestCreate_InvalidKind(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	err := repo.Create(context.Background(), &Event{Identity: "alice", Kind: "door"})
	if !errors.Is(err, ErrInvalidKind) {
		t.Errorf("Create() error = %v, want ErrInvalidKind", err)
	}
}

func TestCreate_StoreFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectExec("INSERT INTO device_events").WillReturnError(errors.New("disk full"))

	rec := NewRecorder(NewSQLiteRepository(db))
	if err := rec.RecordMotion(context.Background(), "alice", 1, time.Now()); err == nil {
		t.Error("RecordMotion() error = nil, want store failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListDay_InvalidDay(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	if _, err := repo.ListDay(context.Background(), "alice", KindMotion, "yesterday"); err == nil {
		t.Error("ListDay() accepted a malformed day")
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"pir", "access", "intrusion"} {
		if _, err := ParseKind(s); err != nil {
			t.Errorf("ParseKind(%q) error = %v", s, err)
		}
	}
	if _, err := ParseKind("password"); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("ParseKind(password) error = %v, want ErrInvalidKind", err)
	}
}
