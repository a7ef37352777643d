package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DayLayout is the format of Event.Day.
const DayLayout = "2006-01-02"

// timestampLayout is fixed-width so created_at sorts chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Kind classifies a device event.
type Kind string

const (
	KindMotion    Kind = "pir"
	KindAccess    Kind = "access"
	KindIntrusion Kind = "intrusion"
)

// ErrInvalidKind is returned for kinds outside KindMotion, KindAccess and
// KindIntrusion.
var ErrInvalidKind = errors.New("audit: invalid event kind")

// ParseKind validates a kind taken from a request.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindMotion, KindAccess, KindIntrusion:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Event is one row of device_events.
type Event struct {
	ID        string    `json:"id"`
	Identity  string    `json:"identity"`
	Day       string    `json:"day"`
	Kind      Kind      `json:"kind"`
	Value     *int      `json:"value,omitempty"`
	Success   *bool     `json:"success,omitempty"`
	CreatedAt time.Time `json:"time"`
}

// Repository defines device event persistence.
type Repository interface {
	Create(ctx context.Context, e *Event) error
	ListDay(ctx context.Context, identity string, kind Kind, day string) ([]Event, error)
}

// SQLiteRepository stores device events in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new device event repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts an event. ID, CreatedAt and Day are filled in when empty;
// Day is always derived from CreatedAt in UTC.
func (r *SQLiteRepository) Create(ctx context.Context, e *Event) error {
	if _, err := ParseKind(string(e.Kind)); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = "evt-" + uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.Day = e.CreatedAt.Format(DayLayout)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO device_events (id, identity, day, kind, value, success, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Identity, e.Day, string(e.Kind),
		nullableInt(e.Value), nullableBool(e.Success),
		e.CreatedAt.Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting device event: %w", err)
	}
	return nil
}

// ListDay returns one identity's events of a kind for a UTC day, oldest first.
func (r *SQLiteRepository) ListDay(ctx context.Context, identity string, kind Kind, day string) ([]Event, error) {
	if _, err := time.Parse(DayLayout, day); err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", day, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, identity, day, kind, value, success, created_at
		 FROM device_events
		 WHERE identity = ? AND day = ? AND kind = ?
		 ORDER BY created_at ASC, rowid ASC`,
		identity, day, string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying device events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var kindStr, createdAt string
		var value, success sql.NullInt64

		if err := rows.Scan(&e.ID, &e.Identity, &e.Day, &kindStr, &value, &success, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning device event: %w", err)
		}
		e.Kind = Kind(kindStr)
		if value.Valid {
			v := int(value.Int64)
			e.Value = &v
		}
		if success.Valid {
			s := success.Int64 == 1
			e.Success = &s
		}
		e.CreatedAt, err = time.Parse(timestampLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing device event timestamp %q: %w", createdAt, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device events: %w", err)
	}
	return events, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableBool(v *bool) any {
	if v == nil {
		return nil
	}
	if *v {
		return 1
	}
	return 0
}
