package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/lockguard-core/internal/infrastructure/mqtt"
)

// accessCodeQuery is the single lookup used for verification.
const accessCodeQuery = "SELECT access_code FROM users WHERE identity = ?"

// Repository defines credential-store persistence.
type Repository interface {
	// AccessCode returns the current code for identity, or ErrUserNotFound.
	AccessCode(ctx context.Context, identity string) (string, error)

	// Email returns the registered address, "" when none is set, or
	// ErrUserNotFound.
	Email(ctx context.Context, identity string) (string, error)

	// Identities lists every known identity in a stable order.
	Identities(ctx context.Context) ([]string, error)

	// UpdateAccessCode rotates the code for identity.
	UpdateAccessCode(ctx context.Context, identity, code string) error

	// Create inserts a user. Intended for seeding and tests.
	Create(ctx context.Context, u *User) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed credential store.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// AccessCode reads the stored code. It is deliberately uncached.
func (r *SQLiteRepository) AccessCode(ctx context.Context, identity string) (string, error) {
	var code string
	err := r.db.QueryRowContext(ctx, accessCodeQuery, identity).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying access code: %w", err)
	}
	return code, nil
}

// Email returns the identity's alert address.
func (r *SQLiteRepository) Email(ctx context.Context, identity string) (string, error) {
	var email sql.NullString
	err := r.db.QueryRowContext(ctx, "SELECT email FROM users WHERE identity = ?", identity).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying email: %w", err)
	}
	return strings.TrimSpace(email.String), nil
}

// Identities lists all identities ordered alphabetically.
func (r *SQLiteRepository) Identities(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT identity FROM users ORDER BY identity")
	if err != nil {
		return nil, fmt.Errorf("listing identities: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning identity: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating identities: %w", err)
	}
	return ids, nil
}

// UpdateAccessCode validates and stores a new code.
func (r *SQLiteRepository) UpdateAccessCode(ctx context.Context, identity, code string) error {
	if err := ValidateAccessCode(code); err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET access_code = ?, updated_at = ? WHERE identity = ?",
		code, time.Now().UTC().Format(time.RFC3339), identity)
	if err != nil {
		return fmt.Errorf("updating access code: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating access code: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Create inserts a user. The identity must be usable as a topic segment.
func (r *SQLiteRepository) Create(ctx context.Context, u *User) error {
	if err := mqtt.ValidateIdentity(u.Identity); err != nil {
		return err
	}
	if u.AccessCode != "" {
		if err := ValidateAccessCode(u.AccessCode); err != nil {
			return err
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	u.CreatedAt, u.UpdatedAt = now, now
	ts := now.Format(time.RFC3339)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (identity, email, access_code, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.Identity, nullString(u.Email), u.AccessCode, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isUniqueViolation matches SQLite's constraint error text so callers do not
// need the driver's error type.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}
