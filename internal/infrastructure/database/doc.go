// Package database provides SQLite connectivity for LockGuard Core.
//
// This package manages:
//   - The database connection with WAL mode for concurrent access
//   - Versioned schema migrations read from an fs.FS
//   - Health checks used by the /health endpoint
//
// The users table (identity, email, access code) and the device_events log
// both live in this database; see the migrations directory for the schema.
//
// Security Considerations:
//   - All queries use parameterised statements
//   - The database file is chmod 0600 (it holds access codes in plain text)
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
