// Package migrations versions the client storage schema. The applied
// version is kept in SQLite's user_version pragma.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one forward-only schema step
type Migration struct {
	Version int
	Name    string
	Up      string
}

// All lists the migrations in the order they apply
var All = []Migration{
	{
		Version: 1,
		Name:    "normalize theme casing",
		// Early builds stored "Dark"/"Light"
		Up: `UPDATE client_storage SET value = lower(value) WHERE key = 'theme'`,
	},
	{
		Version: 2,
		Name:    "drop unsupported themes",
		Up:      `DELETE FROM client_storage WHERE key = 'theme' AND value NOT IN ('light', 'dark')`,
	},
	{
		Version: 3,
		Name:    "index updated_at",
		Up:      `CREATE INDEX IF NOT EXISTS idx_client_storage_updated_at ON client_storage(updated_at DESC)`,
	},
}

const schema = `
CREATE TABLE IF NOT EXISTS client_storage (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// InitSchema creates the client_storage table
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Run creates the schema and applies every migration newer than the
// stored version. Running it again is a no-op.
func Run(db *sql.DB) error {
	return RunContext(context.Background(), db)
}

// RunContext is Run with a context
func RunContext(ctx context.Context, db *sql.DB) error {
	if err := InitSchema(db); err != nil {
		return err
	}

	current, err := CurrentVersion(db)
	if err != nil {
		return err
	}

	for _, m := range All {
		if m.Version <= current {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return err
		}
	}
	return nil
}

// apply runs m and bumps user_version in one transaction
func apply(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
	}
	// PRAGMA does not take bind parameters
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return fmt.Errorf("migration %d: failed to record version: %w", m.Version, err)
	}
	return tx.Commit()
}

// CurrentVersion returns the last applied migration, 0 for a new database
func CurrentVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}
