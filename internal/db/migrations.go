package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

// Migration is a schema change applied once per cache database.
// createTables always builds the base schema, so a migration must also
// succeed against a database created by the current code.
type Migration struct {
	ID   int
	Name string
	Up   func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []Migration{
	{
		ID:   1,
		Name: "index amounts by category",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_amounts_category ON amounts(currency, category)`)
			return err
		},
	},
}

// ApplyMigrations runs every migration not yet recorded in schema_migrations,
// each in its own transaction
func ApplyMigrations(ctx context.Context, db *sql.DB, logger *log.Logger) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.ID] {
			continue
		}
		logger.Info("Applying migration", "id", m.ID, "name", m.Name)
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.ID, m.Name, err)
		}
	}

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.Up(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (id, name) VALUES (?, ?)`, m.ID, m.Name); err != nil {
		return err
	}
	return tx.Commit()
}

func appliedMigrations(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT id FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		applied[id] = true
	}
	return applied, rows.Err()
}
