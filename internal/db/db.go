package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/lox/ledger-category-export/internal/report"
	"github.com/lox/ledger-category-export/internal/types"
)

// DB caches parsed monthly reports in SQLite so closed months are not re-run
type DB struct {
	db     *sql.DB
	logger *log.Logger
}

// New opens (or creates) the cache database in dataDir
func New(dataDir string, logger *log.Logger) (*DB, error) {
	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them
	dbPath := filepath.Join(dataDir, "reports.db")
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	if err := ApplyMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %v", err)
	}

	return &DB{
		db:     db,
		logger: logger,
	}, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			scope TEXT NOT NULL,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (scope, year, month)
		);

		CREATE TABLE IF NOT EXISTS amounts (
			scope TEXT NOT NULL,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			currency TEXT NOT NULL,
			category TEXT NOT NULL,
			amount TEXT NOT NULL,
			PRIMARY KEY (scope, year, month, currency, category),
			FOREIGN KEY (scope, year, month) REFERENCES reports(scope, year, month) ON DELETE CASCADE
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create report tables: %v", err)
	}

	return nil
}

// ScopeID derives a stable cache key from everything that shapes a report,
// such as the source name, journal file and account
func ScopeID(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}

// Store saves a report under scope, replacing any earlier copy of that month
func (d *DB) Store(ctx context.Context, scope string, r *report.MonthlyReport) error {
	p := r.Period()
	d.logger.Debug("Storing report", "period", p, "amounts", r.Len())

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE scope = ? AND year = ? AND month = ?`, scope, p.Year, p.Month); err != nil {
		return fmt.Errorf("failed to clear cached report: %v", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO reports (scope, year, month) VALUES (?, ?, ?)`, scope, p.Year, p.Month); err != nil {
		return fmt.Errorf("failed to store report: %v", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO amounts (scope, year, month, currency, category, amount)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare amount insert: %v", err)
	}
	defer stmt.Close()

	for _, c := range r.Currencies() {
		for _, category := range r.CategoriesFor(c) {
			amount, _ := r.Amount(c, category)
			if _, err := stmt.ExecContext(ctx, scope, p.Year, p.Month, c.String(), category, amount); err != nil {
				return fmt.Errorf("failed to store amount: %v", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %v", err)
	}

	return nil
}

// Get loads a cached report. It returns nil without error when the month is not cached.
func (d *DB) Get(ctx context.Context, scope string, p types.Period) (*report.MonthlyReport, error) {
	exists, err := d.Has(ctx, scope, p)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT currency, category, amount
		FROM amounts
		WHERE scope = ? AND year = ? AND month = ?
	`, scope, p.Year, p.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to query amounts: %v", err)
	}
	defer rows.Close()

	data := make(map[types.Currency]map[string]string)
	for rows.Next() {
		var currencyName, category, amount string
		if err := rows.Scan(&currencyName, &category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan amount: %v", err)
		}
		currency, err := types.ParseCurrency(currencyName)
		if err != nil {
			return nil, fmt.Errorf("corrupt cached report for %s: %w", p, err)
		}
		if data[currency] == nil {
			data[currency] = make(map[string]string)
		}
		data[currency][category] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating amounts: %v", err)
	}

	return report.New(p, data)
}

// Has checks if a month is cached under scope
func (d *DB) Has(ctx context.Context, scope string, p types.Period) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM reports WHERE scope = ? AND year = ? AND month = ?)
	`, scope, p.Year, p.Month).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check report existence: %v", err)
	}

	return exists, nil
}

// Delete removes a cached month
func (d *DB) Delete(ctx context.Context, scope string, p types.Period) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM reports WHERE scope = ? AND year = ? AND month = ?`, scope, p.Year, p.Month)
	if err != nil {
		return fmt.Errorf("failed to delete report: %v", err)
	}
	return nil
}

// Periods returns the cached months for scope, oldest first
func (d *DB) Periods(ctx context.Context, scope string) ([]types.Period, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT year, month FROM reports WHERE scope = ? ORDER BY year, month
	`, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %v", err)
	}
	defer rows.Close()

	var periods []types.Period
	for rows.Next() {
		var p types.Period
		if err := rows.Scan(&p.Year, &p.Month); err != nil {
			return nil, fmt.Errorf("failed to scan report: %v", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// Count returns the number of cached reports across all scopes
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %v", err)
	}

	return count, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}
