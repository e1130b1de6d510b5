package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/lox/ledger-category-export/internal/aggregate"
)

// WriteCSV writes a table as CSV: the header row followed by one row per category
func WriteCSV(w io.Writer, table aggregate.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(table.Header); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", table.Name, err)
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("failed to write rows for %s: %w", table.Name, err)
	}

	return nil
}

// WriteCSVFile writes a table to <dir>/<table name>.csv and returns the path
func WriteCSVFile(dir string, table aggregate.Table) (path string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path = filepath.Join(dir, table.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file %s: %w", path, closeErr)
		}
	}()

	if err = WriteCSV(f, table); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}

// WriteAll writes one CSV file per table and returns the paths in table order
func WriteAll(dir string, tables []aggregate.Table, logger *log.Logger) ([]string, error) {
	paths := make([]string, 0, len(tables))
	for _, table := range tables {
		logger.Info("Generating report", "currency", table.Currency, "categories", len(table.Rows))
		path, err := WriteCSVFile(dir, table)
		if err != nil {
			return nil, err
		}
		logger.Info("Wrote report", "path", path)
		paths = append(paths, path)
	}
	return paths, nil
}
