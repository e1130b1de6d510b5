package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/lox/ledger-category-export/internal/types"
)

// DirSource reads reports saved ahead of time as <dir>/YYYY-MM.txt
type DirSource struct {
	dir    string
	logger *log.Logger
}

// NewDirSource creates a source backed by a directory of saved reports
func NewDirSource(dir string, logger *log.Logger) (*DirSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open report directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &DirSource{dir: dir, logger: logger}, nil
}

// Name returns the name of the source
func (s *DirSource) Name() string {
	return "dir"
}

// Path returns the file a period's report is read from
func (s *DirSource) Path(p types.Period) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d-%02d.txt", p.Year, p.Month))
}

// Fetch reads the saved report for the period
func (s *DirSource) Fetch(ctx context.Context, p types.Period) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Path(p)
	output, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}

	s.logger.Debug("Read saved report", "period", p, "path", path, "bytes", len(output))
	return output, nil
}

var _ Source = (*DirSource)(nil)
