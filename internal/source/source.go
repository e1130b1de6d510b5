package source

import (
	"context"
	"errors"
	"sort"

	"github.com/lox/ledger-category-export/internal/types"
)

// ErrNotFound is returned when a source has no report for the requested month
var ErrNotFound = errors.New("report not found")

// Source produces the raw balance report text for a month
type Source interface {
	// Name returns the name of the source
	Name() string

	// Fetch returns the complete report output for the period
	Fetch(ctx context.Context, p types.Period) ([]byte, error)
}

// Registry maintains a list of available report sources
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates a new source registry
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
	}
}

// Register adds a source to the registry
func (r *Registry) Register(s Source) {
	r.sources[s.Name()] = s
}

// Get returns a source by name
func (r *Registry) Get(name string) (Source, bool) {
	s, ok := r.sources[name]
	return s, ok
}

// List returns the sorted names of all registered sources
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
