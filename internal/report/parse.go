package report

import (
	"fmt"

	"github.com/lox/ledger-category-export/internal/ledger"
	"github.com/lox/ledger-category-export/internal/types"
)

// Options controls how a month's report text is parsed
type Options struct {
	// Marker is the root account label locating the category column
	Marker string
	// Duplicates decides how repeated (currency, category) amounts are handled
	Duplicates DuplicatePolicy
}

// MonthError wraps any failure while turning one month's output into a report
type MonthError struct {
	Period types.Period
	Err    error
}

func (e *MonthError) Error() string {
	return fmt.Sprintf("report for %s: %v", e.Period, e.Err)
}

func (e *MonthError) Unwrap() error {
	return e.Err
}

// Result is the outcome of producing a single month: either a report or an error
type Result struct {
	Period types.Period
	Report *MonthlyReport
	Err    error
}

// Parse turns the raw balance output for one month into a MonthlyReport
func Parse(period types.Period, output []byte, opts Options) (*MonthlyReport, error) {
	if err := period.Validate(); err != nil {
		return nil, &MonthError{Period: period, Err: err}
	}

	entries, err := ledger.ParseOutput(output, opts.Marker)
	if err != nil {
		return nil, &MonthError{Period: period, Err: err}
	}

	builder := NewBuilder(period, opts.Duplicates)
	for _, entry := range entries {
		if err := builder.Add(entry); err != nil {
			return nil, &MonthError{Period: period, Err: err}
		}
	}

	return builder.Build(), nil
}
