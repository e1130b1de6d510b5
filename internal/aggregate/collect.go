package aggregate

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/ledger-category-export/internal/report"
)

// FailurePolicy decides what a failed month does to the whole run
type FailurePolicy int

const (
	// FailAbort stops at the first failed month
	FailAbort FailurePolicy = iota
	// FailSkip logs the failure and keeps the month as an empty column
	FailSkip
)

func (p FailurePolicy) String() string {
	switch p {
	case FailAbort:
		return "abort"
	case FailSkip:
		return "skip"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// ParseFailurePolicy converts "abort" or "skip" into a FailurePolicy
func ParseFailurePolicy(name string) (FailurePolicy, error) {
	switch strings.ToLower(name) {
	case "abort":
		return FailAbort, nil
	case "skip":
		return FailSkip, nil
	default:
		return FailAbort, fmt.Errorf("unknown failure policy %q", name)
	}
}

// Collect turns per-month results into the report list handed to New.
// Results must already be in chronological order.
func Collect(results []report.Result, policy FailurePolicy, logger *log.Logger) ([]*report.MonthlyReport, error) {
	if len(results) == 0 {
		return nil, ErrNoReports
	}

	reports := make([]*report.MonthlyReport, 0, len(results))
	skipped := 0

	for _, res := range results {
		err := res.Err
		if err == nil && res.Report == nil {
			err = fmt.Errorf("no report produced for %s", res.Period)
		}

		if err == nil {
			reports = append(reports, res.Report)
			continue
		}

		if policy != FailSkip {
			return nil, err
		}

		logger.Warn("Skipping month", "period", res.Period, "error", err)
		reports = append(reports, report.Empty(res.Period))
		skipped++
	}

	if skipped > 0 {
		logger.Warn("Some months were skipped and appear as empty columns", "skipped", skipped, "total", len(results))
	}

	return reports, nil
}
