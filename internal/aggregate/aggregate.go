package aggregate

import (
	"errors"
	"fmt"

	"github.com/lox/ledger-category-export/internal/report"
	"github.com/lox/ledger-category-export/internal/types"
	"golang.org/x/exp/slices"
)

var (
	// ErrNoReports is returned when there is nothing to aggregate
	ErrNoReports = errors.New("no reports to aggregate")
	// ErrMissingMonth is returned when the reports skip a calendar month
	ErrMissingMonth = errors.New("reports are not consecutive months")
)

// Table is the export view of one currency: a header row plus one row per category
type Table struct {
	Currency types.Currency
	Name     string
	Header   []string
	Rows     [][]string
}

// Aggregator combines consecutive monthly reports into sparse category x month tables.
// It borrows the report slice; reports are never modified.
type Aggregator struct {
	reports []*report.MonthlyReport
}

// New creates an aggregator over consecutive monthly reports ordered oldest first
func New(reports []*report.MonthlyReport) (*Aggregator, error) {
	if len(reports) == 0 {
		return nil, ErrNoReports
	}
	for idx, r := range reports {
		if r == nil {
			return nil, fmt.Errorf("report %d is nil", idx)
		}
		if idx == 0 {
			continue
		}
		prev := reports[idx-1].Period()
		if !prev.Before(r.Period()) {
			return nil, fmt.Errorf("reports out of order: %s is not before %s", prev, r.Period())
		}
		if want := prev.Next(); r.Period() != want {
			return nil, fmt.Errorf("%w: expected %s after %s, got %s", ErrMissingMonth, want, prev, r.Period())
		}
	}
	return &Aggregator{reports: reports}, nil
}

// Periods returns the months covered, one per column
func (a *Aggregator) Periods() []types.Period {
	periods := make([]types.Period, len(a.reports))
	for idx, r := range a.reports {
		periods[idx] = r.Period()
	}
	return periods
}

// Currencies returns every currency seen in any report, in declaration order
func (a *Aggregator) Currencies() []types.Currency {
	seen := make(map[types.Currency]bool)
	for _, r := range a.reports {
		for _, c := range r.Currencies() {
			seen[c] = true
		}
	}

	var currencies []types.Currency
	for _, c := range types.AllCurrencies() {
		if seen[c] {
			currencies = append(currencies, c)
		}
	}
	return currencies
}

// Categories returns the union of categories used with a currency across all reports, sorted
func (a *Aggregator) Categories(c types.Currency) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, r := range a.reports {
		for _, category := range r.CategoriesFor(c) {
			if !seen[category] {
				seen[category] = true
				categories = append(categories, category)
			}
		}
	}
	slices.Sort(categories)
	return categories
}

// Header returns the column labels: "Category" followed by one "YYYY/MM" per report
func (a *Aggregator) Header() []string {
	header := make([]string, 0, len(a.reports)+1)
	header = append(header, "Category")
	for _, r := range a.reports {
		header = append(header, r.Period().Label())
	}
	return header
}

// Rows returns one row per category for the currency. Every row has a value for
// every month, empty where the category had no amount. A nil formatter keeps
// amounts exactly as ledger printed them.
func (a *Aggregator) Rows(c types.Currency, format Formatter) ([][]string, error) {
	categories := a.Categories(c)
	rows := make([][]string, 0, len(categories))

	for _, category := range categories {
		row := make([]string, 0, len(a.reports)+1)
		row = append(row, category)

		for _, r := range a.reports {
			value, _ := r.Amount(c, category)
			if format != nil {
				formatted, err := format(value)
				if err != nil {
					return nil, fmt.Errorf("failed to format %s %s for %s: %w", c, category, r.Period(), err)
				}
				value = formatted
			}
			row = append(row, value)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// BaseName identifies the covered range, e.g. "report-201805_201905"
func (a *Aggregator) BaseName() string {
	first := a.reports[0].Period()
	last := a.reports[len(a.reports)-1].Period()
	return fmt.Sprintf("report-%s_%s", first.Compact(), last.Compact())
}

// Name identifies a currency's table, e.g. "report-201805_201905-EUR"
func (a *Aggregator) Name(c types.Currency) string {
	return a.BaseName() + "-" + c.String()
}

// Table builds the export table for one currency
func (a *Aggregator) Table(c types.Currency, format Formatter) (Table, error) {
	rows, err := a.Rows(c, format)
	if err != nil {
		return Table{}, err
	}
	return Table{
		Currency: c,
		Name:     a.Name(c),
		Header:   a.Header(),
		Rows:     rows,
	}, nil
}

// Tables builds one table per observed currency, using the formatter registered for each
func (a *Aggregator) Tables(formatters map[types.Currency]Formatter) ([]Table, error) {
	currencies := a.Currencies()
	tables := make([]Table, 0, len(currencies))
	for _, c := range currencies {
		table, err := a.Table(c, formatters[c])
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}
