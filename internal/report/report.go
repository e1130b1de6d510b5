package report

import (
	"fmt"

	"github.com/lox/ledger-category-export/internal/types"
	"golang.org/x/exp/slices"
)

// MonthlyReport holds category balances for one month, grouped by currency.
// It is read-only once built.
type MonthlyReport struct {
	period types.Period
	data   map[types.Currency]map[string]string
}

// New builds a report from already classified data, e.g. when loading from the cache
func New(period types.Period, data map[types.Currency]map[string]string) (*MonthlyReport, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	r := Empty(period)
	for currency, amounts := range data {
		if currency == types.CurrencyUnknown {
			return nil, fmt.Errorf("%w in report for %s", types.ErrUnknownCurrency, period)
		}
		if len(amounts) == 0 {
			continue
		}
		copied := make(map[string]string, len(amounts))
		for category, amount := range amounts {
			copied[category] = amount
		}
		r.data[currency] = copied
	}

	return r, nil
}

// Empty returns a report with no entries
func Empty(period types.Period) *MonthlyReport {
	return &MonthlyReport{
		period: period,
		data:   make(map[types.Currency]map[string]string),
	}
}

// Period returns the month covered by the report
func (r *MonthlyReport) Period() types.Period {
	return r.period
}

// Currencies returns all currencies used in this report
func (r *MonthlyReport) Currencies() []types.Currency {
	currencies := make([]types.Currency, 0, len(r.data))
	for _, c := range types.AllCurrencies() {
		if _, ok := r.data[c]; ok {
			currencies = append(currencies, c)
		}
	}
	return currencies
}

// CategoriesFor returns the sorted categories used with a specific currency
func (r *MonthlyReport) CategoriesFor(c types.Currency) []string {
	categories := make([]string, 0, len(r.data[c]))
	for category := range r.data[c] {
		categories = append(categories, category)
	}
	slices.Sort(categories)
	return categories
}

// DataFor returns a copy of the category->amount map for a currency.
// A currency that never appeared yields an empty map.
func (r *MonthlyReport) DataFor(c types.Currency) map[string]string {
	amounts := make(map[string]string, len(r.data[c]))
	for category, amount := range r.data[c] {
		amounts[category] = amount
	}
	return amounts
}

// Amount returns the stored amount for a currency and category
func (r *MonthlyReport) Amount(c types.Currency, category string) (string, bool) {
	amount, ok := r.data[c][category]
	return amount, ok
}

// Len returns the number of (currency, category) amounts in the report
func (r *MonthlyReport) Len() int {
	n := 0
	for _, amounts := range r.data {
		n += len(amounts)
	}
	return n
}
