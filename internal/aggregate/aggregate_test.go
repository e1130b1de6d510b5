package aggregate

import (
	"testing"

	"github.com/lox/ledger-category-export/internal/report"
	"github.com/lox/ledger-category-export/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustReport(t *testing.T, year, month int, data map[types.Currency]map[string]string) *report.MonthlyReport {
	t.Helper()
	r, err := report.New(types.Period{Year: year, Month: month}, data)
	require.NoError(t, err)
	return r
}

func twoMonths(t *testing.T) []*report.MonthlyReport {
	return []*report.MonthlyReport{
		mustReport(t, 2019, 5, map[types.Currency]map[string]string{
			types.CurrencyUSD: {"Rent": "$650.00"},
			types.CurrencyEUR: {"Dining": "23.80 EUR"},
		}),
		mustReport(t, 2019, 6, map[types.Currency]map[string]string{
			types.CurrencyUSD: {"Rent": "$700.00"},
		}),
	}
}

func TestTwoMonthTwoCurrencyAggregation(t *testing.T) {
	a, err := New(twoMonths(t))
	require.NoError(t, err)

	assert.Equal(t, []types.Currency{types.CurrencyUSD, types.CurrencyEUR}, a.Currencies())
	assert.Equal(t, []string{"Category", "2019/05", "2019/06"}, a.Header())

	usd, err := a.Rows(types.CurrencyUSD, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Rent", "$650.00", "$700.00"}}, usd)

	eur, err := a.Rows(types.CurrencyEUR, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Dining", "23.80 EUR", ""}}, eur)
}

func TestRowsAreTotal(t *testing.T) {
	reports := []*report.MonthlyReport{
		mustReport(t, 2018, 11, map[types.Currency]map[string]string{
			types.CurrencyUSD: {"Expenses:Rent": "$650.00", "Expenses:Food": "$12.00"},
		}),
		report.Empty(types.Period{Year: 2018, Month: 12}),
		mustReport(t, 2019, 1, map[types.Currency]map[string]string{
			types.CurrencyUSD: {"Expenses:Travel": "$99.00"},
		}),
	}

	a, err := New(reports)
	require.NoError(t, err)

	rows, err := a.Rows(types.CurrencyUSD, nil)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Expenses:Food", "$12.00", "", ""},
		{"Expenses:Rent", "$650.00", "", ""},
		{"Expenses:Travel", "", "", "$99.00"},
	}, rows)

	for _, row := range rows {
		assert.Len(t, row, len(reports)+1)
	}
}

func TestCategoriesAreUnionOfMonths(t *testing.T) {
	reports := []*report.MonthlyReport{
		mustReport(t, 2019, 1, map[types.Currency]map[string]string{
			types.CurrencyEUR: {"b": "1.00 EUR", "a": "2.00 EUR"},
			types.CurrencyUSD: {"z": "$1.00"},
		}),
		mustReport(t, 2019, 2, map[types.Currency]map[string]string{
			types.CurrencyEUR: {"c": "3.00 EUR", "a": "4.00 EUR"},
		}),
	}

	a, err := New(reports)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, a.Categories(types.CurrencyEUR))
	assert.Equal(t, []string{"z"}, a.Categories(types.CurrencyUSD))
}

func TestCategoriesSortByteWise(t *testing.T) {
	a, err := New([]*report.MonthlyReport{
		mustReport(t, 2019, 1, map[types.Currency]map[string]string{
			types.CurrencyUSD: {"expenses:a": "$1.00", "Expenses:b": "$1.00", "Expenses:B": "$1.00"},
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Expenses:B", "Expenses:b", "expenses:a"}, a.Categories(types.CurrencyUSD))
}

func TestNaming(t *testing.T) {
	reports := twoMonths(t)
	for p := (types.Period{Year: 2019, Month: 7}); p.Before(types.Period{Year: 2020, Month: 2}); p = p.Next() {
		reports = append(reports, report.Empty(p))
	}

	a, err := New(reports)
	require.NoError(t, err)

	assert.Equal(t, "report-201905_202001", a.BaseName())
	assert.Equal(t, "report-201905_202001-EUR", a.Name(types.CurrencyEUR))
	assert.Equal(t, "report-201905_202001-USD", a.Name(types.CurrencyUSD))
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoReports)

	_, err = New([]*report.MonthlyReport{nil})
	assert.Error(t, err)

	reports := twoMonths(t)
	_, err = New([]*report.MonthlyReport{reports[1], reports[0]})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingMonth)
}

func TestNewRejectsGaps(t *testing.T) {
	reports := twoMonths(t)
	reports = append(reports, mustReport(t, 2019, 8, map[types.Currency]map[string]string{
		types.CurrencyUSD: {"Rent": "$700.00"},
	}))

	_, err := New(reports)
	assert.ErrorIs(t, err, ErrMissingMonth)
	assert.Contains(t, err.Error(), "2019/07")
}

func TestTablesApplyFormatters(t *testing.T) {
	a, err := New(twoMonths(t))
	require.NoError(t, err)

	tables, err := a.Tables(DefaultFormatters())
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, types.CurrencyUSD, tables[0].Currency)
	assert.Equal(t, "report-201905_201906-USD", tables[0].Name)
	assert.Equal(t, [][]string{{"Rent", "$650.00", "$700.00"}}, tables[0].Rows)

	assert.Equal(t, types.CurrencyEUR, tables[1].Currency)
	assert.Equal(t, []string{"Category", "2019/05", "2019/06"}, tables[1].Header)
	assert.Equal(t, [][]string{{"Dining", "€23.80", ""}}, tables[1].Rows)
}

func TestTableFormatterError(t *testing.T) {
	a, err := New(twoMonths(t))
	require.NoError(t, err)

	// the USD values do not carry the EUR suffix
	_, err = a.Table(types.CurrencyUSD, EURFormatter)
	assert.Error(t, err)
}

func TestPeriods(t *testing.T) {
	a, err := New(twoMonths(t))
	require.NoError(t, err)
	assert.Equal(t, []types.Period{{Year: 2019, Month: 5}, {Year: 2019, Month: 6}}, a.Periods())
}
