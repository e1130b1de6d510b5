package report

import (
	"testing"

	"github.com/lox/ledger-category-export/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var may2019 = types.Period{Year: 2019, Month: 5}

func TestBuilderGroupsByCurrency(t *testing.T) {
	b := NewBuilder(may2019, DuplicateError)
	require.NoError(t, b.Add(types.Entry{Category: "Expenses:Cash", Amount: "$90.00", Line: 1}))
	require.NoError(t, b.Add(types.Entry{Category: "Expenses:Cash", Amount: "450.00 EUR", Line: 2}))
	require.NoError(t, b.Add(types.Entry{Category: "Expenses:Clothing", Amount: "74.95 EUR", Line: 3}))

	r := b.Build()
	assert.Equal(t, may2019, r.Period())
	assert.Equal(t, []types.Currency{types.CurrencyUSD, types.CurrencyEUR}, r.Currencies())
	assert.Equal(t, []string{"Expenses:Cash"}, r.CategoriesFor(types.CurrencyUSD))
	assert.Equal(t, []string{"Expenses:Cash", "Expenses:Clothing"}, r.CategoriesFor(types.CurrencyEUR))
	assert.Equal(t, map[string]string{"Expenses:Cash": "$90.00"}, r.DataFor(types.CurrencyUSD))
	assert.Equal(t, 3, r.Len())

	amount, ok := r.Amount(types.CurrencyEUR, "Expenses:Cash")
	assert.True(t, ok)
	assert.Equal(t, "450.00 EUR", amount)
}

func TestBuilderUnknownCurrency(t *testing.T) {
	b := NewBuilder(may2019, DuplicateError)
	err := b.Add(types.Entry{Category: "Expenses:Stocks", Amount: "3 AAPL", Line: 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownCurrency)

	var entryErr *EntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, 7, entryErr.Line)
	assert.Equal(t, "Expenses:Stocks", entryErr.Category)
	assert.Equal(t, "3 AAPL", entryErr.Amount)
}

func TestBuilderDuplicatePolicies(t *testing.T) {
	first := types.Entry{Category: "Expenses:Rent", Amount: "$650.00", Line: 1}
	second := types.Entry{Category: "Expenses:Rent", Amount: "$1,350.25", Line: 2}

	t.Run("error", func(t *testing.T) {
		b := NewBuilder(may2019, DuplicateError)
		require.NoError(t, b.Add(first))
		err := b.Add(second)
		assert.ErrorIs(t, err, ErrDuplicateEntry)

		var entryErr *EntryError
		require.ErrorAs(t, err, &entryErr)
		assert.Equal(t, 2, entryErr.Line)
	})

	t.Run("overwrite", func(t *testing.T) {
		b := NewBuilder(may2019, DuplicateOverwrite)
		require.NoError(t, b.Add(first))
		require.NoError(t, b.Add(second))
		amount, _ := b.Build().Amount(types.CurrencyUSD, "Expenses:Rent")
		assert.Equal(t, "$1,350.25", amount)
	})

	t.Run("sum", func(t *testing.T) {
		b := NewBuilder(may2019, DuplicateSum)
		require.NoError(t, b.Add(first))
		require.NoError(t, b.Add(second))
		amount, _ := b.Build().Amount(types.CurrencyUSD, "Expenses:Rent")
		assert.Equal(t, "$2,000.25", amount)
	})

	t.Run("same_category_other_currency_is_not_a_duplicate", func(t *testing.T) {
		b := NewBuilder(may2019, DuplicateError)
		require.NoError(t, b.Add(first))
		require.NoError(t, b.Add(types.Entry{Category: "Expenses:Rent", Amount: "10.00 EUR", Line: 2}))
		assert.Equal(t, 2, b.Build().Len())
	})
}

func TestBuilderRejectsAddAfterBuild(t *testing.T) {
	b := NewBuilder(may2019, DuplicateError)
	require.NoError(t, b.Add(types.Entry{Category: "Expenses:Rent", Amount: "$1.00", Line: 1}))
	r := b.Build()

	assert.ErrorIs(t, b.Add(types.Entry{Category: "Expenses:Food", Amount: "$2.00", Line: 2}), ErrBuilderFinished)
	assert.Equal(t, 1, r.Len())
}

func TestParseDuplicatePolicy(t *testing.T) {
	for _, p := range []DuplicatePolicy{DuplicateError, DuplicateSum, DuplicateOverwrite} {
		parsed, err := ParseDuplicatePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	_, err := ParseDuplicatePolicy("list")
	assert.Error(t, err)
}
