package aggregate

import (
	"fmt"
	"strings"

	"github.com/lox/ledger-category-export/internal/types"
)

// Formatter converts a stored amount into the text written to the export.
// Empty cells are passed through the formatter too and must stay empty.
type Formatter func(string) (string, error)

// EURFormatter renders "450.00 EUR" as "€450.00", which spreadsheets read as a currency value
func EURFormatter(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	number, ok := strings.CutSuffix(s, " EUR")
	if !ok {
		return "", fmt.Errorf("unexpected EUR value %q", s)
	}
	return "€" + number, nil
}

// FormatterFor returns the spreadsheet formatter for a currency, or nil when amounts are written as-is
func FormatterFor(c types.Currency) Formatter {
	switch c {
	case types.CurrencyEUR:
		return EURFormatter
	default:
		return nil
	}
}

// DefaultFormatters returns the spreadsheet formatters for every currency that has one
func DefaultFormatters() map[types.Currency]Formatter {
	formatters := make(map[types.Currency]Formatter)
	for _, c := range types.AllCurrencies() {
		if f := FormatterFor(c); f != nil {
			formatters[c] = f
		}
	}
	return formatters
}
