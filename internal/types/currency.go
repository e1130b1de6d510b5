package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCurrency is returned when an amount matches none of the supported currency formats
var ErrUnknownCurrency = errors.New("unknown currency")

// Currency identifies the commodity of a ledger amount
type Currency int

const (
	CurrencyUnknown Currency = iota
	CurrencyUSD
	CurrencyEUR
)

// AllCurrencies returns every supported currency in declaration order
func AllCurrencies() []Currency {
	return []Currency{CurrencyUSD, CurrencyEUR}
}

// String returns the symbolic name of the currency
func (c Currency) String() string {
	switch c {
	case CurrencyUSD:
		return "USD"
	case CurrencyEUR:
		return "EUR"
	default:
		return "UNKNOWN"
	}
}

// ParseCurrency converts a symbolic name such as "usd" or "EUR" into a Currency
func ParseCurrency(name string) (Currency, error) {
	for _, c := range AllCurrencies() {
		if strings.EqualFold(name, c.String()) {
			return c, nil
		}
	}
	return CurrencyUnknown, fmt.Errorf("%w: %q", ErrUnknownCurrency, name)
}

// GuessCurrency classifies an amount as printed by ledger.
// Dollar amounts carry a leading "$", euro amounts a trailing " EUR".
func GuessCurrency(amount string) (Currency, error) {
	switch {
	case strings.HasPrefix(amount, "$"):
		return CurrencyUSD, nil
	case strings.HasSuffix(amount, " EUR"):
		return CurrencyEUR, nil
	default:
		return CurrencyUnknown, fmt.Errorf("%w: %q", ErrUnknownCurrency, amount)
	}
}
