package report

import (
	"fmt"
	"strings"

	"github.com/lox/ledger-category-export/internal/types"
	"github.com/shopspring/decimal"
)

// ParseAmount returns the numeric value of an amount printed by ledger, e.g. "$1,984.53" or "-4.00 EUR"
func ParseAmount(c types.Currency, amount string) (decimal.Decimal, error) {
	s := strings.TrimSpace(amount)
	switch c {
	case types.CurrencyUSD:
		s = strings.TrimPrefix(s, "$")
	case types.CurrencyEUR:
		s = strings.TrimSuffix(s, " EUR")
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", types.ErrUnknownCurrency, amount)
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %s amount %q: %w", c, amount, err)
	}
	return value, nil
}

// FormatAmount renders a value the way ledger prints it for the currency.
// At least two decimal places are kept, more when the value carries them.
func FormatAmount(c types.Currency, value decimal.Decimal) string {
	sign := ""
	if value.IsNegative() {
		sign = "-"
	}
	places := max(-value.Exponent(), 2)
	number := groupThousands(value.Abs().StringFixed(places))

	switch c {
	case types.CurrencyUSD:
		return "$" + sign + number
	case types.CurrencyEUR:
		return sign + number + " EUR"
	default:
		return sign + number
	}
}

func groupThousands(fixed string) string {
	whole, frac, _ := strings.Cut(fixed, ".")
	if len(whole) <= 3 {
		return fixed
	}

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
