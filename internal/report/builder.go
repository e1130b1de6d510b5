package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lox/ledger-category-export/internal/types"
)

var (
	ErrDuplicateEntry  = errors.New("duplicate amount for category")
	ErrBuilderFinished = errors.New("report already built")
)

// DuplicatePolicy decides what happens when a month lists the same category twice in one currency
type DuplicatePolicy int

const (
	// DuplicateError rejects the month. ledger --flat prints one line per
	// account and commodity, so a repeat points at a parsing problem.
	DuplicateError DuplicatePolicy = iota
	// DuplicateSum adds the amounts together
	DuplicateSum
	// DuplicateOverwrite keeps the last amount seen
	DuplicateOverwrite
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateError:
		return "error"
	case DuplicateSum:
		return "sum"
	case DuplicateOverwrite:
		return "overwrite"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// ParseDuplicatePolicy converts a policy name ("error", "sum", "overwrite") into a DuplicatePolicy
func ParseDuplicatePolicy(name string) (DuplicatePolicy, error) {
	for _, p := range []DuplicatePolicy{DuplicateError, DuplicateSum, DuplicateOverwrite} {
		if strings.EqualFold(name, p.String()) {
			return p, nil
		}
	}
	return DuplicateError, fmt.Errorf("unknown duplicate policy %q", name)
}

// EntryError reports an entry that could not be folded into a report
type EntryError struct {
	Line     int
	Category string
	Amount   string
	Err      error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("line %d: category %q amount %q: %v", e.Line, e.Category, e.Amount, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Builder accumulates entries for one month and finalizes them into a MonthlyReport
type Builder struct {
	period types.Period
	policy DuplicatePolicy
	data   map[types.Currency]map[string]string
	built  bool
}

// NewBuilder creates a builder for the given month
func NewBuilder(period types.Period, policy DuplicatePolicy) *Builder {
	return &Builder{
		period: period,
		policy: policy,
		data:   make(map[types.Currency]map[string]string),
	}
}

// Add classifies the entry's currency and records its amount
func (b *Builder) Add(entry types.Entry) error {
	if b.built {
		return ErrBuilderFinished
	}

	currency, err := types.GuessCurrency(entry.Amount)
	if err != nil {
		return b.entryError(entry, err)
	}

	amounts, ok := b.data[currency]
	if !ok {
		amounts = make(map[string]string)
		b.data[currency] = amounts
	}

	existing, dup := amounts[entry.Category]
	if !dup {
		amounts[entry.Category] = entry.Amount
		return nil
	}

	switch b.policy {
	case DuplicateOverwrite:
		amounts[entry.Category] = entry.Amount
	case DuplicateSum:
		sum, err := sumAmounts(currency, existing, entry.Amount)
		if err != nil {
			return b.entryError(entry, err)
		}
		amounts[entry.Category] = sum
	default:
		return b.entryError(entry, fmt.Errorf("%w (already have %q)", ErrDuplicateEntry, existing))
	}

	return nil
}

// Build finalizes the report. The builder rejects further entries afterwards.
func (b *Builder) Build() *MonthlyReport {
	b.built = true
	r := &MonthlyReport{period: b.period, data: b.data}
	b.data = nil
	return r
}

func (b *Builder) entryError(entry types.Entry, err error) error {
	return &EntryError{
		Line:     entry.Line,
		Category: entry.Category,
		Amount:   entry.Amount,
		Err:      err,
	}
}

func sumAmounts(c types.Currency, a, b string) (string, error) {
	x, err := ParseAmount(c, a)
	if err != nil {
		return "", err
	}
	y, err := ParseAmount(c, b)
	if err != nil {
		return "", err
	}
	return FormatAmount(c, x.Add(y)), nil
}
