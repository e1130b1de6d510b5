package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lox/ledger-category-export/internal/types"
)

// Parse reads a month written as "2019/05", "2019-05" or "201905"
func Parse(s string) (types.Period, error) {
	s = strings.TrimSpace(s)

	var yearStr, monthStr string
	switch {
	case strings.ContainsAny(s, "/-"):
		parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
		if len(parts) != 2 {
			return types.Period{}, fmt.Errorf("invalid period %q, expected YYYY/MM", s)
		}
		yearStr, monthStr = parts[0], parts[1]
	case len(s) == 6:
		yearStr, monthStr = s[:4], s[4:]
	default:
		return types.Period{}, fmt.Errorf("invalid period %q, expected YYYY/MM", s)
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return types.Period{}, fmt.Errorf("invalid year in period %q: %w", s, err)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return types.Period{}, fmt.Errorf("invalid month in period %q: %w", s, err)
	}

	p := types.Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return types.Period{}, err
	}
	return p, nil
}

// Range returns every month from start to end inclusive
func Range(start, end types.Period) ([]types.Period, error) {
	if err := start.Validate(); err != nil {
		return nil, err
	}
	if err := end.Validate(); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %s is before start %s", end, start)
	}

	var periods []types.Period
	for p := start; !end.Before(p); p = p.Next() {
		periods = append(periods, p)
	}
	return periods, nil
}

// UntilNow returns every month from start up to and including the month containing now
func UntilNow(start types.Period, now time.Time) ([]types.Period, error) {
	return Range(start, types.NewPeriod(now))
}

// IsClosed reports whether the month has fully ended before now
func IsClosed(p types.Period, now time.Time) bool {
	return p.Before(types.NewPeriod(now))
}
