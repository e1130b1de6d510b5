package types

import (
	"fmt"
	"time"
)

// Period is a single calendar month
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewPeriod returns the period containing t
func NewPeriod(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// Validate checks that the month is within 1..12
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("invalid month %d in period %d/%d", p.Month, p.Year, p.Month)
	}
	return nil
}

// Label formats the period as used in export headers, e.g. "2019/05"
func (p Period) Label() string {
	return fmt.Sprintf("%d/%02d", p.Year, p.Month)
}

// Compact formats the period as used in export file names, e.g. "201905"
func (p Period) Compact() string {
	return fmt.Sprintf("%d%02d", p.Year, p.Month)
}

func (p Period) String() string {
	return p.Label()
}

// Next returns the following month
func (p Period) Next() Period {
	if p.Month >= 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p is strictly earlier than other
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// Start returns midnight UTC on the first day of the month
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC on the first day of the following month
func (p Period) End() time.Time {
	return p.Next().Start()
}
