package model

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

// Period identifies one monthly reporting cycle.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewPeriod validates year and month and returns the Period.
func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate rejects months outside 1..12 and non-positive years.
func (p Period) Validate() error {
	if p.Year <= 0 {
		return eris.Errorf("period: invalid year %d", p.Year)
	}
	if p.Month < 1 || p.Month > 12 {
		return eris.Errorf("period: invalid month %d", p.Month)
	}
	return nil
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// PreviousPeriod returns the last complete month before now, shifted back by
// lagMonths additional months.
func PreviousPeriod(now time.Time, lagMonths int) Period {
	if lagMonths < 0 {
		lagMonths = 0
	}
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -(1 + lagMonths), 0)
	return Period{Year: prev.Year(), Month: int(prev.Month())}
}
