package period

import (
	"fmt"
	"time"
)

const layoutYearMonth = "2006-01"

// Period identifies one monthly billing cycle.
//
// Periods are totally ordered through Index (year*12 + month), which keeps
// comparisons and neighbor computation free of calendar arithmetic.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Valid reports whether the month component is in range.
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12
}

// Index maps the period onto a linear month axis.
func (p Period) Index() int {
	return p.Year*12 + p.Month
}

// FromIndex inverts Index.
func FromIndex(idx int) Period {
	return Period{Year: (idx - 1) / 12, Month: (idx-1)%12 + 1}
}

// FromTime returns the period containing t.
func FromTime(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// Next returns the following period, rolling over the year boundary.
func (p Period) Next() Period {
	return FromIndex(p.Index() + 1)
}

// Prev returns the preceding period.
func (p Period) Prev() Period {
	return FromIndex(p.Index() - 1)
}

// Before reports whether p is strictly earlier than q.
func (p Period) Before(q Period) bool {
	return p.Index() < q.Index()
}

// After reports whether p is strictly later than q.
func (p Period) After(q Period) bool {
	return p.Index() > q.Index()
}

func (p Period) String() string {
	return fmt.Sprintf("%d/%d", p.Month, p.Year)
}

// Parse accepts a "YYYY-MM" value.
func Parse(value string) (Period, error) {
	t, err := time.Parse(layoutYearMonth, value)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q, expected YYYY-MM", value)
	}
	return FromTime(t), nil
}
