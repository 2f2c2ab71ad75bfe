package core

import "time"

// Period is a half-open date range [Start, End) used to scope monthly
// aggregation queries. A transaction dated exactly at Start is included,
// one dated exactly at End is not.
type Period struct {
	Start time.Time
	End   time.Time
}

// CurrentMonth returns the period covering the month of now, from the
// first of the month up to (and excluding) the first of the next month.
func CurrentMonth(now time.Time) Period {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Period{
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}
