package domain

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned before any aggregation runs when the
// requested range is inverted or required entity IDs are missing.
var ErrInvalidRange = errors.New("invalid report range")

// DateFormat is the calendar-date key format used throughout the reports.
const DateFormat = "2006-01-02"

// DateRange is a calendar-date range in a report timezone. Both ends are
// inclusive: Start means the start of its day, End means the end of its
// day (23:59:59) in Loc.
type DateRange struct {
	Start time.Time
	End   time.Time
	Loc   *time.Location
}

// NewDateRange builds a range in loc and validates it. A nil loc means UTC.
func NewDateRange(start, end time.Time, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := DateRange{Start: start.In(loc), End: end.In(loc), Loc: loc}
	if r.End.Before(r.Start) {
		return DateRange{}, ErrInvalidRange
	}
	return r, nil
}

// LowerBound returns the first instant inside the range: the start of
// Start's calendar day in the report timezone.
func (r DateRange) LowerBound() time.Time {
	y, m, d := r.Start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.Loc)
}

// UpperBound returns the first instant after the range: the start of the
// day following End's calendar day. Callers filter with end_at < UpperBound,
// which makes the declared end date inclusive up to 23:59:59.
func (r DateRange) UpperBound() time.Time {
	y, m, d := r.End.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.Loc).AddDate(0, 0, 1)
}

// Dates returns every calendar date from Start to End inclusive, formatted
// as YYYY-MM-DD in the report timezone. Computed once per request and
// shared by all gap-fill operations within it.
func (r DateRange) Dates() []string {
	var dates []string
	y, m, d := r.Start.Date()
	cur := time.Date(y, m, d, 0, 0, 0, 0, r.Loc)
	last := r.End.In(r.Loc).Format(DateFormat)
	for {
		key := cur.Format(DateFormat)
		dates = append(dates, key)
		if key == last {
			return dates
		}
		cur = cur.AddDate(0, 0, 1)
	}
}

// Day returns the calendar-date key of t in the report timezone.
func (r DateRange) Day(t time.Time) string {
	return t.In(r.Loc).Format(DateFormat)
}
