package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfDay truncates ts to midnight in loc.
func StartOfDay(ts time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := ts.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// OnDate reports whether ts, read in loc, falls on the calendar date of date. The date is
// read in its own location, so a date-only value decoded as UTC midnight still matches.
func OnDate(date, ts time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	y1, m1, d1 := date.Date()
	y2, m2, d2 := ts.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
