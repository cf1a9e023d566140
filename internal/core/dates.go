package core

import "time"

// DateFormat is the ISO-8601 day format used everywhere a date leaves the
// process (CSV export, JSON payloads, log fields).
const DateFormat = "2006-01-02"

// Midnight truncates a timestamp to the start of its day in UTC. Due-date
// comparisons in the scheduler are date-only, so both sides are truncated
// before comparing.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// EndOfMonth returns the last day of t's calendar month at midnight UTC.
func EndOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// SameMonth reports whether two timestamps fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
