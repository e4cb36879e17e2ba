package timeutil

import "time"

const dayKeyLayout = "2006-01-02"

// DayKey returns the canonical YYYY-MM-DD bucket key for an instant,
// using the instant's own calendar day.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// StartOfWeek returns the start of the calendar week containing t.
// Weeks are Sunday-anchored.
func StartOfWeek(t time.Time) time.Time {
	sd := StartOfDay(t)
	return sd.AddDate(0, 0, -int(sd.Weekday()))
}

func EndOfWeek(t time.Time) time.Time {
	return EndOfDay(StartOfWeek(t).AddDate(0, 0, 6))
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time) time.Time {
	return EndOfDay(StartOfMonth(t).AddDate(0, 1, -1))
}

// DaysBetween returns the calendar-day difference a - b. It can be negative.
// Both instants are reduced to their calendar date and re-anchored in UTC, so
// DST transitions never produce off-by-one day counts.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(au.Sub(bu).Hours() / 24)
}
