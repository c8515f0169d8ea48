package valueobject

import "time"

// DateOnly truncates t to midnight UTC of its calendar day.
// Due dates are calendar dates; all comparisons go through this.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths advances a calendar date by n months, clamping to the last day of
// the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	d := DateOnly(t)
	first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from -> to, floored.
// Negative when to is before from.
func DaysBetween(from, to time.Time) int {
	hours := to.Sub(from).Hours()
	days := int(hours / 24)
	if hours < 0 && float64(days)*24 != hours {
		days--
	}
	return days
}

// DateBefore reports whether a's calendar day is strictly before b's
func DateBefore(a, b time.Time) bool {
	return DateOnly(a).Before(DateOnly(b))
}
