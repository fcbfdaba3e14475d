// utils/dates.go
package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// BeginningOfWeek returns the preceding Sunday at midnight.
func BeginningOfWeek(t time.Time) time.Time {
	day := BeginningOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and keeps only the calendar date.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// DateOf returns the calendar date of t as midnight UTC, the form scheduled
// dates are stored in.
func DateOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
