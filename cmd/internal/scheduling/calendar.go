package scheduling

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by appointments and slots.
const DateLayout = "2006-01-02"

// Weekday returns the lower-case weekday name of t ("monday".."sunday").
func Weekday(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// WeekdayOf parses an ISO calendar date in the deployment's local time and
// returns its weekday name.
func WeekdayOf(date string) (string, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return "", err
	}
	return Weekday(t), nil
}

// StartOfDay drops the wall-clock part of t, keeping its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateAfter returns the ISO date that is days calendar days after anchor.
func DateAfter(anchor time.Time, days int) string {
	return StartOfDay(anchor).AddDate(0, 0, days).Format(DateLayout)
}
