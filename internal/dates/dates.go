// Package dates works with calendar days written as ISO strings (YYYY-MM-DD).
//
// A date string names a day on the user's local calendar. Converting an
// instant to a date uses time.Local; arithmetic on date strings is done in
// UTC so that DST transitions never shift a day.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layout is the ISO calendar-day layout.
const Layout = "2006-01-02"

// Today returns the local calendar day containing now.
func Today(now time.Time) string {
	return now.In(time.Local).Format(Layout)
}

// Parse parses an ISO date into midnight UTC of that day.
func Parse(date string) (time.Time, error) {
	t, err := time.Parse(Layout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", date, err)
	}
	return t, nil
}

// Valid reports whether date is a well-formed ISO date.
func Valid(date string) bool {
	_, err := time.Parse(Layout, date)
	return err == nil
}

// AddDays shifts date by n days. Malformed input yields "".
func AddDays(date string, n int) string {
	t, err := Parse(date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, n).Format(Layout)
}

// DaysBetween returns to-from in whole days.
func DaysBetween(from, to string) (int, bool) {
	a, err := Parse(from)
	if err != nil {
		return 0, false
	}
	b, err := Parse(to)
	if err != nil {
		return 0, false
	}
	return int(b.Sub(a).Hours() / 24), true
}

// Weekday returns the day of the week of date.
func Weekday(date string) (time.Weekday, bool) {
	t, err := Parse(date)
	if err != nil {
		return 0, false
	}
	return t.Weekday(), true
}

// DayName returns the English weekday name of date, or "" if malformed.
func DayName(date string) string {
	wd, ok := Weekday(date)
	if !ok {
		return ""
	}
	return wd.String()
}

// DaysInMonth returns the number of days in the month of date.
func DaysInMonth(date string) int {
	t, err := Parse(date)
	if err != nil {
		return 0
	}
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WeekBounds returns the first and last day of the week containing date.
func WeekBounds(date string, weekStart time.Weekday) (string, string) {
	wd, ok := Weekday(date)
	if !ok {
		return "", ""
	}
	offset := (int(wd) - int(weekStart) + 7) % 7
	first := AddDays(date, -offset)
	return first, AddDays(first, 6)
}

// MonthBounds returns the first and last day of the month containing date.
func MonthBounds(date string) (string, string) {
	t, err := Parse(date)
	if err != nil {
		return "", ""
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(Layout), last.Format(Layout)
}

// Range returns every day from first to last inclusive.
// It is empty when either bound is malformed or last precedes first.
func Range(first, last string) []string {
	n, ok := DaysBetween(first, last)
	if !ok || n < 0 {
		return nil
	}
	out := make([]string, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, AddDays(first, i))
	}
	return out
}

// ParseWeekStart maps "sunday" or "monday" to a weekday.
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	default:
		return time.Sunday, fmt.Errorf("invalid week start %q (valid: sunday, monday)", s)
	}
}

// Resolve turns user input into a date. It accepts an ISO date, "today",
// "yesterday", "tomorrow", or a signed day offset such as "+3" or "-2".
func Resolve(input string, now time.Time) (string, error) {
	today := Today(now)
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "", "today":
		return today, nil
	case "yesterday":
		return AddDays(today, -1), nil
	case "tomorrow":
		return AddDays(today, 1), nil
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		n, err := strconv.Atoi(s)
		if err != nil {
			return "", fmt.Errorf("invalid day offset %q", input)
		}
		return AddDays(today, n), nil
	}
	if _, err := Parse(s); err != nil {
		return "", err
	}
	return s, nil
}
