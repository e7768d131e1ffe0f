// Package period normalizes calendar dates into the day, week and month keys
// that budgets and rollups are bucketed by.
//
// Every date is handled as a local calendar day anchored at 12:00, so adding or
// subtracting days never lands on the wrong side of a DST transition.
package period

import (
	"strings"
	"time"
)

// Layout is the canonical date key format.
const Layout = "2006-01-02"

// MonthLayout is the month bucket key format.
const MonthLayout = "2006-01"

const anchorHour = 12

// Parse reads a YYYY-MM-DD date (a trailing time component is ignored) and
// returns it anchored at local noon. ok is false for empty or malformed input.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(Layout) && (s[len(Layout)] == 'T' || s[len(Layout)] == ' ') {
		s = s[:len(Layout)]
	}
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return Day(t), true
}

// Day returns t's local calendar day anchored at noon.
func Day(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), anchorHour, 0, 0, 0, time.Local)
}

// Format renders a date as its YYYY-MM-DD key.
func Format(t time.Time) string {
	return t.In(time.Local).Format(Layout)
}

// AddDays moves a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	d := Day(t)
	return time.Date(d.Year(), d.Month(), d.Day()+n, anchorHour, 0, 0, 0, time.Local)
}

// WeekStart returns the Monday on or before t. Weeks run Monday to Sunday.
func WeekStart(t time.Time) time.Time {
	d := Day(t)
	offset := int(d.Weekday()) - 1
	if d.Weekday() == time.Sunday {
		offset = 6
	}
	return AddDays(d, -offset)
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	d := Day(t)
	return time.Date(d.Year(), d.Month(), 1, anchorHour, 0, 0, 0, time.Local)
}

// PrevMonthStart returns the first day of the month before t's month.
func PrevMonthStart(t time.Time) time.Time {
	d := MonthStart(t)
	return time.Date(d.Year(), d.Month()-1, 1, anchorHour, 0, 0, 0, time.Local)
}

// MonthKey returns t's YYYY-MM bucket key.
func MonthKey(t time.Time) string {
	return t.In(time.Local).Format(MonthLayout)
}

// WeekStartKey maps a date key to the key of its week's Monday.
func WeekStartKey(s string) (string, bool) {
	t, ok := Parse(s)
	if !ok {
		return "", false
	}
	return Format(WeekStart(t)), true
}

// MonthStartKey maps a date key to the key of the first of its month.
func MonthStartKey(s string) (string, bool) {
	t, ok := Parse(s)
	if !ok {
		return "", false
	}
	return Format(MonthStart(t)), true
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	a, b = Day(a), Day(b)
	return a.Year() == b.Year() && a.Month() == b.Month()
}
