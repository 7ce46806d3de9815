// Package dates normalizes the heterogeneous date strings found in the
// legacy CMMS tables into canonical calendar dates. Malformed input is an
// absence of data, never an error: callers get a false second return and
// must treat it as "no date on record".
package dates

import (
	"strconv"
	"strings"
	"time"
)

// Parse normalizes an arbitrary date string into a midnight-UTC calendar
// date. Accepted shapes: ISO "2006-01-02", and month/day/year with "/" or
// "-" separators and 2- or 4-digit years. Two-digit years below 50 map to
// 20xx, 50 and above to 19xx.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	sep := "/"
	if !strings.Contains(s, "/") {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return time.Time{}, false
	}

	a, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	c, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}

	var year, month, day int
	if len(strings.TrimSpace(parts[0])) == 4 {
		// Canonical year-first form.
		year, month, day = a, b, c
	} else {
		month, day = a, b
		year = expandYear(c)
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range days (Feb 31 -> Mar 3); reject those.
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

func expandYear(y int) int {
	if y >= 100 {
		return y
	}
	if y < 50 {
		return 2000 + y
	}
	return 1900 + y
}

// Midnight truncates t to its UTC calendar date.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from a to b (positive when b
// is later).
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)) / (24 * time.Hour))
}
