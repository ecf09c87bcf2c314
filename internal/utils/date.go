package utils

import (
	"fmt"
	"strings"
	"time"
)

type DateFormat string

const (
	FormatISO8601Date DateFormat = time.DateOnly
	FormatRFC3339     DateFormat = time.RFC3339
	FormatFinnishDate DateFormat = "2.1.2006"
)

var supportedDateFormats = []DateFormat{
	FormatISO8601Date,
	FormatRFC3339,
	FormatFinnishDate,
}

// ParseDate accepts an ISO date, an RFC3339 timestamp or a Finnish d.m.yyyy
// date and returns the calendar date at UTC midnight.
func ParseDate(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}

	for _, format := range supportedDateFormats {
		parsed, err := time.Parse(string(format), input)
		if err == nil {
			return NormalizeDate(parsed), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date format %q, expected YYYY-MM-DD", input)
}

// NormalizeDate drops the clock part, keeping the calendar date as seen in
// the value's own location.
func NormalizeDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func Today() time.Time {
	return NormalizeDate(time.Now())
}

func FormatDate(t time.Time) string {
	return t.Format(string(FormatISO8601Date))
}
