package model

import (
	"errors"
	"strings"
	"time"
)

const (
	// TimestampLayout is MM/DD/YYYY h:mm AM/PM, local zone.
	TimestampLayout = "01/02/2006 3:04 PM"
	// DateLayout is MM/DD/YYYY.
	DateLayout = "01/02/2006"
)

var ErrInvalidDate = errors.New("invalid date, use MM/DD/YYYY")
var ErrInvalidTimestamp = errors.New("invalid timestamp, use MM/DD/YYYY h:mm AM/PM")

// FormatTimestamp renders t in TimestampLayout; ParseTimestamp reads it back.
// The layout carries no zone offset, so the repeated hour of a DST fall-back
// night formats to the same text for both instants.
func FormatTimestamp(t time.Time) string {
	return t.In(time.Local).Format(TimestampLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	s = strings.ToUpper(strings.Join(strings.Fields(s), " "))
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidTimestamp
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// DateOf drops the time of day, keeping t's calendar day in the local zone.
func DateOf(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// TruncateMinute drops seconds while keeping the instant and location, so
// a wall clock that repeats on a DST fall-back night maps to the right hour.
func TruncateMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}
