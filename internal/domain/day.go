package domain

import (
	"fmt"
	"time"
)

// DayLayout is the on-disk and wire format of a Day.
const DayLayout = time.DateOnly

// Day is a calendar day in YYYY-MM-DD form. Two days are equal when their
// strings are equal; the ISO form also sorts chronologically.
type Day string

// ParseDay validates s as a calendar day.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", fmt.Errorf("parse day %q: %w", s, err)
	}
	return Day(t.Format(DayLayout)), nil
}

// DayOf returns the calendar day of t as observed in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	return Day(t.In(loc).Format(DayLayout))
}

// Time returns midnight UTC of d. Invalid days yield the zero time.
func (d Day) Time() time.Time {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the day n calendar days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	t := d.Time()
	if t.IsZero() {
		return d
	}
	return Day(t.AddDate(0, 0, n).Format(DayLayout))
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool { return d < other }

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool { return d > other }

// Valid reports whether d parses as a calendar day.
func (d Day) Valid() bool {
	_, err := time.Parse(DayLayout, string(d))
	return err == nil
}

func (d Day) String() string { return string(d) }

// Clock yields the current instant. Services take one so tests can pin "today".
type Clock func() time.Time
