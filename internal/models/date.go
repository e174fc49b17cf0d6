package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// Date is a civil calendar date without a time of day.
// The zero value is not a valid booking date.
type Date struct {
	t time.Time
}

// NewDate builds a Date; out-of-range values are normalized like time.Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Year() int { return d.t.Year() }

func (d Date) Month() time.Month { return d.t.Month() }

func (d Date) Day() int { return d.t.Day() }

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time { return d.t }

// AddDays performs calendar arithmetic across month and year boundaries.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) After(o Date) bool { return d.t.After(o.t) }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// DaysUntil returns the number of calendar days from d to o (negative if o is earlier).
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t) / (24 * time.Hour))
}

// Format formats the date with a time layout.
func (d Date) Format(layout string) string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(layout)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM grouping key; lexicographic order is calendar order.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
