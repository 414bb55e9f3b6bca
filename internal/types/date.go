package types

import "time"

// DateLayout is the only format dates are ever rendered in.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day or zone. The zero value is the
// invalid-date marker, which is distinct from every real date and compares
// equal only to itself.
type Date struct {
	year  int
	month time.Month
	day   int
	valid bool
}

// InvalidDate marks a date cell that could not be parsed.
var InvalidDate = Date{}

// NewDate builds a date, normalising out-of-range fields the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d, valid: true}
}

// Valid reports whether d is a real date rather than the invalid marker.
func (d Date) Valid() bool {
	return d.valid
}

// Time returns midnight UTC of d. The invalid marker maps to the zero time.
func (d Date) Time() time.Time {
	if !d.valid {
		return time.Time{}
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// String formats d as YYYY-MM-DD, or "" for the invalid marker.
func (d Date) String() string {
	if !d.valid {
		return ""
	}
	return d.Time().Format(DateLayout)
}
