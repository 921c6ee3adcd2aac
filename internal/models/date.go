package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the only accepted wire and storage form for dates.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar day in zero-padded YYYY-MM-DD form.
// Values of this type are validated on construction, so two Dates order
// chronologically when compared as strings.
type Date string

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Format(DateLayout) != s {
		return "", fmt.Errorf("%w %q: want YYYY-MM-DD", ErrInvalidDate, s)
	}
	return Date(s), nil
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the Date for the calendar day of t.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// NewDate returns the Date for year, month, day, normalizing overflow.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Valid reports whether d is a well-formed date.
func (d Date) Valid() bool {
	_, err := ParseDate(string(d))
	return err == nil
}

// Time returns midnight UTC of d. An invalid Date yields the zero time.
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

// Year returns the year of d.
func (d Date) Year() int { return d.Time().Year() }

// Month returns the month of d.
func (d Date) Month() time.Month { return d.Time().Month() }

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// In reports whether d falls in the given period.
func (d Date) In(p Period) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

func (d Date) String() string { return string(d) }

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Period identifies a calendar month.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

var ErrInvalidPeriod = errors.New("invalid period")

// NewPeriod validates year and month.
func NewPeriod(year, month int) (Period, error) {
	if year < 1900 || year > 9999 || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: year=%d month=%d", ErrInvalidPeriod, year, month)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// First returns the first day of the period.
func (p Period) First() Date { return NewDate(p.Year, p.Month, 1) }

// Last returns the last day of the period.
func (p Period) Last() Date { return NewDate(p.Year, p.Month+1, 0) }

// Prev returns the preceding month.
func (p Period) Prev() Period {
	t := time.Date(p.Year, p.Month-1, 1, 0, 0, 0, 0, time.UTC)
	return PeriodOf(t)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
