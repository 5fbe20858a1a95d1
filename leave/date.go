/*
date.go - Civil dates and chargeable-day counting

PURPOSE:
  Absences are ranges of calendar dates, never instants. This file defines
  Date, a timezone-free civil date, plus the day-counting rules that decide
  how many days a range charges against a balance.

KEY CONCEPTS:
  - Date: a Y/M/D triple pinned to UTC midnight. Constructed from components
    or from ISO "YYYY-MM-DD" strings; never from timezone-sensitive parsing
    that could shift a date across a day boundary.
  - CountMode: business_days (skip Sat/Sun) vs calendar_days (count all).
  - Year clamping: intersecting a range with a calendar year before counting.

COUNTING RULES:
  CountChargeableDays(mar10, mar14, CountBusinessDays) // Mon-Fri = 5
  CountChargeableDays(mar10, mar16, CountBusinessDays) // spans weekend = 5
  CountChargeableDays(mar10, mar16, CountCalendarDays) // = 7

  A range with to < from counts 0; range validation belongs to callers.

SEE ALSO:
  - types.go: AbsenceRecord, the consumer of these ranges
  - policy/catalog.go: which counting strategy each absence type uses
*/
package leave

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Civil calendar date (no time, no timezone)
// =============================================================================

// Date is a calendar date at UTC midnight. The zero value is "no date".
type Date struct {
	Time time.Time
}

// NewDate constructs a Date from components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(iso string) (Date, error) {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", iso, err)
	}
	return Date{Time: t}, nil
}

// MustParseDate parses an ISO date or panics. For tests and static tables.
func MustParseDate(iso string) Date {
	d, err := ParseDate(iso)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{Time: d.Time.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ISO renders the date as "YYYY-MM-DD". Lexicographic order on ISO strings
// matches chronological order, which the overlap detector relies on.
func (d Date) ISO() string    { return d.Time.Format("2006-01-02") }
func (d Date) String() string { return d.ISO() }

// DaysBetween returns the signed number of days from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

// Year boundaries
func StartOfYear(year int) Date { return NewDate(year, time.January, 1) }
func EndOfYear(year int) Date   { return NewDate(year, time.December, 31) }

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }

func EndOfMonth(year int, month time.Month) Date {
	return NewDate(year, month+1, 1).AddDays(-1)
}

// =============================================================================
// CHARGEABLE-DAY COUNTING
// =============================================================================

// CountMode selects which days in a range charge against a balance.
type CountMode string

const (
	CountBusinessDays CountMode = "business_days"
	CountCalendarDays CountMode = "calendar_days"
)

// ParseCountMode validates a count-mode string.
func ParseCountMode(s string) (CountMode, error) {
	switch CountMode(s) {
	case CountBusinessDays, CountCalendarDays:
		return CountMode(s), nil
	}
	return "", fmt.Errorf("unknown count mode %q", s)
}

// CountChargeableDays counts the days in [from, to] that charge under the
// given mode. Returns 0 when to < from; rejecting inverted ranges is the
// caller's job, not this function's.
func CountChargeableDays(from, to Date, mode CountMode) int {
	if to.Before(from) {
		return 0
	}
	days := 0
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		if mode == CountCalendarDays || !d.IsWeekend() {
			days++
		}
	}
	return days
}

// CalendarDaysInclusive counts every day in [from, to], floored at 1.
// Used by day-denominated policies that charge weekends too.
func CalendarDaysInclusive(from, to Date) int {
	n := DaysBetween(from, to) + 1
	if n < 1 {
		return 1
	}
	return n
}

// ClampRangeToYear intersects [from, to] with the given calendar year.
// The third return is false when the range does not touch the year at all.
func ClampRangeToYear(from, to Date, year int) (Date, Date, bool) {
	lo := StartOfYear(year)
	hi := EndOfYear(year)
	if from.After(lo) {
		lo = from
	}
	if to.Before(hi) {
		hi = to
	}
	if hi.Before(lo) {
		return Date{}, Date{}, false
	}
	return lo, hi, true
}

// OverlapsMonth reports whether [from, to] touches the given calendar month.
// Half-open comparison: the record's exclusive end must fall after the month
// start and its start before the month's exclusive end.
func OverlapsMonth(from, to Date, year int, month time.Month) bool {
	monthStart := StartOfMonth(year, month)
	monthEnd := monthStart.AddMonths(1) // exclusive
	return from.Before(monthEnd) && to.AddDays(1).After(monthStart)
}
