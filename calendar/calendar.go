package calendar

import (
	"fmt"
	"time"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	TARGET       CalendarID = "TARGET"
	USD          CalendarID = "USD"
	WeekendsOnly CalendarID = "WeekendsOnly"
	NullCalendar CalendarID = "Null"
)

// ParseCalendar maps a name to a supported calendar.
func ParseCalendar(s string) (CalendarID, error) {
	switch CalendarID(s) {
	case TARGET, USD, WeekendsOnly, NullCalendar:
		return CalendarID(s), nil
	}
	return "", fmt.Errorf("ParseCalendar: unknown calendar %q", s)
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if cal == NullCalendar {
		return true
	}
	if isWeekend(t) {
		return false
	}
	return !IsHoliday(cal, t)
}

// BusinessDayConvention describes how a non-business day is rolled.
type BusinessDayConvention int

const (
	Following BusinessDayConvention = iota
	ModifiedFollowing
	Preceding
	ModifiedPreceding
	Unadjusted
)

func (c BusinessDayConvention) String() string {
	switch c {
	case Following:
		return "Following"
	case ModifiedFollowing:
		return "ModifiedFollowing"
	case Preceding:
		return "Preceding"
	case ModifiedPreceding:
		return "ModifiedPreceding"
	case Unadjusted:
		return "Unadjusted"
	}
	return fmt.Sprintf("BusinessDayConvention(%d)", int(c))
}

// ParseConvention maps a convention name.
func ParseConvention(s string) (BusinessDayConvention, error) {
	switch s {
	case "Following", "F":
		return Following, nil
	case "ModifiedFollowing", "MF":
		return ModifiedFollowing, nil
	case "Preceding", "P":
		return Preceding, nil
	case "ModifiedPreceding", "MP":
		return ModifiedPreceding, nil
	case "Unadjusted", "U":
		return Unadjusted, nil
	}
	return 0, fmt.Errorf("ParseConvention: unknown convention %q", s)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	return AdjustBy(cal, t, ModifiedFollowing)
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	return AdjustBy(cal, t, Following)
}

// AdjustBy rolls t according to conv.
func AdjustBy(cal CalendarID, t time.Time, conv BusinessDayConvention) time.Time {
	switch conv {
	case Unadjusted:
		return t
	case Following, ModifiedFollowing:
		d := t
		for !IsBusinessDay(cal, d) {
			d = d.AddDate(0, 0, 1)
		}
		if conv == ModifiedFollowing && d.Month() != t.Month() {
			return AdjustBy(cal, t, Preceding)
		}
		return d
	case Preceding, ModifiedPreceding:
		d := t
		for !IsBusinessDay(cal, d) {
			d = d.AddDate(0, 0, -1)
		}
		if conv == ModifiedPreceding && d.Month() != t.Month() {
			return AdjustBy(cal, t, Following)
		}
		return d
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
// With n == 0 the date is rolled forward to a business day.
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	if n == 0 {
		return AdjustFollowing(cal, t)
	}
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

// BusinessDaysBetween counts business days in [from, to).
func BusinessDaysBetween(cal CalendarID, from, to time.Time) int {
	n := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(cal, d) {
			n++
		}
	}
	return n
}

// LastBusinessDayOfMonth returns the last business day of the month containing t.
func LastBusinessDayOfMonth(cal CalendarID, t time.Time) time.Time {
	nextMonth := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return AddBusinessDays(cal, nextMonth, -1)
}

// IsEndOfMonth checks if t is the last business day of its month.
func IsEndOfMonth(cal CalendarID, t time.Time) bool {
	return t.Equal(LastBusinessDayOfMonth(cal, t))
}
