package calendar

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

type holidaySet map[string]struct{}

// Holiday sets are derived from rules and memoised per calendar and year.
var holidayCache = cache.New(cache.NoExpiration, 0)

// IsHoliday reports whether t is a rule-based holiday of cal. Weekends are not holidays.
func IsHoliday(cal CalendarID, t time.Time) bool {
	_, ok := holidaysFor(cal, t.Year())[t.Format("2006-01-02")]
	return ok
}

// Holidays lists the holidays of cal falling on weekdays between from and to inclusive.
func Holidays(cal CalendarID, from, to time.Time) []time.Time {
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !isWeekend(d) && IsHoliday(cal, d) {
			out = append(out, d)
		}
	}
	return out
}

func holidaysFor(cal CalendarID, year int) holidaySet {
	key := fmt.Sprintf("%s:%d", cal, year)
	if v, ok := holidayCache.Get(key); ok {
		return v.(holidaySet)
	}
	var days []time.Time
	switch cal {
	case TARGET:
		days = targetHolidays(year)
	case USD:
		days = usGovernmentBondHolidays(year)
	}
	set := make(holidaySet, len(days))
	for _, d := range days {
		set[d.Format("2006-01-02")] = struct{}{}
	}
	holidayCache.Set(key, set, cache.NoExpiration)
	return set
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// EasterSunday uses the anonymous Gregorian algorithm.
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	dd := (h+l-7*m+114)%31 + 1
	return day(year, time.Month(month), dd)
}

func targetHolidays(year int) []time.Time {
	easter := EasterSunday(year)
	days := []time.Time{
		day(year, time.January, 1),
		day(year, time.December, 25),
		day(year, time.December, 26),
	}
	if year >= 2000 {
		days = append(days,
			easter.AddDate(0, 0, -2),
			easter.AddDate(0, 0, 1),
			day(year, time.May, 1),
		)
	}
	if year == 1998 || year == 1999 || year == 2001 {
		days = append(days, day(year, time.December, 31))
	}
	return days
}

// nthWeekday returns the n-th given weekday of month; n < 0 counts from the end.
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	if n > 0 {
		first := day(year, month, 1)
		offset := (int(wd) - int(first.Weekday()) + 7) % 7
		return first.AddDate(0, 0, offset+7*(n-1))
	}
	last := day(year, month+1, 0)
	offset := (int(last.Weekday()) - int(wd) + 7) % 7
	return last.AddDate(0, 0, -offset+7*(n+1))
}

// observed moves Saturday holidays to Friday and Sunday holidays to Monday.
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

func usGovernmentBondHolidays(year int) []time.Time {
	days := []time.Time{
		nthWeekday(year, time.February, time.Monday, 3),
		EasterSunday(year).AddDate(0, 0, -2),
		nthWeekday(year, time.May, time.Monday, -1),
		observed(day(year, time.July, 4)),
		nthWeekday(year, time.September, time.Monday, 1),
		nthWeekday(year, time.October, time.Monday, 2),
		observed(day(year, time.November, 11)),
		nthWeekday(year, time.November, time.Thursday, 4),
		observed(day(year, time.December, 25)),
	}
	// New Year's Day on a Saturday is not moved back into the prior year.
	if ny := day(year, time.January, 1); ny.Weekday() == time.Sunday {
		days = append(days, ny.AddDate(0, 0, 1))
	} else {
		days = append(days, ny)
	}
	if year >= 1983 {
		days = append(days, nthWeekday(year, time.January, time.Monday, 3))
	}
	if year >= 2022 {
		days = append(days, observed(day(year, time.June, 19)))
	}
	return days
}
