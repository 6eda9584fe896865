package utils

import (
	"fmt"
	"time"
)

// DayCount names a day count convention.
type DayCount string

const (
	ACT360     DayCount = "ACT/360"
	ACT365F    DayCount = "ACT/365F"
	Thirty360  DayCount = "30/360"
	Thirty360E DayCount = "30E/360"
	ACTACT     DayCount = "ACT/ACT"
)

// ParseDayCount accepts the usual spellings of the supported conventions.
func ParseDayCount(s string) (DayCount, error) {
	switch s {
	case "ACT/360", "A360", "Actual/360":
		return ACT360, nil
	case "ACT/365F", "ACT/365", "A365F", "Actual/365 (Fixed)":
		return ACT365F, nil
	case "30/360", "30U/360", "BondBasis":
		return Thirty360, nil
	case "30E/360", "Eurobond":
		return Thirty360E, nil
	case "ACT/ACT", "ACT/ACT ISDA", "Actual/Actual":
		return ACTACT, nil
	}
	return "", fmt.Errorf("ParseDayCount: unsupported convention %q", s)
}

// DayCountDays returns the day count between start and end under dc.
func DayCountDays(start, end time.Time, dc DayCount) int {
	switch dc {
	case Thirty360:
		d1, d2 := start.Day(), end.Day()
		if d1 == 31 {
			d1 = 30
		}
		if d2 == 31 && d1 == 30 {
			d2 = 30
		}
		return thirty360Days(start, end, d1, d2)
	case Thirty360E:
		d1, d2 := start.Day(), end.Day()
		if d1 > 30 {
			d1 = 30
		}
		if d2 > 30 {
			d2 = 30
		}
		return thirty360Days(start, end, d1, d2)
	default:
		return Days(start, end)
	}
}

func thirty360Days(start, end time.Time, d1, d2 int) int {
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return 360*(y2-y1) + 30*(m2-m1) + (d2 - d1)
}

// YearFraction computes year fraction between two dates using the specified day count convention.
func YearFraction(start, end time.Time, dc DayCount) float64 {
	switch dc {
	case ACT360:
		return float64(Days(start, end)) / 360.0
	case ACT365F:
		return float64(Days(start, end)) / 365.0
	case Thirty360, Thirty360E:
		return float64(DayCountDays(start, end, dc)) / 360.0
	case ACTACT:
		return actActISDA(start, end)
	default:
		return float64(Days(start, end)) / 365.0
	}
}

func actActISDA(start, end time.Time) float64 {
	if start.Equal(end) {
		return 0
	}
	if start.After(end) {
		return -actActISDA(end, start)
	}
	y1, y2 := start.Year(), end.Year()
	basis := func(y int) float64 {
		if IsLeapYear(y) {
			return 366
		}
		return 365
	}
	sum := float64(y2-y1) - 1
	sum += float64(Days(start, Date(y1+1, time.January, 1))) / basis(y1)
	sum += float64(Days(Date(y2, time.January, 1), end)) / basis(y2)
	return sum
}
