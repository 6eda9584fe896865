package calendar

import (
	"fmt"
	"time"
)

// IsIMMDate reports whether d is the third Wednesday of its month. With
// mainCycle only March, June, September and December qualify.
func IsIMMDate(d time.Time, mainCycle bool) bool {
	if d.Weekday() != time.Wednesday || d.Day() < 15 || d.Day() > 21 {
		return false
	}
	return !mainCycle || isQuarterMonth(d.Month())
}

// NextIMMDate returns the first IMM date strictly after d.
func NextIMMDate(d time.Time, mainCycle bool) time.Time {
	y, m := d.Year(), d.Month()
	for {
		if !mainCycle || isQuarterMonth(m) {
			c := nthWeekday(y, m, time.Wednesday, 3)
			if c.After(d) {
				return c
			}
		}
		m++
		if m > time.December {
			m = time.January
			y++
		}
	}
}

// IsASXDate reports whether d is the second Friday of its month.
func IsASXDate(d time.Time, mainCycle bool) bool {
	if d.Weekday() != time.Friday || d.Day() < 8 || d.Day() > 14 {
		return false
	}
	return !mainCycle || isQuarterMonth(d.Month())
}

// NextASXDate returns the first ASX date strictly after d.
func NextASXDate(d time.Time, mainCycle bool) time.Time {
	y, m := d.Year(), d.Month()
	for {
		if !mainCycle || isQuarterMonth(m) {
			c := nthWeekday(y, m, time.Friday, 2)
			if c.After(d) {
				return c
			}
		}
		m++
		if m > time.December {
			m = time.January
			y++
		}
	}
}

// IMMCode returns the two-character contract code such as "H5".
func IMMCode(d time.Time) (string, error) {
	if !IsIMMDate(d, false) {
		return "", fmt.Errorf("IMMCode: %s is not an IMM date", d.Format("2006-01-02"))
	}
	const months = "FGHJKMNQUVXZ"
	return fmt.Sprintf("%c%d", months[d.Month()-1], d.Year()%10), nil
}

func isQuarterMonth(m time.Month) bool {
	return m == time.March || m == time.June || m == time.September || m == time.December
}
