package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/meenmo/ratecurve/utils"
)

// TimeUnit is the unit of a Period.
type TimeUnit int

const (
	Days TimeUnit = iota
	Weeks
	Months
	Years
)

// Period is a tenor such as 2D, 1W, 6M or 10Y.
type Period struct {
	Length int
	Unit   TimeUnit
}

func (p Period) String() string {
	suffix := map[TimeUnit]string{Days: "D", Weeks: "W", Months: "M", Years: "Y"}[p.Unit]
	return strconv.Itoa(p.Length) + suffix
}

// Months converts month/year periods to a month count.
func (p Period) Months() (int, error) {
	switch p.Unit {
	case Months:
		return p.Length, nil
	case Years:
		return 12 * p.Length, nil
	}
	return 0, fmt.Errorf("Period.Months: %s is not a month multiple", p)
}

// ParsePeriod converts tenor strings like "1W", "6M", "10Y".
func ParsePeriod(s string) (Period, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Period{}, fmt.Errorf("ParsePeriod: invalid tenor %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Period{}, fmt.Errorf("ParsePeriod: invalid tenor %q: %w", s, err)
	}
	var unit TimeUnit
	switch s[len(s)-1] {
	case 'D':
		unit = Days
	case 'W':
		unit = Weeks
	case 'M':
		unit = Months
	case 'Y':
		unit = Years
	default:
		return Period{}, fmt.Errorf("ParsePeriod: unknown unit in %q", s)
	}
	return Period{Length: n, Unit: unit}, nil
}

// MustParsePeriod is ParsePeriod for literals known to be valid.
func MustParsePeriod(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Advance moves date by p on cal. Day periods count business days; other
// periods move calendar time and then roll with conv. With endOfMonth set, a
// start on the last business day of its month lands on the last business day
// of the target month.
func Advance(cal CalendarID, date time.Time, p Period, conv BusinessDayConvention, endOfMonth bool) time.Time {
	switch p.Unit {
	case Days:
		return AddBusinessDays(cal, date, p.Length)
	case Weeks:
		return AdjustBy(cal, date.AddDate(0, 0, 7*p.Length), conv)
	}
	months, _ := p.Months()
	d := utils.AddMonth(date, months)
	if endOfMonth && IsEndOfMonth(cal, date) {
		return LastBusinessDayOfMonth(cal, d)
	}
	return AdjustBy(cal, d, conv)
}
