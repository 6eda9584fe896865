package market

import (
	"fmt"

	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/utils"
)

// Frequency enumerates payment/reset frequencies in months.
type Frequency int

const (
	FreqAnnual    Frequency = 12
	FreqSemi      Frequency = 6
	FreqQuarterly Frequency = 3
	FreqMonthly   Frequency = 1
	FreqOnce      Frequency = 0
)

// PerYear returns the number of periods per year, zero for FreqOnce.
func (f Frequency) PerYear() int {
	if f <= 0 {
		return 0
	}
	return 12 / int(f)
}

// Period converts the frequency to a tenor.
func (f Frequency) Period() calendar.Period {
	return calendar.Period{Length: int(f), Unit: calendar.Months}
}

// ParseFrequency maps names such as "Annual" or "Semiannual".
func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "Annual", "A", "1Y":
		return FreqAnnual, nil
	case "Semiannual", "Semi", "S", "6M":
		return FreqSemi, nil
	case "Quarterly", "Q", "3M":
		return FreqQuarterly, nil
	case "Monthly", "M", "1M":
		return FreqMonthly, nil
	case "Once":
		return FreqOnce, nil
	}
	return 0, fmt.Errorf("ParseFrequency: unknown frequency %q", s)
}

// ScheduleDirection picks where regular periods are anchored.
type ScheduleDirection int

const (
	// ScheduleBackward rolls from maturity so any stub sits at the front.
	ScheduleBackward ScheduleDirection = iota
	ScheduleForward
)

// LegConvention captures the schedule and accrual settings of one leg.
type LegConvention struct {
	Frequency             Frequency
	DayCount              utils.DayCount
	Convention            calendar.BusinessDayConvention
	TerminationConvention calendar.BusinessDayConvention
	Calendar              calendar.CalendarID
	EndOfMonth            bool
	Direction             ScheduleDirection
	PayDelayDays          int
}

// EURFixedAnnual is the EUR swap fixed leg: annual 30/360, unadjusted.
var EURFixedAnnual = LegConvention{
	Frequency:             FreqAnnual,
	DayCount:              utils.Thirty360,
	Convention:            calendar.Unadjusted,
	TerminationConvention: calendar.Unadjusted,
	Calendar:              calendar.TARGET,
	Direction:             ScheduleBackward,
}

// USDFixedSemi is the USD swap fixed leg: semiannual 30/360, modified following.
var USDFixedSemi = LegConvention{
	Frequency:             FreqSemi,
	DayCount:              utils.Thirty360,
	Convention:            calendar.ModifiedFollowing,
	TerminationConvention: calendar.ModifiedFollowing,
	Calendar:              calendar.USD,
	Direction:             ScheduleBackward,
}

// FloatingLeg derives the floating leg convention that matches index.
func FloatingLeg(index *IborIndex) LegConvention {
	months, err := index.Tenor.Months()
	if err != nil {
		months = 3
	}
	return LegConvention{
		Frequency:             Frequency(months),
		DayCount:              index.DayCount,
		Convention:            index.Convention,
		TerminationConvention: index.Convention,
		Calendar:              index.Calendar,
		EndOfMonth:            index.EndOfMonth,
		Direction:             ScheduleBackward,
	}
}
