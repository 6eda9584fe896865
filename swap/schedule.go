package swap

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/utils"
)

// GenerateSchedule builds the accrual periods of a leg between effective and maturity.
//
// Regular dates are counted from the anchor (maturity for ScheduleBackward,
// effective for ScheduleForward) in whole multiples of the leg frequency, so
// month-end clipping never drifts. Any stub lands at the opposite end. The last
// date is rolled with TerminationConvention, every other date with Convention.
func GenerateSchedule(effective, maturity time.Time, leg market.LegConvention) ([]SchedulePeriod, error) {
	if !maturity.After(effective) {
		return nil, fmt.Errorf("GenerateSchedule: maturity %s not after effective %s", utils.FormatDate(maturity), utils.FormatDate(effective))
	}
	if leg.Frequency < 0 {
		return nil, fmt.Errorf("GenerateSchedule: unsupported pay frequency %d", leg.Frequency)
	}

	var unadjusted []time.Time
	switch {
	case leg.Frequency == market.FreqOnce:
		unadjusted = []time.Time{effective, maturity}
	case leg.Direction == market.ScheduleForward:
		unadjusted = generateForward(effective, maturity, leg)
	default:
		unadjusted = generateBackward(effective, maturity, leg)
	}

	adjusted := make([]time.Time, 0, len(unadjusted))
	for i, d := range unadjusted {
		conv := leg.Convention
		if i == len(unadjusted)-1 {
			conv = leg.TerminationConvention
		}
		a := calendar.AdjustBy(leg.Calendar, d, conv)
		if len(adjusted) > 0 && !a.After(adjusted[len(adjusted)-1]) {
			continue
		}
		adjusted = append(adjusted, a)
	}
	if len(adjusted) < 2 {
		return nil, fmt.Errorf("GenerateSchedule: empty schedule between %s and %s", utils.FormatDate(effective), utils.FormatDate(maturity))
	}

	periods := make([]SchedulePeriod, 0, len(adjusted)-1)
	for i := 0; i < len(adjusted)-1; i++ {
		start, end := adjusted[i], adjusted[i+1]
		pay := end
		if leg.PayDelayDays != 0 {
			pay = calendar.AddBusinessDays(leg.Calendar, end, leg.PayDelayDays)
		}
		periods = append(periods, SchedulePeriod{
			StartDate:   start,
			EndDate:     end,
			PayDate:     pay,
			AccrualDays: utils.Days(start, end),
		})
	}
	return periods, nil
}

func rollMonths(anchor time.Time, months int, leg market.LegConvention) time.Time {
	d := utils.AddMonth(anchor, months)
	if leg.EndOfMonth && anchor.Equal(utils.EndOfMonth(anchor)) {
		return utils.EndOfMonth(d)
	}
	return d
}

func generateBackward(effective, maturity time.Time, leg market.LegConvention) []time.Time {
	months := int(leg.Frequency)
	dates := []time.Time{maturity}
	for k := 1; ; k++ {
		d := rollMonths(maturity, -k*months, leg)
		if !d.After(effective) {
			break
		}
		dates = append(dates, d)
	}
	dates = append(dates, effective)
	for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
		dates[i], dates[j] = dates[j], dates[i]
	}
	return dates
}

func generateForward(effective, maturity time.Time, leg market.LegConvention) []time.Time {
	months := int(leg.Frequency)
	dates := []time.Time{effective}
	for k := 1; ; k++ {
		d := rollMonths(effective, k*months, leg)
		if !d.Before(maturity) {
			break
		}
		dates = append(dates, d)
	}
	return append(dates, maturity)
}
