package bond

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/swap"
	"github.com/meenmo/ratecurve/utils"
)

// FixedRateBond pays a fixed coupon on an unadjusted schedule and redeems at
// maturity. Coupon is a decimal annual rate.
type FixedRateBond struct {
	SettlementDays    int
	Calendar          calendar.CalendarID
	FaceAmount        float64
	Coupon            float64
	Frequency         market.Frequency
	DayCount          utils.DayCount
	PaymentConvention calendar.BusinessDayConvention
	Redemption        float64
	IssueDate         time.Time
	MaturityDate      time.Time

	schedule  []swap.SchedulePeriod
	cashflows []Cashflow
}

// NewFixedRateBond generates the coupon schedule backward from maturity.
// Redemption is quoted per 100 of face.
func NewFixedRateBond(settlementDays int, cal calendar.CalendarID, face, coupon float64, freq market.Frequency, dc utils.DayCount, payment calendar.BusinessDayConvention, redemption float64, issue, maturity time.Time) (*FixedRateBond, error) {
	if face <= 0 {
		return nil, fmt.Errorf("NewFixedRateBond: face amount must be positive")
	}
	if freq <= 0 {
		return nil, fmt.Errorf("NewFixedRateBond: unsupported coupon frequency %d", freq)
	}
	sched, err := swap.GenerateSchedule(issue, maturity, market.LegConvention{
		Frequency:             freq,
		DayCount:              dc,
		Convention:            calendar.Unadjusted,
		TerminationConvention: calendar.Unadjusted,
		Calendar:              cal,
		Direction:             market.ScheduleBackward,
	})
	if err != nil {
		return nil, fmt.Errorf("NewFixedRateBond: %w", err)
	}
	b := &FixedRateBond{
		SettlementDays:    settlementDays,
		Calendar:          cal,
		FaceAmount:        face,
		Coupon:            coupon,
		Frequency:         freq,
		DayCount:          dc,
		PaymentConvention: payment,
		Redemption:        redemption,
		IssueDate:         issue,
		MaturityDate:      maturity,
		schedule:          sched,
	}
	b.cashflows = b.buildCashflows()
	return b, nil
}

func (b *FixedRateBond) buildCashflows() []Cashflow {
	out := make([]Cashflow, 0, len(b.schedule)+1)
	for _, p := range b.schedule {
		out = append(out, Cashflow{
			Date:        calendar.AdjustBy(b.Calendar, p.EndDate, b.PaymentConvention),
			AccrualFrom: p.StartDate,
			AccrualTo:   p.EndDate,
			Coupon:      b.FaceAmount * b.Coupon * b.accrualFraction(p.StartDate, p.EndDate, p),
		})
	}
	out = append(out, Cashflow{
		Date:      calendar.AdjustBy(b.Calendar, b.MaturityDate, b.PaymentConvention),
		Principal: b.FaceAmount * b.Redemption / 100.0,
	})
	return out
}

// accrualFraction measures [from, to] inside period p. ACT/ACT uses the
// coupon period as reference so a regular coupon is exactly 1/frequency and
// a front stub is measured against the regular period it shortens.
func (b *FixedRateBond) accrualFraction(from, to time.Time, p swap.SchedulePeriod) float64 {
	if b.DayCount != utils.ACTACT {
		return utils.YearFraction(from, to, b.DayCount)
	}
	refStart := p.StartDate
	if p.StartDate.Equal(b.schedule[0].StartDate) {
		refStart = utils.AddMonth(p.EndDate, -int(b.Frequency))
	}
	refDays := utils.Days(refStart, p.EndDate)
	if refDays == 0 {
		return 0
	}
	return float64(utils.Days(from, to)) / float64(refDays) / float64(b.Frequency.PerYear())
}

// Cashflows returns a copy of the coupon and redemption flows.
func (b *FixedRateBond) Cashflows() []Cashflow {
	out := make([]Cashflow, len(b.cashflows))
	copy(out, b.cashflows)
	return out
}

// SettlementDate is the trade settlement for an evaluation date.
func (b *FixedRateBond) SettlementDate(evaluation time.Time) time.Time {
	return calendar.AddBusinessDays(b.Calendar, evaluation, b.SettlementDays)
}

// AccruedAmount is the coupon accrued at settlement per 100 of face.
func (b *FixedRateBond) AccruedAmount(settlement time.Time) float64 {
	for _, p := range b.schedule {
		if settlement.Before(p.StartDate) || !settlement.Before(p.EndDate) {
			continue
		}
		return 100.0 * b.Coupon * b.accrualFraction(p.StartDate, settlement, p)
	}
	return 0
}

// LatestDate is the last payment date.
func (b *FixedRateBond) LatestDate() time.Time {
	return b.cashflows[len(b.cashflows)-1].Date
}

// DirtyPrice values the flows paid after settlement per 100 of face, forward
// to settlement.
func (b *FixedRateBond) DirtyPrice(curve market.DiscountCurve, settlement time.Time) (float64, error) {
	if market.IsNil(curve) {
		return 0, market.ErrNilCurve
	}
	dfSettle, err := curve.Discount(settlement)
	if err != nil {
		return 0, fmt.Errorf("FixedRateBond.DirtyPrice: %w", err)
	}
	pv, alive := 0.0, false
	for _, cf := range b.cashflows {
		if !cf.Date.After(settlement) {
			continue
		}
		df, err := curve.Discount(cf.Date)
		if err != nil {
			return 0, fmt.Errorf("FixedRateBond.DirtyPrice: %w", err)
		}
		pv += cf.Amount() * df
		alive = true
	}
	if !alive {
		return 0, ErrSettledBond
	}
	return pv / dfSettle * 100.0 / b.FaceAmount, nil
}

// CleanPrice is DirtyPrice less accrued interest.
func (b *FixedRateBond) CleanPrice(curve market.DiscountCurve, settlement time.Time) (float64, error) {
	dirty, err := b.DirtyPrice(curve, settlement)
	if err != nil {
		return 0, err
	}
	return dirty - b.AccruedAmount(settlement), nil
}
