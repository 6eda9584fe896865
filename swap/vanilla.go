package swap

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/utils"
)

// VanillaSwap exchanges a fixed rate against an Ibor index plus spread on a
// common nominal. Rates are decimals.
type VanillaSwap struct {
	Nominal   float64
	FixedRate float64
	Spread    float64
	Index     *market.IborIndex

	FixedLeg market.LegConvention
	FloatLeg market.LegConvention

	StartDate    time.Time
	MaturityDate time.Time

	FixedSchedule []SchedulePeriod
	FloatSchedule []SchedulePeriod
}

// NewVanillaSwap builds both leg schedules between start and maturity. The
// floating leg follows the index conventions.
func NewVanillaSwap(start, maturity time.Time, fixedRate float64, fixedLeg market.LegConvention, index *market.IborIndex, spread float64) (*VanillaSwap, error) {
	if index == nil {
		return nil, fmt.Errorf("NewVanillaSwap: nil index")
	}
	floatLeg := market.FloatingLeg(index)
	fixedSched, err := GenerateSchedule(start, maturity, fixedLeg)
	if err != nil {
		return nil, fmt.Errorf("NewVanillaSwap: fixed leg: %w", err)
	}
	floatSched, err := GenerateSchedule(start, maturity, floatLeg)
	if err != nil {
		return nil, fmt.Errorf("NewVanillaSwap: floating leg: %w", err)
	}
	return &VanillaSwap{
		Nominal:       1.0,
		FixedRate:     fixedRate,
		Spread:        spread,
		Index:         index,
		FixedLeg:      fixedLeg,
		FloatLeg:      floatLeg,
		StartDate:     start,
		MaturityDate:  maturity,
		FixedSchedule: fixedSched,
		FloatSchedule: floatSched,
	}, nil
}

// LatestDate is the last date either leg touches.
func (s *VanillaSwap) LatestDate() time.Time {
	latest := s.StartDate
	for _, p := range s.FixedSchedule {
		latest = utils.MaxDate(latest, p.PayDate)
	}
	for _, p := range s.FloatSchedule {
		latest = utils.MaxDate(utils.MaxDate(latest, p.PayDate), p.EndDate)
	}
	return latest
}

// FixedLegBPS is the value of one basis point paid on the fixed leg.
func (s *VanillaSwap) FixedLegBPS(discount market.DiscountCurve) (float64, error) {
	return legBPS(s.FixedSchedule, s.FixedLeg.DayCount, s.Nominal, discount)
}

// FloatingLegBPS is the value of one basis point of spread on the floating leg.
func (s *VanillaSwap) FloatingLegBPS(discount market.DiscountCurve) (float64, error) {
	return legBPS(s.FloatSchedule, s.FloatLeg.DayCount, s.Nominal, discount)
}

func legBPS(sched []SchedulePeriod, dc utils.DayCount, nominal float64, discount market.DiscountCurve) (float64, error) {
	if market.IsNil(discount) {
		return 0, market.ErrNilCurve
	}
	ref := discount.ReferenceDate()
	bps := 0.0
	for _, p := range sched {
		if !p.PayDate.After(ref) {
			continue
		}
		df, err := discount.Discount(p.PayDate)
		if err != nil {
			return 0, err
		}
		bps += nominal * utils.YearFraction(p.StartDate, p.EndDate, dc) * df
	}
	return bps * 1e-4, nil
}

// FloatingCoupons projects the floating coupons including spread. Coupons
// starting before the forecast curve's reference date use stored fixings.
func (s *VanillaSwap) FloatingCoupons(forecast market.DiscountCurve) ([]Coupon, error) {
	return s.floatingCoupons(forecast, s.Spread)
}

func (s *VanillaSwap) floatingCoupons(forecast market.DiscountCurve, spread float64) ([]Coupon, error) {
	if market.IsNil(forecast) {
		return nil, market.ErrNilCurve
	}
	ref := forecast.ReferenceDate()
	out := make([]Coupon, 0, len(s.FloatSchedule))
	for _, p := range s.FloatSchedule {
		fixing := s.Index.FixingDate(p.StartDate)
		accrual := utils.YearFraction(p.StartDate, p.EndDate, s.FloatLeg.DayCount)
		var rate float64
		if p.StartDate.Before(ref) {
			r, err := s.Index.Fixing(forecast, fixing)
			if err != nil {
				return nil, err
			}
			rate = r
		} else {
			r, err := market.ForwardRate(forecast, p.StartDate, p.EndDate, s.FloatLeg.DayCount)
			if err != nil {
				return nil, err
			}
			rate = r
		}
		rate += spread
		out = append(out, Coupon{
			FixingDate: fixing,
			StartDate:  p.StartDate,
			EndDate:    p.EndDate,
			PayDate:    p.PayDate,
			Accrual:    accrual,
			Rate:       rate,
			Amount:     s.Nominal * rate * accrual,
		})
	}
	return out, nil
}

// FloatingLegNPV discounts the projected floating coupons.
func (s *VanillaSwap) FloatingLegNPV(forecast, discount market.DiscountCurve) (float64, error) {
	coupons, err := s.FloatingCoupons(forecast)
	if err != nil {
		return 0, err
	}
	return discountCoupons(coupons, discount)
}

// PV values both legs from the fixed-rate payer's side.
func (s *VanillaSwap) PV(forecast, discount market.DiscountCurve) (PV, error) {
	bps, err := s.FixedLegBPS(discount)
	if err != nil {
		return PV{}, fmt.Errorf("VanillaSwap.PV: %w", err)
	}
	floatPV, err := s.FloatingLegNPV(forecast, discount)
	if err != nil {
		return PV{}, fmt.Errorf("VanillaSwap.PV: %w", err)
	}
	fixedPV := s.FixedRate * bps / 1e-4
	return PV{FixedLegPV: -fixedPV, FloatLegPV: floatPV, TotalPV: floatPV - fixedPV}, nil
}

// FairRate is the fixed rate that sets the swap NPV to zero.
func (s *VanillaSwap) FairRate(forecast, discount market.DiscountCurve) (float64, error) {
	return s.FairRateWithSpread(forecast, discount, s.Spread)
}

// FairRateWithSpread is FairRate with the floating coupons paying spread
// instead of the swap's own. The swap is not modified.
func (s *VanillaSwap) FairRateWithSpread(forecast, discount market.DiscountCurve, spread float64) (float64, error) {
	bps, err := s.FixedLegBPS(discount)
	if err != nil {
		return 0, fmt.Errorf("VanillaSwap.FairRate: %w", err)
	}
	if bps == 0 {
		return 0, fmt.Errorf("VanillaSwap.FairRate: %w", ErrZeroAnnuity)
	}
	coupons, err := s.floatingCoupons(forecast, spread)
	if err != nil {
		return 0, fmt.Errorf("VanillaSwap.FairRate: %w", err)
	}
	floatPV, err := discountCoupons(coupons, discount)
	if err != nil {
		return 0, fmt.Errorf("VanillaSwap.FairRate: %w", err)
	}
	return floatPV / (bps / 1e-4), nil
}

// FairSpread is the floating spread that sets the swap NPV to zero.
func (s *VanillaSwap) FairSpread(forecast, discount market.DiscountCurve) (float64, error) {
	pv, err := s.PV(forecast, discount)
	if err != nil {
		return 0, fmt.Errorf("VanillaSwap.FairSpread: %w", err)
	}
	bps, err := s.FloatingLegBPS(discount)
	if err != nil {
		return 0, fmt.Errorf("VanillaSwap.FairSpread: %w", err)
	}
	if bps == 0 {
		return 0, fmt.Errorf("VanillaSwap.FairSpread: %w", ErrZeroAnnuity)
	}
	return s.Spread - pv.TotalPV/(bps/1e-4), nil
}
