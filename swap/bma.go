package swap

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/utils"
)

// BMASwap exchanges averaged weekly BMA resets against a fraction of an Ibor
// index plus spread.
type BMASwap struct {
	Nominal       float64
	LiborFraction float64
	LiborSpread   float64

	LiborIndex *market.IborIndex
	BMAIndex   *market.BMAIndex

	LiborLeg market.LegConvention
	BMALeg   market.LegConvention

	LiborSchedule []SchedulePeriod
	BMASchedule   []SchedulePeriod
}

// NewBMASwap builds the Libor leg on the index conventions and the BMA leg on
// bmaLeg.
func NewBMASwap(start, maturity time.Time, liborFraction, liborSpread float64, libor *market.IborIndex, bma *market.BMAIndex, bmaLeg market.LegConvention) (*BMASwap, error) {
	if libor == nil || bma == nil {
		return nil, fmt.Errorf("NewBMASwap: nil index")
	}
	liborLeg := market.FloatingLeg(libor)
	liborSched, err := GenerateSchedule(start, maturity, liborLeg)
	if err != nil {
		return nil, fmt.Errorf("NewBMASwap: libor leg: %w", err)
	}
	bmaSched, err := GenerateSchedule(start, maturity, bmaLeg)
	if err != nil {
		return nil, fmt.Errorf("NewBMASwap: bma leg: %w", err)
	}
	return &BMASwap{
		Nominal:       100.0,
		LiborFraction: liborFraction,
		LiborSpread:   liborSpread,
		LiborIndex:    libor,
		BMAIndex:      bma,
		LiborLeg:      liborLeg,
		BMALeg:        bmaLeg,
		LiborSchedule: liborSched,
		BMASchedule:   bmaSched,
	}, nil
}

// LastFixingMaturity is the end of the final weekly BMA rate the swap uses.
func (s *BMASwap) LastFixingMaturity() time.Time {
	last := s.BMASchedule[len(s.BMASchedule)-1]
	resets := s.BMAIndex.FixingSchedule(last.StartDate, last.EndDate)
	return s.BMAIndex.MaturityDate(resets[len(resets)-1])
}

// LatestDate is the last date the swap needs from any curve.
func (s *BMASwap) LatestDate() time.Time {
	latest := s.LastFixingMaturity()
	for _, p := range s.LiborSchedule {
		latest = utils.MaxDate(latest, p.PayDate)
	}
	for _, p := range s.BMASchedule {
		latest = utils.MaxDate(latest, p.PayDate)
	}
	return latest
}

// BMACoupons averages the weekly forecasts of each BMA period, weighting every
// reset by the calendar days it is in force.
func (s *BMASwap) BMACoupons(bmaForecast market.DiscountCurve) ([]Coupon, error) {
	out := make([]Coupon, 0, len(s.BMASchedule))
	for _, p := range s.BMASchedule {
		resets := s.BMAIndex.FixingSchedule(p.StartDate, p.EndDate)
		weighted, total := 0.0, 0
		for k, r := range resets {
			next := p.EndDate
			if k+1 < len(resets) {
				next = resets[k+1]
			}
			days := utils.Days(r, next)
			rate, err := s.BMAIndex.Forecast(bmaForecast, r)
			if err != nil {
				return nil, err
			}
			weighted += rate * float64(days)
			total += days
		}
		if total == 0 {
			return nil, fmt.Errorf("BMASwap: empty period starting %s", utils.FormatDate(p.StartDate))
		}
		rate := weighted / float64(total)
		accrual := utils.YearFraction(p.StartDate, p.EndDate, s.BMALeg.DayCount)
		out = append(out, Coupon{
			FixingDate: resets[0],
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

// BMALegNPV discounts the averaged BMA coupons.
func (s *BMASwap) BMALegNPV(bmaForecast, discount market.DiscountCurve) (float64, error) {
	coupons, err := s.BMACoupons(bmaForecast)
	if err != nil {
		return 0, err
	}
	return discountCoupons(coupons, discount)
}

// LiborLegNPV discounts the Libor leg paying fraction*rate + spread.
func (s *BMASwap) LiborLegNPV(liborForecast, discount market.DiscountCurve) (float64, error) {
	pure, err := s.pureLiborNPV(liborForecast, discount)
	if err != nil {
		return 0, err
	}
	bps, err := legBPS(s.LiborSchedule, s.LiborLeg.DayCount, s.Nominal, discount)
	if err != nil {
		return 0, err
	}
	return s.LiborFraction*pure + s.LiborSpread*bps/1e-4, nil
}

func (s *BMASwap) pureLiborNPV(liborForecast, discount market.DiscountCurve) (float64, error) {
	leg := VanillaSwap{
		Nominal:       s.Nominal,
		Index:         s.LiborIndex,
		FloatLeg:      s.LiborLeg,
		FloatSchedule: s.LiborSchedule,
	}
	return leg.FloatingLegNPV(liborForecast, discount)
}

// FairLiborFraction is the Libor fraction that prices the swap at par.
func (s *BMASwap) FairLiborFraction(bmaForecast, liborForecast, discount market.DiscountCurve) (float64, error) {
	bmaNPV, err := s.BMALegNPV(bmaForecast, discount)
	if err != nil {
		return 0, fmt.Errorf("BMASwap.FairLiborFraction: %w", err)
	}
	pure, err := s.pureLiborNPV(liborForecast, discount)
	if err != nil {
		return 0, fmt.Errorf("BMASwap.FairLiborFraction: %w", err)
	}
	if pure == 0 {
		return 0, fmt.Errorf("BMASwap.FairLiborFraction: %w", ErrZeroAnnuity)
	}
	bps, err := legBPS(s.LiborSchedule, s.LiborLeg.DayCount, s.Nominal, discount)
	if err != nil {
		return 0, fmt.Errorf("BMASwap.FairLiborFraction: %w", err)
	}
	return (bmaNPV - s.LiborSpread*bps/1e-4) / pure, nil
}

func discountCoupons(coupons []Coupon, discount market.DiscountCurve) (float64, error) {
	if market.IsNil(discount) {
		return 0, market.ErrNilCurve
	}
	ref := discount.ReferenceDate()
	npv := 0.0
	for _, c := range coupons {
		if !c.PayDate.After(ref) {
			continue
		}
		df, err := discount.Discount(c.PayDate)
		if err != nil {
			return 0, err
		}
		npv += c.Amount * df
	}
	return npv, nil
}
