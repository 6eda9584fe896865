package bond

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/ratecurve/utils"
)

// YieldResult is the output of FixedRateBond.Yield.
type YieldResult struct {
	// Yield is the decimal yield compounded at the coupon frequency.
	Yield float64
	// DirtyPrice is clean price + accrued interest (per-100).
	DirtyPrice float64
	// AccruedInterest is the accrued coupon at settlement (per-100).
	AccruedInterest float64
	// Iterations is the number of Newton-Raphson steps taken.
	Iterations int
}

// Yield solves for the yield y such that the dirty-price function (ACT/ACT
// ICMA period counting) equals cleanPrice plus accrued.
//
// The solver uses Newton-Raphson with analytic first derivative.
func (b *FixedRateBond) Yield(cleanPrice float64, settlement time.Time) (YieldResult, error) {
	flows, err := b.periodFlows(settlement)
	if err != nil {
		return YieldResult{}, fmt.Errorf("FixedRateBond.Yield: %w", err)
	}
	accrued := b.AccruedAmount(settlement)
	dirty := cleanPrice + accrued

	y, iterations, err := solveYield(dirty, float64(b.Frequency.PerYear()), flows)
	if err != nil {
		return YieldResult{}, err
	}
	return YieldResult{
		Yield:           y,
		DirtyPrice:      dirty,
		AccruedInterest: accrued,
		Iterations:      iterations,
	}, nil
}

// CleanPriceFromYield is the inverse of Yield.
func (b *FixedRateBond) CleanPriceFromYield(y float64, settlement time.Time) (float64, error) {
	flows, err := b.periodFlows(settlement)
	if err != nil {
		return 0, fmt.Errorf("FixedRateBond.CleanPriceFromYield: %w", err)
	}
	price, _ := dirtyPriceAndDeriv(y, float64(b.Frequency.PerYear()), flows)
	return price - b.AccruedAmount(settlement), nil
}

type periodFlow struct {
	periods float64
	amount  float64
}

// periodFlows returns per-100 flows after settlement with their time in
// coupon periods. The redemption shares the final coupon's time.
func (b *FixedRateBond) periodFlows(settlement time.Time) ([]periodFlow, error) {
	var (
		out   []periodFlow
		t1    float64
		k     = -1
		first = true
	)
	for _, cf := range b.cashflows {
		if !cf.Date.After(settlement) {
			continue
		}
		if !cf.AccrualTo.IsZero() {
			if first {
				prev := cf.AccrualFrom
				if prev.Equal(b.schedule[0].StartDate) {
					prev = utils.AddMonth(cf.AccrualTo, -int(b.Frequency))
				}
				t1 = float64(utils.Days(settlement, cf.Date)) / float64(utils.Days(prev, cf.Date))
				first = false
			}
			k++
		}
		out = append(out, periodFlow{periods: t1 + float64(k), amount: cf.Amount() * 100.0 / b.FaceAmount})
	}
	if len(out) == 0 {
		return nil, ErrSettledBond
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Newton-Raphson solver (unexported)
// ---------------------------------------------------------------------------

const (
	yieldTolerance = 1e-12
	yieldMaxIter   = 100
	yieldFloor     = -0.05
	yieldCeiling   = 0.50
)

// solveYield finds y such that dirtyPrice(y) == target via Newton-Raphson.
func solveYield(target, freq float64, flows []periodFlow) (float64, int, error) {
	// Initial guess: mid-range (2.5 %).
	y := 0.025
	y = clamp(y, yieldFloor, yieldCeiling)

	for iter := 0; iter < yieldMaxIter; iter++ {
		price, dPdy := dirtyPriceAndDeriv(y, freq, flows)
		f := price - target

		if math.Abs(f) < yieldTolerance {
			return y, iter + 1, nil
		}
		if math.Abs(dPdy) < 1e-15 {
			return y, iter + 1, fmt.Errorf("FixedRateBond.Yield: derivative too small at iter %d", iter)
		}

		y = clamp(y-f/dPdy, yieldFloor, yieldCeiling)
	}

	return y, yieldMaxIter, fmt.Errorf("FixedRateBond.Yield: did not converge after %d iterations", yieldMaxIter)
}

// dirtyPriceAndDeriv returns (price, dPrice/dy) with t_k counted in coupon periods:
//
//	price = Σ CF_k / (1+y/f)^t_k
//	dP/dy = Σ −(t_k/f) · CF_k / (1+y/f)^(t_k+1)
func dirtyPriceAndDeriv(y, freq float64, flows []periodFlow) (float64, float64) {
	var price, deriv float64
	for _, pf := range flows {
		base := 1.0 + y/freq
		price += pf.amount / math.Pow(base, pf.periods)
		deriv += -pf.periods / freq * pf.amount / math.Pow(base, pf.periods+1)
	}
	return price, deriv
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
