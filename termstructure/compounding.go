package termstructure

import (
	"fmt"
	"math"

	"github.com/meenmo/ratecurve/utils"
)

// Compounding is the interest compounding rule of an InterestRate.
type Compounding int

const (
	Simple Compounding = iota
	Compounded
	Continuous
	// SimpleThenCompounded is simple up to one period, compounded after.
	SimpleThenCompounded
)

func (c Compounding) String() string {
	switch c {
	case Simple:
		return "Simple"
	case Compounded:
		return "Compounded"
	case Continuous:
		return "Continuous"
	case SimpleThenCompounded:
		return "SimpleThenCompounded"
	}
	return fmt.Sprintf("Compounding(%d)", int(c))
}

// InterestRate is a decimal rate with its accrual conventions. Frequency is
// periods per year and only matters for compounded rates.
type InterestRate struct {
	Rate        float64
	DayCount    utils.DayCount
	Compounding Compounding
	Frequency   int
}

func (r InterestRate) checkFrequency() error {
	if (r.Compounding == Compounded || r.Compounding == SimpleThenCompounded) && r.Frequency <= 0 {
		return fmt.Errorf("InterestRate: %s compounding needs a positive frequency", r.Compounding)
	}
	return nil
}

// CompoundFactor is the growth of one unit over t years.
func (r InterestRate) CompoundFactor(t float64) (float64, error) {
	if t < 0 {
		return 0, fmt.Errorf("InterestRate.CompoundFactor: negative time %g", t)
	}
	if err := r.checkFrequency(); err != nil {
		return 0, err
	}
	f := float64(r.Frequency)
	switch r.Compounding {
	case Simple:
		return 1 + r.Rate*t, nil
	case Compounded:
		return math.Pow(1+r.Rate/f, f*t), nil
	case Continuous:
		return math.Exp(r.Rate * t), nil
	case SimpleThenCompounded:
		if t <= 1/f {
			return 1 + r.Rate*t, nil
		}
		return math.Pow(1+r.Rate/f, f*t), nil
	}
	return 0, fmt.Errorf("InterestRate.CompoundFactor: unknown compounding %d", r.Compounding)
}

// DiscountFactor is the inverse of CompoundFactor.
func (r InterestRate) DiscountFactor(t float64) (float64, error) {
	c, err := r.CompoundFactor(t)
	if err != nil {
		return 0, err
	}
	return 1 / c, nil
}

// ImpliedRate returns the rate that grows one unit to compound over t years.
func ImpliedRate(compound float64, dc utils.DayCount, comp Compounding, freq int, t float64) (InterestRate, error) {
	r := InterestRate{DayCount: dc, Compounding: comp, Frequency: freq}
	if !(compound > 0) {
		return r, fmt.Errorf("ImpliedRate: compound factor %g must be positive", compound)
	}
	if err := r.checkFrequency(); err != nil {
		return r, err
	}
	if compound == 1 {
		return r, nil
	}
	if !(t > 0) {
		return r, fmt.Errorf("ImpliedRate: time %g must be positive", t)
	}
	f := float64(freq)
	switch comp {
	case Simple:
		r.Rate = (compound - 1) / t
	case Compounded:
		r.Rate = (math.Pow(compound, 1/(f*t)) - 1) * f
	case Continuous:
		r.Rate = math.Log(compound) / t
	case SimpleThenCompounded:
		if t <= 1/f {
			r.Rate = (compound - 1) / t
		} else {
			r.Rate = (math.Pow(compound, 1/(f*t)) - 1) * f
		}
	default:
		return r, fmt.Errorf("ImpliedRate: unknown compounding %d", comp)
	}
	return r, nil
}

// Equivalent converts r to other conventions over the same t years.
func (r InterestRate) Equivalent(dc utils.DayCount, comp Compounding, freq int, t float64) (InterestRate, error) {
	c, err := r.CompoundFactor(t)
	if err != nil {
		return InterestRate{}, err
	}
	return ImpliedRate(c, dc, comp, freq, t)
}
