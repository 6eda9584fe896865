package termstructure

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/ratecurve/utils"
)

// FlatForward is a curve with one constant rate.
type FlatForward struct {
	referenceDate time.Time
	rate          InterestRate
}

// NewFlatForward builds a flat curve. rate.DayCount measures time.
func NewFlatForward(reference time.Time, rate InterestRate) (*FlatForward, error) {
	if err := rate.checkFrequency(); err != nil {
		return nil, fmt.Errorf("NewFlatForward: %w", err)
	}
	return &FlatForward{referenceDate: reference, rate: rate}, nil
}

func (f *FlatForward) ReferenceDate() time.Time { return f.referenceDate }

func (f *FlatForward) Rate() InterestRate { return f.rate }

// Discount is the discount factor for d.
func (f *FlatForward) Discount(d time.Time) (float64, error) {
	t := utils.YearFraction(f.referenceDate, d, f.rate.DayCount)
	if t < 0 {
		return 0, fmt.Errorf("FlatForward.Discount: %s: %w", utils.FormatDate(d), ErrNegativeTime)
	}
	return f.rate.DiscountFactor(t)
}

// ZeroRate converts the flat rate to the requested conventions up to d.
func (f *FlatForward) ZeroRate(d time.Time, comp Compounding, freq int) (InterestRate, error) {
	t := utils.YearFraction(f.referenceDate, d, f.rate.DayCount)
	if t <= 0 {
		t = shortTime
	}
	return f.rate.Equivalent(f.rate.DayCount, comp, freq, t)
}

// InstantaneousForward is the continuously compounded equivalent of the rate.
func (f *FlatForward) InstantaneousForward(d time.Time) (float64, error) {
	t := math.Max(utils.YearFraction(f.referenceDate, d, f.rate.DayCount), shortTime)
	r, err := f.rate.Equivalent(f.rate.DayCount, Continuous, 0, t)
	if err != nil {
		return 0, err
	}
	return r.Rate, nil
}
