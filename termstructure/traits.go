package termstructure

import (
	"fmt"
	"math"

	"github.com/meenmo/ratecurve/config"
	"github.com/meenmo/ratecurve/interpolation"
)

// Trait selects the quantity curve nodes hold.
type Trait int

const (
	// Discount nodes are discount factors.
	Discount Trait = iota
	// ZeroYield nodes are continuously compounded zero rates.
	ZeroYield
	// ForwardRate nodes are instantaneous forward rates.
	ForwardRate
)

func (t Trait) String() string {
	switch t {
	case Discount:
		return "Discount"
	case ZeroYield:
		return "ZeroYield"
	case ForwardRate:
		return "ForwardRate"
	}
	return fmt.Sprintf("Trait(%d)", int(t))
}

// ParseTrait maps "Discount", "ZeroYield" or "ForwardRate".
func ParseTrait(s string) (Trait, error) {
	for _, t := range []Trait{Discount, ZeroYield, ForwardRate} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("ParseTrait: unknown trait %q", s)
}

// supports reports whether the trait can evaluate discount factors through m.
func (t Trait) supports(m interpolation.Method) error {
	switch m.(type) {
	case interpolation.ConvexMonotone, *interpolation.ConvexMonotone:
		if t != ForwardRate {
			return fmt.Errorf("%s with %s: %w", t, m, ErrUnsupportedInterpolation)
		}
	case interpolation.LogCubic, *interpolation.LogCubic:
		if t == ForwardRate {
			return fmt.Errorf("%s with %s: %w", t, m, ErrUnsupportedInterpolation)
		}
	}
	return nil
}

// initialValue is the node value at the reference date.
func (t Trait) initialValue(cfg config.Config) float64 {
	if t == Discount {
		return 1.0
	}
	return cfg.AvgRate
}

// guess seeds node i. The curve must be fitted on nodes [0, i) only so the
// value comes from extrapolating what is already solved.
func (t Trait) guess(i int, c *InterpolatedCurve, cfg config.Config) float64 {
	ti := c.times[i]
	if i == 1 {
		if t == Discount {
			return 1.0 / (1.0 + cfg.AvgRate*ti)
		}
		return cfg.AvgRate
	}
	switch t {
	case Discount:
		if df, err := c.DiscountAt(ti); err == nil {
			return df
		}
	case ZeroYield:
		if df, err := c.DiscountAt(ti); err == nil && df > 0 {
			return -math.Log(df) / ti
		}
	case ForwardRate:
		if f, err := c.instantaneousForwardAt(ti); err == nil {
			return f
		}
	}
	return c.data[i-1]
}

// bounds is the search interval for node i given node i-1.
func (t Trait) bounds(i int, c *InterpolatedCurve, cfg config.Config) (float64, float64) {
	if t == Discount {
		dt := c.times[i] - c.times[i-1]
		prev := c.data[i-1]
		return math.Max(prev*math.Exp(-cfg.MaxRate*dt), cfg.MinDiscountFactor), prev * math.Exp(cfg.MaxRate*dt)
	}
	return -cfg.MaxRate, cfg.MaxRate
}

// setNode writes node i; rate traits keep node 0 equal to node 1 because
// their value at t=0 is not observable.
func (t Trait) setNode(c *InterpolatedCurve, i int, v float64) {
	c.data[i] = v
	if i == 1 && t != Discount {
		c.data[0] = v
	}
}
