// Package termstructure builds yield curves: interpolated node curves, flat
// curves and piecewise curves bootstrapped from rate helpers.
package termstructure

import (
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"

	"github.com/meenmo/ratecurve/interpolation"
	"github.com/meenmo/ratecurve/utils"
)

// shortTime is the horizon used for rates asked at a single instant.
const shortTime = 1e-4

// Node is one curve pillar.
type Node struct {
	Date  time.Time `json:"date"`
	Time  float64   `json:"time"`
	Value float64   `json:"value"`
}

// InterpolatedCurve is a yield curve fitted through fixed nodes. Past the last
// node it extends with a flat instantaneous forward when extrapolation is on.
type InterpolatedCurve struct {
	referenceDate time.Time
	dayCount      utils.DayCount
	trait         Trait
	method        interpolation.Method

	dates  []time.Time
	times  []float64
	data   []float64
	active int

	interp      interpolation.Interpolator
	extrapolate bool
}

// NewInterpolatedCurve fits method through (dates, values). The first date is
// the reference date; for the Discount trait its value must be 1.
func NewInterpolatedCurve(dates []time.Time, values []float64, dc utils.DayCount, trait Trait, method interpolation.Method) (*InterpolatedCurve, error) {
	if len(dates) != len(values) || len(dates) < 2 {
		return nil, fmt.Errorf("NewInterpolatedCurve: need matching dates and values, at least 2: %w", ErrInvalidHelperData)
	}
	if err := trait.supports(method); err != nil {
		return nil, fmt.Errorf("NewInterpolatedCurve: %w", err)
	}
	if trait == Discount && values[0] != 1.0 {
		return nil, fmt.Errorf("NewInterpolatedCurve: discount at reference date is %g, not 1: %w", values[0], ErrInvalidHelperData)
	}
	c := &InterpolatedCurve{
		referenceDate: dates[0],
		dayCount:      dc,
		trait:         trait,
		method:        method,
		dates:         append([]time.Time(nil), dates...),
		times:         make([]float64, len(dates)),
		data:          append([]float64(nil), values...),
	}
	for i, d := range dates {
		c.times[i] = utils.YearFraction(c.referenceDate, d, dc)
		if i > 0 && !(c.times[i] > c.times[i-1]) {
			return nil, fmt.Errorf("NewInterpolatedCurve: %s not after %s: %w", utils.FormatDate(d), utils.FormatDate(dates[i-1]), ErrDuplicateMaturity)
		}
	}
	if err := c.fit(len(dates)); err != nil {
		return nil, fmt.Errorf("NewInterpolatedCurve: %w", err)
	}
	return c, nil
}

// fit builds the interpolator over the first n nodes. Too few nodes for the
// method fall back to linear.
func (c *InterpolatedCurve) fit(n int) error {
	method := c.method
	if n < method.RequiredPoints() {
		method = interpolation.Linear{}
	}
	interp, err := method.New(c.times[:n], c.data[:n])
	if err != nil {
		return err
	}
	c.interp = interp
	c.active = n
	return nil
}

// refit recomputes coefficients after node values moved in place.
func (c *InterpolatedCurve) refit() error {
	return c.interp.Update()
}

// Clone returns an independent copy.
func (c *InterpolatedCurve) Clone() (*InterpolatedCurve, error) {
	out, err := NewInterpolatedCurve(c.dates[:c.active], c.data[:c.active], c.dayCount, c.trait, c.method)
	if err != nil {
		return nil, err
	}
	out.extrapolate = c.extrapolate
	return out, nil
}

func (c *InterpolatedCurve) ReferenceDate() time.Time { return c.referenceDate }

func (c *InterpolatedCurve) DayCount() utils.DayCount { return c.dayCount }

func (c *InterpolatedCurve) Trait() Trait { return c.trait }

func (c *InterpolatedCurve) Method() interpolation.Method { return c.method }

// Interpolator exposes the fitted interpolator, e.g. to inspect spline coefficients.
func (c *InterpolatedCurve) Interpolator() interpolation.Interpolator { return c.interp }

// EnableExtrapolation allows queries past MaxDate.
func (c *InterpolatedCurve) EnableExtrapolation(on bool) { c.extrapolate = on }

// MaxDate is the last node date.
func (c *InterpolatedCurve) MaxDate() time.Time { return c.dates[c.active-1] }

func (c *InterpolatedCurve) maxTime() float64 { return c.times[c.active-1] }

// TimeFromReference converts a date to curve time.
func (c *InterpolatedCurve) TimeFromReference(d time.Time) float64 {
	return utils.YearFraction(c.referenceDate, d, c.dayCount)
}

// Nodes returns a copy of the fitted nodes.
func (c *InterpolatedCurve) Nodes() []Node {
	out := make([]Node, c.active)
	for i := range out {
		out[i] = Node{Date: c.dates[i], Time: c.times[i], Value: c.data[i]}
	}
	return out
}

// Dates returns a copy of the node dates.
func (c *InterpolatedCurve) Dates() []time.Time {
	return append([]time.Time(nil), c.dates[:c.active]...)
}

// Times returns a copy of the node times.
func (c *InterpolatedCurve) Times() []float64 {
	return append([]float64(nil), c.times[:c.active]...)
}

// Data returns a copy of the node values.
func (c *InterpolatedCurve) Data() []float64 {
	return append([]float64(nil), c.data[:c.active]...)
}

func (c *InterpolatedCurve) checkTime(t float64) error {
	if t < 0 {
		return fmt.Errorf("time %g: %w", t, ErrNegativeTime)
	}
	if t > c.maxTime() && !c.extrapolate && !utils.CloseEnough(t, c.maxTime()) {
		return fmt.Errorf("time %g past last node %g: %w", t, c.maxTime(), ErrExtrapolationNotAllowed)
	}
	return nil
}

// Discount is the discount factor for d.
func (c *InterpolatedCurve) Discount(d time.Time) (float64, error) {
	return c.DiscountAt(c.TimeFromReference(d))
}

// DiscountAt is the discount factor at curve time t.
func (c *InterpolatedCurve) DiscountAt(t float64) (float64, error) {
	if err := c.checkTime(t); err != nil {
		return 0, fmt.Errorf("InterpolatedCurve.DiscountAt: %w", err)
	}
	tMax := c.maxTime()
	inside := t <= tMax
	switch c.trait {
	case Discount:
		if inside {
			return c.interp.ValueAt(t)
		}
		dMax, err := c.interp.ValueAt(tMax)
		if err != nil {
			return 0, err
		}
		f, err := c.instantaneousForwardAt(tMax)
		if err != nil {
			return 0, err
		}
		return dMax * math.Exp(-f*(t-tMax)), nil
	case ZeroYield:
		z, err := c.zeroYieldAt(t)
		if err != nil {
			return 0, err
		}
		return math.Exp(-z * t), nil
	default:
		if inside {
			p, err := c.interp.Primitive(t)
			if err != nil {
				return 0, err
			}
			return math.Exp(-p), nil
		}
		p, err := c.interp.Primitive(tMax)
		if err != nil {
			return 0, err
		}
		f, err := c.interp.ValueAt(tMax)
		if err != nil {
			return 0, err
		}
		return math.Exp(-(p + f*(t-tMax))), nil
	}
}

// zeroYieldAt evaluates the ZeroYield trait, continuing with the last
// instantaneous forward beyond the last node.
func (c *InterpolatedCurve) zeroYieldAt(t float64) (float64, error) {
	tMax := c.maxTime()
	if t <= tMax {
		return c.interp.ValueAt(t)
	}
	zMax, err := c.interp.ValueAt(tMax)
	if err != nil {
		return 0, err
	}
	f, err := c.instantaneousForwardAt(tMax)
	if err != nil {
		return 0, err
	}
	return (zMax*tMax + f*(t-tMax)) / t, nil
}

// instantaneousForwardAt is -d ln P/dt at t, flat past the last node.
func (c *InterpolatedCurve) instantaneousForwardAt(t float64) (float64, error) {
	t = math.Min(t, c.maxTime())
	switch c.trait {
	case Discount:
		d, err := c.interp.ValueAt(t)
		if err != nil {
			return 0, err
		}
		dd, err := c.interp.DerivativeAt(t)
		if err != nil {
			return 0, err
		}
		return -dd / d, nil
	case ZeroYield:
		z, err := c.interp.ValueAt(t)
		if err != nil {
			return 0, err
		}
		dz, err := c.interp.DerivativeAt(t)
		if err != nil {
			return 0, err
		}
		return z + t*dz, nil
	default:
		return c.interp.ValueAt(t)
	}
}

// InstantaneousForward is the continuously compounded instantaneous forward at d.
func (c *InterpolatedCurve) InstantaneousForward(d time.Time) (float64, error) {
	t := c.TimeFromReference(d)
	if err := c.checkTime(t); err != nil {
		return 0, fmt.Errorf("InterpolatedCurve.InstantaneousForward: %w", err)
	}
	return c.instantaneousForwardAt(t)
}

// ZeroRate is the rate from the reference date to d in the given conventions,
// measured with the curve day count.
func (c *InterpolatedCurve) ZeroRate(d time.Time, comp Compounding, freq int) (InterestRate, error) {
	t := c.TimeFromReference(d)
	if t == 0 {
		t = shortTime
	}
	df, err := c.DiscountAt(t)
	if err != nil {
		return InterestRate{}, fmt.Errorf("InterpolatedCurve.ZeroRate: %w", err)
	}
	return ImpliedRate(1/df, c.dayCount, comp, freq, t)
}

// ForwardRate is the rate between d1 and d2 in the given conventions.
func (c *InterpolatedCurve) ForwardRate(d1, d2 time.Time, comp Compounding, freq int) (InterestRate, error) {
	t1, t2 := c.TimeFromReference(d1), c.TimeFromReference(d2)
	if t2 < t1 {
		return InterestRate{}, fmt.Errorf("InterpolatedCurve.ForwardRate: %s before %s", utils.FormatDate(d2), utils.FormatDate(d1))
	}
	if t2 == t1 {
		t2 = t1 + shortTime
	}
	df1, err := c.DiscountAt(t1)
	if err != nil {
		return InterestRate{}, fmt.Errorf("InterpolatedCurve.ForwardRate: %w", err)
	}
	df2, err := c.DiscountAt(t2)
	if err != nil {
		return InterestRate{}, fmt.Errorf("InterpolatedCurve.ForwardRate: %w", err)
	}
	return ImpliedRate(df1/df2, c.dayCount, comp, freq, t2-t1)
}

type curveSnapshot struct {
	ReferenceDate string    `json:"reference_date"`
	DayCount      string    `json:"day_count"`
	Trait         string    `json:"trait"`
	Interpolation string    `json:"interpolation"`
	Extrapolate   bool      `json:"extrapolate"`
	Dates         []string  `json:"dates"`
	Values        []float64 `json:"values"`
}

// MarshalJSON exports the nodes and conventions.
func (c *InterpolatedCurve) MarshalJSON() ([]byte, error) {
	snap := curveSnapshot{
		ReferenceDate: utils.FormatDate(c.referenceDate),
		DayCount:      string(c.dayCount),
		Trait:         c.trait.String(),
		Interpolation: c.method.String(),
		Extrapolate:   c.extrapolate,
		Dates:         make([]string, c.active),
		Values:        c.Data(),
	}
	for i := range snap.Dates {
		snap.Dates[i] = utils.FormatDate(c.dates[i])
	}
	return json.Marshal(snap)
}

// UnmarshalCurve rebuilds a curve exported by MarshalJSON. The interpolation
// is given explicitly because several presets share a display name.
func UnmarshalCurve(data []byte, method interpolation.Method) (*InterpolatedCurve, error) {
	var snap curveSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("UnmarshalCurve: %w", err)
	}
	dc, err := utils.ParseDayCount(snap.DayCount)
	if err != nil {
		return nil, fmt.Errorf("UnmarshalCurve: %w", err)
	}
	trait, err := ParseTrait(snap.Trait)
	if err != nil {
		return nil, fmt.Errorf("UnmarshalCurve: %w", err)
	}
	dates := make([]time.Time, len(snap.Dates))
	for i, s := range snap.Dates {
		if dates[i], err = utils.ParseDate(s); err != nil {
			return nil, fmt.Errorf("UnmarshalCurve: %w", err)
		}
	}
	c, err := NewInterpolatedCurve(dates, snap.Values, dc, trait, method)
	if err != nil {
		return nil, fmt.Errorf("UnmarshalCurve: %w", err)
	}
	c.extrapolate = snap.Extrapolate
	return c, nil
}
