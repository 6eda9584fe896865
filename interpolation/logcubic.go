package interpolation

import (
	"fmt"
	"math"
)

// LogCubic fits a cubic through log(y); y must stay positive.
type LogCubic struct {
	Cubic
}

// Common log-cubic presets.
var (
	MonotonicLogCubic = LogCubic{MonotonicCubicNaturalSpline}
	LogCubicNotAKnot  = LogCubic{NotAKnotCubicSpline}
)

func (m LogCubic) New(xs, ys []float64) (Interpolator, error) {
	b, err := newBase(xs, ys, 2)
	if err != nil {
		return nil, fmt.Errorf("LogCubic.New: %w", err)
	}
	lc := &LogCubicInterpolator{base: b, logs: make([]float64, len(xs))}
	if err := lc.fillLogs(); err != nil {
		return nil, fmt.Errorf("LogCubic.New: %w", err)
	}
	inner, err := m.Cubic.New(xs, lc.logs)
	if err != nil {
		return nil, fmt.Errorf("LogCubic.New: %w", err)
	}
	lc.inner = inner.(*CubicInterpolator)
	return lc, nil
}

func (m LogCubic) String() string { return "Log" + m.Cubic.String() }

// LogCubicInterpolator exponentiates a cubic fitted on log values.
type LogCubicInterpolator struct {
	base
	logs  []float64
	inner *CubicInterpolator
}

// Cubic exposes the fit on log values, including its coefficients.
func (lc *LogCubicInterpolator) Cubic() *CubicInterpolator { return lc.inner }

func (lc *LogCubicInterpolator) fillLogs() error {
	for i, y := range lc.ys {
		if !(y > 0) {
			return fmt.Errorf("y[%d]=%g is not positive: %w", i, y, ErrInvalidNodes)
		}
		lc.logs[i] = math.Log(y)
	}
	return nil
}

func (lc *LogCubicInterpolator) Update() error {
	if err := lc.fillLogs(); err != nil {
		return fmt.Errorf("LogCubicInterpolator.Update: %w", err)
	}
	return lc.inner.Update()
}

func (lc *LogCubicInterpolator) EnableExtrapolation(on bool) {
	lc.base.EnableExtrapolation(on)
	lc.inner.EnableExtrapolation(on)
}

func (lc *LogCubicInterpolator) ValueAt(x float64) (float64, error) {
	v, err := lc.inner.ValueAt(x)
	if err != nil {
		return 0, err
	}
	return math.Exp(v), nil
}

func (lc *LogCubicInterpolator) DerivativeAt(x float64) (float64, error) {
	v, err := lc.ValueAt(x)
	if err != nil {
		return 0, err
	}
	d, err := lc.inner.DerivativeAt(x)
	if err != nil {
		return 0, err
	}
	return v * d, nil
}

func (lc *LogCubicInterpolator) Primitive(float64) (float64, error) {
	return 0, fmt.Errorf("LogCubicInterpolator.Primitive: %w", ErrPrimitiveNotAvailable)
}
