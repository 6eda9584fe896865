package interpolation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// Linear interpolates y linearly between nodes.
type Linear struct{}

func (Linear) New(xs, ys []float64) (Interpolator, error) {
	b, err := newBase(xs, ys, 2)
	if err != nil {
		return nil, fmt.Errorf("Linear.New: %w", err)
	}
	l := &linear{base: b}
	return l, l.Update()
}

func (Linear) Global() bool        { return false }
func (Linear) RequiredPoints() int { return 2 }
func (Linear) String() string      { return "Linear" }

type linear struct {
	base
	fit       interp.PiecewiseLinear
	slopes    []float64
	primitive []float64
}

func (l *linear) Update() error {
	if err := l.checkSorted(); err != nil {
		return err
	}
	n := len(l.xs)
	if err := l.fit.Fit(l.xs, l.ys); err != nil {
		return fmt.Errorf("linear.Update: %w", err)
	}
	l.slopes = resize(l.slopes, n-1)
	l.primitive = resize(l.primitive, n)
	l.primitive[0] = 0
	for i := 0; i < n-1; i++ {
		dx := l.xs[i+1] - l.xs[i]
		l.slopes[i] = (l.ys[i+1] - l.ys[i]) / dx
		l.primitive[i+1] = l.primitive[i] + dx*(l.ys[i]+0.5*dx*l.slopes[i])
	}
	return nil
}

func (l *linear) ValueAt(x float64) (float64, error) {
	if err := l.checkRange(x); err != nil {
		return 0, err
	}
	if x >= l.XMin() && x <= l.XMax() {
		return l.fit.Predict(x), nil
	}
	i := l.locate(x)
	return l.ys[i] + (x-l.xs[i])*l.slopes[i], nil
}

func (l *linear) DerivativeAt(x float64) (float64, error) {
	if err := l.checkRange(x); err != nil {
		return 0, err
	}
	return l.slopes[l.locate(x)], nil
}

func (l *linear) Primitive(x float64) (float64, error) {
	if err := l.checkRange(x); err != nil {
		return 0, err
	}
	i := l.locate(x)
	dx := x - l.xs[i]
	return l.primitive[i] + dx*(l.ys[i]+0.5*dx*l.slopes[i]), nil
}

// LogLinear interpolates log(y) linearly; y must stay positive.
type LogLinear struct{}

func (LogLinear) New(xs, ys []float64) (Interpolator, error) {
	b, err := newBase(xs, ys, 2)
	if err != nil {
		return nil, fmt.Errorf("LogLinear.New: %w", err)
	}
	l := &logLinear{base: b}
	return l, l.Update()
}

func (LogLinear) Global() bool        { return false }
func (LogLinear) RequiredPoints() int { return 2 }
func (LogLinear) String() string      { return "LogLinear" }

type logLinear struct {
	base
	logs      []float64
	slopes    []float64
	primitive []float64
}

func (l *logLinear) Update() error {
	if err := l.checkSorted(); err != nil {
		return err
	}
	n := len(l.xs)
	l.logs = resize(l.logs, n)
	for i, y := range l.ys {
		if !(y > 0) {
			return fmt.Errorf("logLinear.Update: y[%d]=%g is not positive: %w", i, y, ErrInvalidNodes)
		}
		l.logs[i] = math.Log(y)
	}
	l.slopes = resize(l.slopes, n-1)
	l.primitive = resize(l.primitive, n)
	l.primitive[0] = 0
	for i := 0; i < n-1; i++ {
		dx := l.xs[i+1] - l.xs[i]
		l.slopes[i] = (l.logs[i+1] - l.logs[i]) / dx
		l.primitive[i+1] = l.primitive[i] + l.segmentIntegral(i, dx)
	}
	return nil
}

// segmentIntegral integrates exp(logs[i] + slope*(t-xs[i])) over [xs[i], xs[i]+dx].
func (l *logLinear) segmentIntegral(i int, dx float64) float64 {
	b := l.slopes[i]
	if math.Abs(b*dx) < 1e-12 {
		return l.ys[i] * dx * (1 + 0.5*b*dx)
	}
	return l.ys[i] * math.Expm1(b*dx) / b
}

func (l *logLinear) ValueAt(x float64) (float64, error) {
	if err := l.checkRange(x); err != nil {
		return 0, err
	}
	i := l.locate(x)
	return math.Exp(l.logs[i] + (x-l.xs[i])*l.slopes[i]), nil
}

func (l *logLinear) DerivativeAt(x float64) (float64, error) {
	v, err := l.ValueAt(x)
	if err != nil {
		return 0, err
	}
	return v * l.slopes[l.locate(x)], nil
}

func (l *logLinear) Primitive(x float64) (float64, error) {
	if err := l.checkRange(x); err != nil {
		return 0, err
	}
	i := l.locate(x)
	return l.primitive[i] + l.segmentIntegral(i, x-l.xs[i]), nil
}

func resize(s []float64, n int) []float64 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]float64, n)
}
