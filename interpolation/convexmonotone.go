package interpolation

import (
	"fmt"
	"math"
)

// ConvexMonotone is the Hagan-West monotone convex method. The y value at
// node i > 0 is read as the average of the function over (x[i-1], x[i]]; the
// fitted function keeps every such average while staying continuous, and
// with ForcePositive it never goes negative. y[0] is ignored.
type ConvexMonotone struct {
	ForcePositive bool
}

func (m ConvexMonotone) New(xs, ys []float64) (Interpolator, error) {
	b, err := newBase(xs, ys, 2)
	if err != nil {
		return nil, fmt.Errorf("ConvexMonotone.New: %w", err)
	}
	cm := &convexMonotone{base: b, forcePositive: m.ForcePositive}
	return cm, cm.Update()
}

func (ConvexMonotone) Global() bool        { return true }
func (ConvexMonotone) RequiredPoints() int { return 2 }
func (ConvexMonotone) String() string      { return "ConvexMonotone" }

type convexMonotone struct {
	base
	forcePositive bool
	knots         []float64 // fitted function value at each node
	primitive     []float64
}

func (cm *convexMonotone) Update() error {
	if err := cm.checkSorted(); err != nil {
		return err
	}
	n := len(cm.xs) - 1
	fd := cm.ys
	cm.knots = resize(cm.knots, n+1)
	f := cm.knots
	if n == 1 {
		f[0], f[1] = fd[1], fd[1]
	} else {
		for i := 1; i < n; i++ {
			hi := cm.xs[i] - cm.xs[i-1]
			hn := cm.xs[i+1] - cm.xs[i]
			f[i] = (hi*fd[i+1] + hn*fd[i]) / (hi + hn)
		}
		f[0] = fd[1] - 0.5*(f[1]-fd[1])
		f[n] = fd[n] - 0.5*(f[n-1]-fd[n])
		if cm.forcePositive {
			f[0] = clamp(f[0], 0, 2*fd[1])
			for i := 1; i < n; i++ {
				f[i] = clamp(f[i], 0, 2*math.Min(fd[i], fd[i+1]))
			}
			f[n] = clamp(f[n], 0, 2*fd[n])
		}
	}
	cm.primitive = resize(cm.primitive, n+1)
	cm.primitive[0] = 0
	for i := 1; i <= n; i++ {
		cm.primitive[i] = cm.primitive[i-1] + fd[i]*(cm.xs[i]-cm.xs[i-1])
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// segment returns the interval index i >= 1 holding x and the local coordinate in [0,1].
func (cm *convexMonotone) segment(x float64) (int, float64) {
	i := cm.locate(x) + 1
	h := cm.xs[i] - cm.xs[i-1]
	return i, (x - cm.xs[i-1]) / h
}

// shape evaluates the Hagan-West correction g, its derivative in local units and its
// integral from 0 to u, given the end deviations g0 and g1.
func shape(g0, g1, u float64) (g, dg, integral float64) {
	switch {
	case g0 == 0 && g1 == 0:
		return 0, 0, 0
	case (g0 > 0 && g1 <= -0.5*g0 && g1 >= -2*g0) || (g0 < 0 && g1 >= -0.5*g0 && g1 <= -2*g0):
		g = g0*(1-4*u+3*u*u) + g1*(-2*u+3*u*u)
		dg = g0*(-4+6*u) + g1*(-2+6*u)
		integral = g0*(u-2*u*u+u*u*u) + g1*(-u*u+u*u*u)
		return g, dg, integral
	case (g0 < 0 && g1 > -2*g0) || (g0 > 0 && g1 < -2*g0):
		eta := (g1 + 2*g0) / (g1 - g0)
		if u <= eta {
			return g0, 0, g0 * u
		}
		r := (u - eta) / (1 - eta)
		g = g0 + (g1-g0)*r*r
		dg = 2 * (g1 - g0) * r / (1 - eta)
		integral = g0*u + (g1-g0)*(u-eta)*r*r/3
		return g, dg, integral
	case (g0 > 0 && g1 < 0 && g1 > -0.5*g0) || (g0 < 0 && g1 > 0 && g1 < -0.5*g0):
		eta := 3 * g1 / (g1 - g0)
		if u < eta {
			r := (eta - u) / eta
			g = g1 + (g0-g1)*r*r
			dg = -2 * (g0 - g1) * r / eta
			integral = g1*u + (g0-g1)*(eta-(eta-u)*r*r)/3
			return g, dg, integral
		}
		return g1, 0, g1*u + (g0-g1)*eta/3
	default:
		eta := g1 / (g1 + g0)
		a := -g0 * g1 / (g0 + g1)
		if u <= eta && eta > 0 {
			r := (eta - u) / eta
			g = a + (g0-a)*r*r
			dg = -2 * (g0 - a) * r / eta
			integral = a*u + (g0-a)*(eta-(eta-u)*r*r)/3
			return g, dg, integral
		}
		r := (u - eta) / (1 - eta)
		g = a + (g1-a)*r*r
		dg = 2 * (g1 - a) * r / (1 - eta)
		integral = a*u + (g0-a)*eta/3 + (g1-a)*(u-eta)*r*r/3
		return g, dg, integral
	}
}

func (cm *convexMonotone) ValueAt(x float64) (float64, error) {
	if err := cm.checkRange(x); err != nil {
		return 0, err
	}
	n := len(cm.xs) - 1
	switch {
	case x <= cm.xs[0]:
		return cm.knots[0], nil
	case x >= cm.xs[n]:
		return cm.knots[n], nil
	}
	i, u := cm.segment(x)
	g, _, _ := shape(cm.knots[i-1]-cm.ys[i], cm.knots[i]-cm.ys[i], u)
	return cm.ys[i] + g, nil
}

func (cm *convexMonotone) DerivativeAt(x float64) (float64, error) {
	if err := cm.checkRange(x); err != nil {
		return 0, err
	}
	n := len(cm.xs) - 1
	if x < cm.xs[0] || x > cm.xs[n] {
		return 0, nil
	}
	i, u := cm.segment(x)
	_, dg, _ := shape(cm.knots[i-1]-cm.ys[i], cm.knots[i]-cm.ys[i], u)
	return dg / (cm.xs[i] - cm.xs[i-1]), nil
}

func (cm *convexMonotone) Primitive(x float64) (float64, error) {
	if err := cm.checkRange(x); err != nil {
		return 0, err
	}
	n := len(cm.xs) - 1
	switch {
	case x <= cm.xs[0]:
		return cm.knots[0] * (x - cm.xs[0]), nil
	case x >= cm.xs[n]:
		return cm.primitive[n] + cm.knots[n]*(x-cm.xs[n]), nil
	}
	i, u := cm.segment(x)
	h := cm.xs[i] - cm.xs[i-1]
	_, _, integral := shape(cm.knots[i-1]-cm.ys[i], cm.knots[i]-cm.ys[i], u)
	return cm.primitive[i-1] + h*(cm.ys[i]*u+integral), nil
}
