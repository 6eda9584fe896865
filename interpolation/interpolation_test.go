package interpolation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratecurve/interpolation"
)

func TestLinearValuesAndPrimitive(t *testing.T) {
	t.Parallel()
	xs := []float64{0, 1, 3}
	ys := []float64{1, 3, 2}
	f, err := interpolation.Linear{}.New(xs, ys)
	require.NoError(t, err)

	for i, x := range xs {
		v, err := f.ValueAt(x)
		require.NoError(t, err)
		assert.InDelta(t, ys[i], v, 1e-15)
	}
	v, _ := f.ValueAt(2)
	assert.InDelta(t, 2.5, v, 1e-15)
	d, _ := f.DerivativeAt(2)
	assert.InDelta(t, -0.5, d, 1e-15)
	p, _ := f.Primitive(3)
	assert.InDelta(t, 2.0+5.0, p, 1e-14)
}

func TestExtrapolationGuard(t *testing.T) {
	t.Parallel()
	methods := []interpolation.Method{
		interpolation.Linear{},
		interpolation.LogLinear{},
		interpolation.BackwardFlat{},
		interpolation.ForwardFlat{},
		interpolation.CubicNaturalSpline,
		interpolation.MonotonicLogCubic,
		interpolation.ConvexMonotone{},
	}
	for _, m := range methods {
		f, err := m.New([]float64{0, 1, 2, 3}, []float64{1, 0.98, 0.95, 0.93})
		require.NoError(t, err, m.String())

		_, err = f.ValueAt(3.5)
		assert.ErrorIs(t, err, interpolation.ErrExtrapolationNotAllowed, m.String())
		_, err = f.ValueAt(-0.1)
		assert.ErrorIs(t, err, interpolation.ErrExtrapolationNotAllowed, m.String())

		f.EnableExtrapolation(true)
		_, err = f.ValueAt(3.5)
		assert.NoError(t, err, m.String())
		assert.False(t, f.IsInRange(3.5))
		assert.True(t, f.IsInRange(3))
	}
}

func TestInvalidNodes(t *testing.T) {
	t.Parallel()
	_, err := interpolation.Linear{}.New([]float64{0, 1}, []float64{1})
	assert.ErrorIs(t, err, interpolation.ErrInvalidNodes)
	_, err = interpolation.Linear{}.New([]float64{0, 0}, []float64{1, 2})
	assert.ErrorIs(t, err, interpolation.ErrInvalidNodes)
	_, err = interpolation.LogLinear{}.New([]float64{0, 1}, []float64{1, -2})
	assert.ErrorIs(t, err, interpolation.ErrInvalidNodes)
	_, err = interpolation.CubicNaturalSpline.New([]float64{0}, []float64{1})
	assert.ErrorIs(t, err, interpolation.ErrInvalidNodes)
}

func TestLogLinearMatchesExponential(t *testing.T) {
	t.Parallel()
	r := 0.04
	xs := []float64{0, 0.5, 2, 5}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = math.Exp(-r * x)
	}
	f, err := interpolation.LogLinear{}.New(xs, ys)
	require.NoError(t, err)
	for _, x := range []float64{0.1, 1.3, 4.9} {
		v, err := f.ValueAt(x)
		require.NoError(t, err)
		assert.InDelta(t, math.Exp(-r*x), v, 1e-15)
		d, _ := f.DerivativeAt(x)
		assert.InDelta(t, -r*math.Exp(-r*x), d, 1e-14)
		p, _ := f.Primitive(x)
		assert.InDelta(t, (1-math.Exp(-r*x))/r, p, 1e-13)
	}
}

func TestUpdateSeesMutatedValues(t *testing.T) {
	t.Parallel()
	xs := []float64{0, 1, 2}
	ys := []float64{0, 1, 2}
	f, err := interpolation.Linear{}.New(xs, ys)
	require.NoError(t, err)

	ys[2] = 4
	require.NoError(t, f.Update())
	v, _ := f.ValueAt(1.5)
	assert.InDelta(t, 2.5, v, 1e-15)
}

func TestFlatInterpolators(t *testing.T) {
	t.Parallel()
	xs := []float64{0, 1, 2}
	ys := []float64{0.01, 0.02, 0.03}

	bf, err := interpolation.BackwardFlat{}.New(xs, ys)
	require.NoError(t, err)
	v, _ := bf.ValueAt(0.5)
	assert.Equal(t, 0.02, v)
	v, _ = bf.ValueAt(1)
	assert.Equal(t, 0.02, v)
	p, _ := bf.Primitive(2)
	assert.InDelta(t, 0.05, p, 1e-16)

	ff, err := interpolation.ForwardFlat{}.New(xs, ys)
	require.NoError(t, err)
	v, _ = ff.ValueAt(0.5)
	assert.Equal(t, 0.01, v)
	v, _ = ff.ValueAt(1)
	assert.Equal(t, 0.02, v)
	v, _ = ff.ValueAt(2)
	assert.Equal(t, 0.03, v)
	p, _ = ff.Primitive(1.5)
	assert.InDelta(t, 0.01+0.5*0.02, p, 1e-16)
}

func TestNotAKnotCondition(t *testing.T) {
	t.Parallel()
	f, err := interpolation.NotAKnotCubicSpline.New([]float64{0, 1, 3, 4}, []float64{0, 0, 2, 2})
	require.NoError(t, err)
	c := f.(*interpolation.CubicInterpolator).CCoefficients()
	require.Len(t, c, 3)
	assert.InDelta(t, c[0], c[1], 1e-14)
	assert.InDelta(t, c[1], c[2], 1e-14)
}

func TestLogCubicNotAKnotCondition(t *testing.T) {
	t.Parallel()
	xs := []float64{0, 0.5, 1, 2, 3, 5, 7, 10}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = math.Exp(-(0.03 + 0.002*x) * x)
	}
	f, err := interpolation.LogCubicNotAKnot.New(xs, ys)
	require.NoError(t, err)
	c := f.(*interpolation.LogCubicInterpolator).Cubic().CCoefficients()
	n := len(c)
	assert.InDelta(t, c[0], c[1], 1e-14)
	assert.InDelta(t, c[n-2], c[n-1], 1e-14)

	_, err = f.Primitive(1)
	assert.ErrorIs(t, err, interpolation.ErrPrimitiveNotAvailable)
}

func TestSplineReproducesCubic(t *testing.T) {
	t.Parallel()
	poly := func(x float64) float64 { return 1 + x - 2*x*x + 0.5*x*x*x }
	deriv := func(x float64) float64 { return 1 - 4*x + 1.5*x*x }
	xs := []float64{0, 0.7, 1.5, 2.2, 3, 4.1}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = poly(x)
	}
	m := interpolation.Cubic{
		Approx: interpolation.Spline,
		Left:   interpolation.FirstDerivative, LeftValue: deriv(xs[0]),
		Right: interpolation.FirstDerivative, RightValue: deriv(xs[len(xs)-1]),
	}
	f, err := m.New(xs, ys)
	require.NoError(t, err)
	for _, x := range []float64{0.3, 1.1, 2.9, 4.0} {
		v, _ := f.ValueAt(x)
		assert.InDelta(t, poly(x), v, 1e-12)
		d, _ := f.DerivativeAt(x)
		assert.InDelta(t, deriv(x), d, 1e-11)
	}
	p, _ := f.Primitive(4.1)
	exact := func(x float64) float64 { return x + x*x/2 - 2*x*x*x/3 + x*x*x*x/8 }
	assert.InDelta(t, exact(4.1), p, 1e-11)

	lagrange := interpolation.Cubic{Approx: interpolation.Spline, Left: interpolation.Lagrange, Right: interpolation.Lagrange}
	g, err := lagrange.New(xs, ys)
	require.NoError(t, err)
	v, _ := g.ValueAt(2.5)
	assert.InDelta(t, poly(2.5), v, 1e-12)
}

func TestNaturalSplineEndCurvature(t *testing.T) {
	t.Parallel()
	f, err := interpolation.CubicNaturalSpline.New([]float64{0, 1, 2, 4}, []float64{1, 2, 0, 3})
	require.NoError(t, err)
	ci := f.(*interpolation.CubicInterpolator)
	left, _ := ci.SecondDerivativeAt(0)
	right, _ := ci.SecondDerivativeAt(4)
	assert.InDelta(t, 0, left, 1e-13)
	assert.InDelta(t, 0, right, 1e-13)
}

func TestMonotonicCubicDoesNotOvershoot(t *testing.T) {
	t.Parallel()
	xs := []float64{0, 1, 2, 3, 4, 5}
	ys := []float64{0, 0, 0.1, 1, 1, 1}
	for _, m := range []interpolation.Cubic{
		interpolation.MonotonicCubicNaturalSpline,
		interpolation.FritschButlandCubic,
		interpolation.KrugerCubic,
		{Approx: interpolation.Harmonic, Monotonic: true},
	} {
		f, err := m.New(xs, ys)
		require.NoError(t, err, m.String())
		prev := 0.0
		for k := 0; k <= 500; k++ {
			x := 5 * float64(k) / 500
			v, err := f.ValueAt(x)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, v, prev-1e-12, "%s not monotone at %g", m, x)
			assert.LessOrEqual(t, v, 1+1e-12, "%s overshoots at %g", m, x)
			prev = v
		}
	}

	plain, err := interpolation.CubicNaturalSpline.New(xs, ys)
	require.NoError(t, err)
	v, _ := plain.ValueAt(3.4)
	assert.Greater(t, v, 1.0, "unfiltered spline overshoots on this data")

	mono, _ := interpolation.MonotonicCubicNaturalSpline.New(xs, ys)
	assert.True(t, mono.(*interpolation.CubicInterpolator).MonotonicityAdjusted())
}

func TestConvexMonotonePreservesAverages(t *testing.T) {
	t.Parallel()
	xs := []float64{0, 0.5, 1, 2, 3, 5, 10}
	fwd := []float64{0, 0.030, 0.032, 0.035, 0.034, 0.038, 0.036}
	f, err := interpolation.ConvexMonotone{ForcePositive: true}.New(xs, fwd)
	require.NoError(t, err)

	for i := 1; i < len(xs); i++ {
		lo, err := f.Primitive(xs[i-1])
		require.NoError(t, err)
		hi, err := f.Primitive(xs[i])
		require.NoError(t, err)
		assert.InDelta(t, fwd[i]*(xs[i]-xs[i-1]), hi-lo, 1e-14, "interval %d", i)
	}

	// Continuity at interior nodes.
	for i := 1; i < len(xs)-1; i++ {
		l, _ := f.ValueAt(xs[i] - 1e-9)
		r, _ := f.ValueAt(xs[i] + 1e-9)
		assert.InDelta(t, l, r, 1e-7, "node %d", i)
	}

	// Primitive is the integral of the value.
	const h = 1e-6
	for _, x := range []float64{0.3, 1.7, 4.2, 8} {
		pu, _ := f.Primitive(x + h)
		pd, _ := f.Primitive(x - h)
		v, _ := f.ValueAt(x)
		assert.InDelta(t, v, (pu-pd)/(2*h), 1e-8)
	}
}

func TestConvexMonotonePositive(t *testing.T) {
	t.Parallel()
	xs := []float64{0, 1, 2, 3}
	fwd := []float64{0, 0.001, 0.05, 0.001}
	f, err := interpolation.ConvexMonotone{ForcePositive: true}.New(xs, fwd)
	require.NoError(t, err)
	for k := 0; k <= 300; k++ {
		v, err := f.ValueAt(3 * float64(k) / 300)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, -1e-15)
	}
}

func TestParseMethod(t *testing.T) {
	t.Parallel()
	m, err := interpolation.ParseMethod("Log-Linear")
	require.NoError(t, err)
	assert.Equal(t, interpolation.LogLinear{}, m)

	m, err = interpolation.ParseMethod("monotonic_log_cubic")
	require.NoError(t, err)
	assert.Equal(t, interpolation.MonotonicLogCubic, m)

	_, err = interpolation.ParseMethod("quintic")
	assert.Error(t, err)
}
