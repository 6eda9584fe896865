package interpolation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DerivativeApprox selects how node slopes are estimated.
type DerivativeApprox int

const (
	// Spline solves for C2 continuity subject to the boundary conditions.
	Spline DerivativeApprox = iota
	// Parabolic uses the slope of the parabola through three neighbours.
	Parabolic
	// FritschButland is a local, monotone-preserving weighted harmonic mean.
	FritschButland
	// Kruger is the harmonic mean of neighbouring secants, zero at extrema.
	Kruger
	// Harmonic is the weighted harmonic mean of neighbouring secants.
	Harmonic
)

// BoundaryCondition fixes the spline's end equations.
type BoundaryCondition int

const (
	// NotAKnot makes the third derivative continuous at the second and
	// second-to-last knots.
	NotAKnot BoundaryCondition = iota
	FirstDerivative
	SecondDerivative
	// Lagrange matches the end slope of the cubic through the four end points.
	Lagrange
)

// Cubic is a piecewise cubic Hermite family. Boundary conditions apply to the
// Spline approximation only; local approximations derive their own end slopes.
type Cubic struct {
	Approx     DerivativeApprox
	Monotonic  bool
	Left       BoundaryCondition
	LeftValue  float64
	Right      BoundaryCondition
	RightValue float64
}

// Common presets.
var (
	CubicNaturalSpline          = Cubic{Approx: Spline, Left: SecondDerivative, Right: SecondDerivative}
	MonotonicCubicNaturalSpline = Cubic{Approx: Spline, Monotonic: true, Left: SecondDerivative, Right: SecondDerivative}
	NotAKnotCubicSpline         = Cubic{Approx: Spline, Left: NotAKnot, Right: NotAKnot}
	KrugerCubic                 = Cubic{Approx: Kruger}
	HarmonicCubic               = Cubic{Approx: Harmonic}
	FritschButlandCubic         = Cubic{Approx: FritschButland, Monotonic: true}
)

func (c Cubic) New(xs, ys []float64) (Interpolator, error) {
	b, err := newBase(xs, ys, 2)
	if err != nil {
		return nil, fmt.Errorf("Cubic.New: %w", err)
	}
	ci := &CubicInterpolator{base: b, params: c}
	return ci, ci.Update()
}

func (Cubic) Global() bool        { return true }
func (Cubic) RequiredPoints() int { return 2 }

func (c Cubic) String() string {
	name := [...]string{"Spline", "Parabolic", "FritschButland", "Kruger", "Harmonic"}[c.Approx]
	if c.Monotonic {
		name = "Monotonic" + name
	}
	return "Cubic" + name
}

// CubicInterpolator evaluates y[i] + dx*(a[i] + dx*(b[i] + dx*c[i])) on segment i.
type CubicInterpolator struct {
	base
	params Cubic

	dx, slopes, tmp []float64
	a, b, c         []float64
	primitive       []float64
	monotoneFixed   bool
}

// ACoefficients returns the first-order coefficients of each segment.
func (ci *CubicInterpolator) ACoefficients() []float64 { return ci.a }

// BCoefficients returns the second-order coefficients of each segment.
func (ci *CubicInterpolator) BCoefficients() []float64 { return ci.b }

// CCoefficients returns the third-order coefficients of each segment.
func (ci *CubicInterpolator) CCoefficients() []float64 { return ci.c }

// MonotonicityAdjusted reports whether the Hyman filter changed any slope.
func (ci *CubicInterpolator) MonotonicityAdjusted() bool { return ci.monotoneFixed }

func (ci *CubicInterpolator) Update() error {
	if err := ci.checkSorted(); err != nil {
		return err
	}
	n := len(ci.xs)
	ci.dx = resize(ci.dx, n-1)
	ci.slopes = resize(ci.slopes, n-1)
	ci.tmp = resize(ci.tmp, n)
	for i := 0; i < n-1; i++ {
		ci.dx[i] = ci.xs[i+1] - ci.xs[i]
		ci.slopes[i] = (ci.ys[i+1] - ci.ys[i]) / ci.dx[i]
	}

	var err error
	switch {
	case n == 2:
		ci.tmp[0], ci.tmp[1] = ci.slopes[0], ci.slopes[0]
	case ci.params.Approx == Spline:
		err = ci.splineSlopes()
	default:
		ci.localSlopes()
	}
	if err != nil {
		return fmt.Errorf("CubicInterpolator.Update: %w", err)
	}
	ci.monotoneFixed = false
	if ci.params.Monotonic && n > 2 {
		ci.hymanFilter()
	}
	ci.coefficients()
	return nil
}

func (ci *CubicInterpolator) splineSlopes() error {
	n := len(ci.xs)
	dx, s, p := ci.dx, ci.slopes, ci.params
	if n == 3 && p.Left == NotAKnot && p.Right == NotAKnot {
		// The single cubic through three points is the parabola.
		ci.parabolicSlopes()
		return nil
	}

	l := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)
	for i := 1; i < n-1; i++ {
		l.Set(i, i-1, dx[i])
		l.Set(i, i, 2*(dx[i]+dx[i-1]))
		l.Set(i, i+1, dx[i-1])
		rhs.SetVec(i, 3*(dx[i]*s[i-1]+dx[i-1]*s[i]))
	}

	switch p.Left {
	case NotAKnot:
		l.Set(0, 0, dx[1]*(dx[1]+dx[0]))
		l.Set(0, 1, (dx[0]+dx[1])*(dx[0]+dx[1]))
		rhs.SetVec(0, s[0]*dx[1]*(2*dx[1]+3*dx[0])+s[1]*dx[0]*dx[0])
	case FirstDerivative:
		l.Set(0, 0, 1)
		rhs.SetVec(0, p.LeftValue)
	case SecondDerivative:
		l.Set(0, 0, 2)
		l.Set(0, 1, 1)
		rhs.SetVec(0, 3*s[0]-p.LeftValue*dx[0]/2)
	case Lagrange:
		l.Set(0, 0, 1)
		rhs.SetVec(0, ci.endSlope(0, 1, 2, 3, ci.xs[0]))
	default:
		return fmt.Errorf("unknown left boundary condition %d", p.Left)
	}

	switch p.Right {
	case NotAKnot:
		l.Set(n-1, n-2, -(dx[n-2]+dx[n-3])*(dx[n-2]+dx[n-3]))
		l.Set(n-1, n-1, -dx[n-3]*(dx[n-3]+dx[n-2]))
		rhs.SetVec(n-1, -s[n-3]*dx[n-2]*dx[n-2]-s[n-2]*dx[n-3]*(3*dx[n-2]+2*dx[n-3]))
	case FirstDerivative:
		l.Set(n-1, n-1, 1)
		rhs.SetVec(n-1, p.RightValue)
	case SecondDerivative:
		l.Set(n-1, n-2, 1)
		l.Set(n-1, n-1, 2)
		rhs.SetVec(n-1, 3*s[n-2]+p.RightValue*dx[n-2]/2)
	case Lagrange:
		l.Set(n-1, n-1, 1)
		rhs.SetVec(n-1, ci.endSlope(n-4, n-3, n-2, n-1, ci.xs[n-1]))
	default:
		return fmt.Errorf("unknown right boundary condition %d", p.Right)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(l, rhs); err != nil {
		return fmt.Errorf("spline system: %w", err)
	}
	for i := 0; i < n; i++ {
		ci.tmp[i] = sol.AtVec(i)
	}
	return nil
}

// endSlope differentiates the Lagrange polynomial through the given nodes at x.
// With only three nodes available the first index is negative and a parabola is used.
func (ci *CubicInterpolator) endSlope(i0, i1, i2, i3 int, x float64) float64 {
	idx := []int{i0, i1, i2, i3}
	if i0 < 0 {
		idx = idx[1:]
	}
	if len(ci.xs) == 3 && idx[len(idx)-1] > 2 {
		idx = []int{0, 1, 2}
	}
	d := 0.0
	for _, j := range idx {
		xj := ci.xs[j]
		sum := 0.0
		for _, k := range idx {
			if k == j {
				continue
			}
			term := 1 / (xj - ci.xs[k])
			for _, m := range idx {
				if m != j && m != k {
					term *= (x - ci.xs[m]) / (xj - ci.xs[m])
				}
			}
			sum += term
		}
		d += ci.ys[j] * sum
	}
	return d
}

func (ci *CubicInterpolator) parabolicSlopes() {
	n := len(ci.xs)
	dx, s := ci.dx, ci.slopes
	for i := 1; i < n-1; i++ {
		ci.tmp[i] = (dx[i-1]*s[i] + dx[i]*s[i-1]) / (dx[i] + dx[i-1])
	}
	ci.tmp[0] = ((2*dx[0]+dx[1])*s[0] - dx[0]*s[1]) / (dx[0] + dx[1])
	ci.tmp[n-1] = ((2*dx[n-2]+dx[n-3])*s[n-2] - dx[n-2]*s[n-3]) / (dx[n-2] + dx[n-3])
}

func (ci *CubicInterpolator) localSlopes() {
	n := len(ci.xs)
	dx, s := ci.dx, ci.slopes
	switch ci.params.Approx {
	case Parabolic:
		ci.parabolicSlopes()
	case FritschButland:
		for i := 1; i < n-1; i++ {
			lo, hi := math.Min(s[i-1], s[i]), math.Max(s[i-1], s[i])
			if s[i-1]*s[i] <= 0 {
				ci.tmp[i] = 0
			} else {
				ci.tmp[i] = 3 * lo * hi / (hi + 2*lo)
			}
		}
		ci.tmp[0] = ((2*dx[0]+dx[1])*s[0] - dx[0]*s[1]) / (dx[0] + dx[1])
		ci.tmp[n-1] = ((2*dx[n-2]+dx[n-3])*s[n-2] - dx[n-2]*s[n-3]) / (dx[n-2] + dx[n-3])
	case Kruger:
		for i := 1; i < n-1; i++ {
			if s[i-1]*s[i] <= 0 {
				ci.tmp[i] = 0
			} else {
				ci.tmp[i] = 2 / (1/s[i-1] + 1/s[i])
			}
		}
		ci.tmp[0] = (3*s[0] - ci.tmp[1]) / 2
		ci.tmp[n-1] = (3*s[n-2] - ci.tmp[n-2]) / 2
	case Harmonic:
		for i := 1; i < n-1; i++ {
			w1 := 2*dx[i] + dx[i-1]
			w2 := dx[i] + 2*dx[i-1]
			if s[i-1]*s[i] <= 0 {
				ci.tmp[i] = 0
			} else {
				ci.tmp[i] = (w1 + w2) / (w1/s[i-1] + w2/s[i])
			}
		}
		ci.tmp[0] = harmonicEnd(dx[0], dx[1], s[0], s[1])
		ci.tmp[n-1] = harmonicEnd(dx[n-2], dx[n-3], s[n-2], s[n-3])
	}
}

// harmonicEnd is the three-point end slope, clipped to keep the end segment monotone.
func harmonicEnd(h0, h1, s0, s1 float64) float64 {
	d := ((2*h0+h1)*s0 - h0*s1) / (h0 + h1)
	if d*s0 < 0 {
		return 0
	}
	if s0*s1 < 0 && math.Abs(d) > math.Abs(3*s0) {
		return 3 * s0
	}
	return d
}

// hymanFilter limits slopes so the interpolant does not overshoot monotone data.
func (ci *CubicInterpolator) hymanFilter() {
	n := len(ci.xs)
	dx, s, tmp := ci.dx, ci.slopes, ci.tmp
	clip := func(v, limit float64) float64 {
		return math.Copysign(math.Min(math.Abs(v), limit), v)
	}
	for i := 0; i < n; i++ {
		var corrected float64
		switch i {
		case 0:
			if tmp[0]*s[0] > 0 {
				corrected = clip(tmp[0], 3*math.Abs(s[0]))
			}
		case n - 1:
			if tmp[n-1]*s[n-2] > 0 {
				corrected = clip(tmp[n-1], 3*math.Abs(s[n-2]))
			}
		default:
			pm := (s[i-1]*dx[i] + s[i]*dx[i-1]) / (dx[i-1] + dx[i])
			m := 3 * math.Min(math.Min(math.Abs(s[i-1]), math.Abs(s[i])), math.Abs(pm))
			if i > 1 && (s[i-1]-s[i-2])*(s[i]-s[i-1]) > 0 {
				pd := (s[i-1]*(2*dx[i-1]+dx[i-2]) - s[i-2]*dx[i-1]) / (dx[i-2] + dx[i-1])
				if pm*pd > 0 && pm*(s[i-1]-s[i-2]) > 0 {
					m = math.Max(m, 1.5*math.Min(math.Abs(pm), math.Abs(pd)))
				}
			}
			if i < n-2 && (s[i]-s[i-1])*(s[i+1]-s[i]) > 0 {
				pu := (s[i]*(2*dx[i]+dx[i+1]) - s[i+1]*dx[i]) / (dx[i] + dx[i+1])
				if pm*pu > 0 && -pm*(s[i]-s[i-1]) > 0 {
					m = math.Max(m, 1.5*math.Min(math.Abs(pm), math.Abs(pu)))
				}
			}
			if tmp[i]*pm > 0 {
				corrected = clip(tmp[i], m)
			}
		}
		if corrected != tmp[i] {
			tmp[i] = corrected
			ci.monotoneFixed = true
		}
	}
}

func (ci *CubicInterpolator) coefficients() {
	n := len(ci.xs)
	ci.a = resize(ci.a, n-1)
	ci.b = resize(ci.b, n-1)
	ci.c = resize(ci.c, n-1)
	ci.primitive = resize(ci.primitive, n)
	ci.primitive[0] = 0
	for i := 0; i < n-1; i++ {
		dx, s := ci.dx[i], ci.slopes[i]
		ci.a[i] = ci.tmp[i]
		ci.b[i] = (3*s - ci.tmp[i+1] - 2*ci.tmp[i]) / dx
		ci.c[i] = (ci.tmp[i+1] + ci.tmp[i] - 2*s) / (dx * dx)
		ci.primitive[i+1] = ci.primitive[i] + ci.segmentIntegral(i, dx)
	}
}

func (ci *CubicInterpolator) segmentIntegral(i int, dx float64) float64 {
	return dx * (ci.ys[i] + dx*(ci.a[i]/2+dx*(ci.b[i]/3+dx*ci.c[i]/4)))
}

func (ci *CubicInterpolator) ValueAt(x float64) (float64, error) {
	if err := ci.checkRange(x); err != nil {
		return 0, err
	}
	i := ci.locate(x)
	dx := x - ci.xs[i]
	return ci.ys[i] + dx*(ci.a[i]+dx*(ci.b[i]+dx*ci.c[i])), nil
}

func (ci *CubicInterpolator) DerivativeAt(x float64) (float64, error) {
	if err := ci.checkRange(x); err != nil {
		return 0, err
	}
	i := ci.locate(x)
	dx := x - ci.xs[i]
	return ci.a[i] + (2*ci.b[i]+3*ci.c[i]*dx)*dx, nil
}

// SecondDerivativeAt returns the curvature at x.
func (ci *CubicInterpolator) SecondDerivativeAt(x float64) (float64, error) {
	if err := ci.checkRange(x); err != nil {
		return 0, err
	}
	i := ci.locate(x)
	dx := x - ci.xs[i]
	return 2*ci.b[i] + 6*ci.c[i]*dx, nil
}

func (ci *CubicInterpolator) Primitive(x float64) (float64, error) {
	if err := ci.checkRange(x); err != nil {
		return 0, err
	}
	i := ci.locate(x)
	return ci.primitive[i] + ci.segmentIntegral(i, x-ci.xs[i]), nil
}
