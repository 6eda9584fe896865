// Package solver finds roots of one-dimensional functions.
package solver

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotBracketed means no sign change was found before the evaluation budget ran out.
	ErrNotBracketed = errors.New("root not bracketed")

	// ErrMaxEvaluations means the bracket was found but Brent did not converge in budget.
	ErrMaxEvaluations = errors.New("maximum number of function evaluations exceeded")

	// ErrInvalidBracket flags bounds or guesses the solver cannot start from.
	ErrInvalidBracket = errors.New("invalid bracket")
)

const (
	defaultMaxEvaluations = 100
	defaultGrowthFactor   = 1.6
	machineEpsilon        = 2.220446049250313e-16
)

// Error carries solver state at the point of failure.
type Error struct {
	Reason       error
	Evaluations  int
	Low, High    float64
	LastResidual float64
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v after %d evaluations, bracket [%g, %g], last residual %g",
		e.Reason, e.Evaluations, e.Low, e.High, e.LastResidual)
}

func (e *Error) Unwrap() error { return e.Reason }

// Result is a converged root.
type Result struct {
	Root        float64
	Evaluations int
}

// Brent is Brent's method with a geometric bracketing phase.
type Brent struct {
	maxEvaluations int
	growthFactor   float64
	lower, upper   float64
}

// Option configures a Brent solver.
type Option func(b *Brent)

// WithBounds restricts every evaluation point to [lower, upper].
func WithBounds(lower, upper float64) Option {
	return func(b *Brent) {
		b.lower, b.upper = lower, upper
	}
}

// WithGrowthFactor sets how fast the bracket widens while searching for a sign change.
func WithGrowthFactor(g float64) Option {
	return func(b *Brent) {
		if g > 1 {
			b.growthFactor = g
		}
	}
}

// NewBrent returns a solver capped at maxEvaluations objective calls.
func NewBrent(maxEvaluations int, opts ...Option) *Brent {
	if maxEvaluations < 1 {
		maxEvaluations = defaultMaxEvaluations
	}
	b := &Brent{
		maxEvaluations: maxEvaluations,
		growthFactor:   defaultGrowthFactor,
		lower:          math.Inf(-1),
		upper:          math.Inf(1),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Func is an objective; errors abort the solve.
type Func func(x float64) (float64, error)

type state struct {
	f           Func
	evaluations int
	last        float64
}

func (s *state) eval(x float64) (float64, error) {
	v, err := s.f(x)
	s.evaluations++
	if err != nil {
		return 0, err
	}
	s.last = v
	return v, nil
}

func (b *Brent) enforceBounds(x float64) float64 {
	return math.Max(b.lower, math.Min(x, b.upper))
}

// Solve brackets a root starting at guess with an initial half-width of step,
// widening geometrically within the bounds, then refines it to accuracy in x.
func (b *Brent) Solve(f Func, accuracy, guess, step float64) (Result, error) {
	if !(accuracy > 0) || !(step > 0) {
		return Result{}, fmt.Errorf("Brent.Solve: accuracy %g and step %g must be positive: %w", accuracy, step, ErrInvalidBracket)
	}
	if guess < b.lower || guess > b.upper {
		return Result{}, fmt.Errorf("Brent.Solve: guess %g outside [%g, %g]: %w", guess, b.lower, b.upper, ErrInvalidBracket)
	}
	s := &state{f: f}

	root := guess
	fxMax, err := s.eval(root)
	if err != nil {
		return Result{}, fmt.Errorf("Brent.Solve: %w", err)
	}
	if fxMax == 0 {
		return Result{Root: root, Evaluations: s.evaluations}, nil
	}

	var xMin, xMax, fxMin float64
	if fxMax > 0 {
		xMin = b.enforceBounds(root - step)
		xMax = root
		if fxMin, err = s.eval(xMin); err != nil {
			return Result{}, fmt.Errorf("Brent.Solve: %w", err)
		}
	} else {
		xMin = root
		fxMin = fxMax
		xMax = b.enforceBounds(root + step)
		if fxMax, err = s.eval(xMax); err != nil {
			return Result{}, fmt.Errorf("Brent.Solve: %w", err)
		}
	}

	for s.evaluations <= b.maxEvaluations {
		if fxMin*fxMax <= 0 {
			switch {
			case fxMin == 0:
				return Result{Root: xMin, Evaluations: s.evaluations}, nil
			case fxMax == 0:
				return Result{Root: xMax, Evaluations: s.evaluations}, nil
			}
			return b.refine(s, accuracy, xMin, fxMin, xMax, fxMax)
		}
		if math.Abs(fxMin) < math.Abs(fxMax) {
			xMin = b.enforceBounds(xMin + b.growthFactor*(xMin-xMax))
			if fxMin, err = s.eval(xMin); err != nil {
				return Result{}, fmt.Errorf("Brent.Solve: %w", err)
			}
		} else {
			xMax = b.enforceBounds(xMax + b.growthFactor*(xMax-xMin))
			if fxMax, err = s.eval(xMax); err != nil {
				return Result{}, fmt.Errorf("Brent.Solve: %w", err)
			}
		}
	}
	return Result{}, &Error{
		Reason:       ErrNotBracketed,
		Evaluations:  s.evaluations,
		Low:          xMin,
		High:         xMax,
		LastResidual: math.Min(math.Abs(fxMin), math.Abs(fxMax)),
	}
}

// SolveBracketed refines a root known to lie in [xMin, xMax].
func (b *Brent) SolveBracketed(f Func, accuracy, xMin, xMax float64) (Result, error) {
	if !(xMin < xMax) {
		return Result{}, fmt.Errorf("Brent.SolveBracketed: [%g, %g]: %w", xMin, xMax, ErrInvalidBracket)
	}
	s := &state{f: f}
	fxMin, err := s.eval(xMin)
	if err != nil {
		return Result{}, fmt.Errorf("Brent.SolveBracketed: %w", err)
	}
	if fxMin == 0 {
		return Result{Root: xMin, Evaluations: s.evaluations}, nil
	}
	fxMax, err := s.eval(xMax)
	if err != nil {
		return Result{}, fmt.Errorf("Brent.SolveBracketed: %w", err)
	}
	if fxMax == 0 {
		return Result{Root: xMax, Evaluations: s.evaluations}, nil
	}
	if fxMin*fxMax > 0 {
		return Result{}, &Error{
			Reason:       ErrNotBracketed,
			Evaluations:  s.evaluations,
			Low:          xMin,
			High:         xMax,
			LastResidual: math.Min(math.Abs(fxMin), math.Abs(fxMax)),
		}
	}
	return b.refine(s, accuracy, xMin, fxMin, xMax, fxMax)
}

func (b *Brent) refine(s *state, accuracy, xMin, fxMin, xMax, fxMax float64) (Result, error) {
	root := 0.5 * (xMin + xMax)
	froot, err := s.eval(root)
	if err != nil {
		return Result{}, fmt.Errorf("Brent.refine: %w", err)
	}
	if froot*fxMin < 0 {
		xMax, fxMax = xMin, fxMin
	} else {
		xMin, fxMin = xMax, fxMax
	}
	d := root - xMax
	e := d

	for s.evaluations <= b.maxEvaluations {
		if (froot > 0 && fxMax > 0) || (froot < 0 && fxMax < 0) {
			xMax, fxMax = xMin, fxMin
			d = root - xMin
			e = d
		}
		if math.Abs(fxMax) < math.Abs(froot) {
			xMin, root, xMax = root, xMax, root
			fxMin, froot, fxMax = froot, fxMax, froot
		}
		tol := 2*machineEpsilon*math.Abs(root) + 0.5*accuracy
		xMid := 0.5 * (xMax - root)
		if math.Abs(xMid) <= tol || froot == 0 {
			return Result{Root: root, Evaluations: s.evaluations}, nil
		}
		if math.Abs(e) >= tol && math.Abs(fxMin) > math.Abs(froot) {
			// Inverse quadratic interpolation, or secant when only two points differ.
			ratio := froot / fxMin
			var p, q float64
			if xMin == xMax {
				p = 2 * xMid * ratio
				q = 1 - ratio
			} else {
				q = fxMin / fxMax
				r := froot / fxMax
				p = ratio * (2*xMid*q*(q-r) - (root-xMin)*(r-1))
				q = (q - 1) * (r - 1) * (ratio - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xMid*q - math.Abs(tol*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xMid
				e = d
			}
		} else {
			d = xMid
			e = d
		}
		xMin, fxMin = root, froot
		if math.Abs(d) > tol {
			root += d
		} else {
			root += math.Copysign(tol, xMid)
		}
		if froot, err = s.eval(root); err != nil {
			return Result{}, fmt.Errorf("Brent.refine: %w", err)
		}
	}
	return Result{}, &Error{
		Reason:       ErrMaxEvaluations,
		Evaluations:  s.evaluations,
		Low:          math.Min(root, xMax),
		High:         math.Max(root, xMax),
		LastResidual: s.last,
	}
}
