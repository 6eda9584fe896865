// Package interpolation fits continuous functions through curve nodes.
//
// Interpolators keep references to the caller's x and y slices: after the
// caller mutates y values in place, Update recomputes the internal
// coefficients. This is how the bootstrap moves one node at a time without
// rebuilding the interpolator.
package interpolation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/meenmo/ratecurve/utils"
)

var (
	// ErrExtrapolationNotAllowed is returned for queries outside [XMin, XMax]
	// unless extrapolation was enabled.
	ErrExtrapolationNotAllowed = errors.New("extrapolation not allowed")

	// ErrPrimitiveNotAvailable is returned by interpolators without a closed-form integral.
	ErrPrimitiveNotAvailable = errors.New("primitive not available")

	// ErrInvalidNodes flags mismatched, too few, or unsorted nodes.
	ErrInvalidNodes = errors.New("invalid interpolation nodes")
)

// Interpolator evaluates a fitted function and its first derivative and integral.
type Interpolator interface {
	ValueAt(x float64) (float64, error)
	DerivativeAt(x float64) (float64, error)
	Primitive(x float64) (float64, error)
	// Update refits after the underlying y values changed.
	Update() error
	XMin() float64
	XMax() float64
	IsInRange(x float64) bool
	EnableExtrapolation(on bool)
}

// Method builds interpolators of one family.
type Method interface {
	New(xs, ys []float64) (Interpolator, error)
	// Global reports whether moving one node can change the function away
	// from that node's neighbouring segments.
	Global() bool
	RequiredPoints() int
	String() string
}

type base struct {
	xs, ys      []float64
	extrapolate bool
}

func newBase(xs, ys []float64, required int) (base, error) {
	if len(xs) != len(ys) {
		return base{}, fmt.Errorf("newBase: %d x values vs %d y values: %w", len(xs), len(ys), ErrInvalidNodes)
	}
	if len(xs) < required {
		return base{}, fmt.Errorf("newBase: %d points, at least %d required: %w", len(xs), required, ErrInvalidNodes)
	}
	b := base{xs: xs, ys: ys}
	return b, b.checkSorted()
}

func (b *base) checkSorted() error {
	for i := 1; i < len(b.xs); i++ {
		if !(b.xs[i] > b.xs[i-1]) {
			return fmt.Errorf("checkSorted: x[%d]=%g not above x[%d]=%g: %w", i, b.xs[i], i-1, b.xs[i-1], ErrInvalidNodes)
		}
	}
	return nil
}

func (b *base) XMin() float64 { return b.xs[0] }

func (b *base) XMax() float64 { return b.xs[len(b.xs)-1] }

func (b *base) EnableExtrapolation(on bool) { b.extrapolate = on }

func (b *base) IsInRange(x float64) bool {
	lo, hi := b.XMin(), b.XMax()
	return (x >= lo || utils.CloseEnough(x, lo)) && (x <= hi || utils.CloseEnough(x, hi))
}

func (b *base) checkRange(x float64) error {
	if b.extrapolate || b.IsInRange(x) {
		return nil
	}
	return fmt.Errorf("x=%g outside [%g, %g]: %w", x, b.XMin(), b.XMax(), ErrExtrapolationNotAllowed)
}

// locate returns the segment index i with xs[i] <= x < xs[i+1], clamped to the
// first and last segments.
func (b *base) locate(x float64) int {
	n := len(b.xs)
	if x < b.xs[0] {
		return 0
	}
	if x >= b.xs[n-1] {
		return n - 2
	}
	return sort.Search(n, func(i int) bool { return b.xs[i] > x }) - 1
}
