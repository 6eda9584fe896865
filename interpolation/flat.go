package interpolation

import "fmt"

// BackwardFlat holds y[i+1] over (x[i], x[i+1]].
type BackwardFlat struct{}

func (BackwardFlat) New(xs, ys []float64) (Interpolator, error) {
	b, err := newBase(xs, ys, 2)
	if err != nil {
		return nil, fmt.Errorf("BackwardFlat.New: %w", err)
	}
	f := &backwardFlat{base: b}
	return f, f.Update()
}

func (BackwardFlat) Global() bool        { return false }
func (BackwardFlat) RequiredPoints() int { return 2 }
func (BackwardFlat) String() string      { return "BackwardFlat" }

type backwardFlat struct {
	base
	primitive []float64
}

func (f *backwardFlat) Update() error {
	if err := f.checkSorted(); err != nil {
		return err
	}
	f.primitive = resize(f.primitive, len(f.xs))
	f.primitive[0] = 0
	for i := 1; i < len(f.xs); i++ {
		f.primitive[i] = f.primitive[i-1] + (f.xs[i]-f.xs[i-1])*f.ys[i]
	}
	return nil
}

func (f *backwardFlat) ValueAt(x float64) (float64, error) {
	if err := f.checkRange(x); err != nil {
		return 0, err
	}
	if x <= f.xs[0] {
		return f.ys[0], nil
	}
	i := f.locate(x)
	if x == f.xs[i] {
		return f.ys[i], nil
	}
	return f.ys[i+1], nil
}

func (f *backwardFlat) DerivativeAt(x float64) (float64, error) {
	return 0, f.checkRange(x)
}

func (f *backwardFlat) Primitive(x float64) (float64, error) {
	if err := f.checkRange(x); err != nil {
		return 0, err
	}
	i := f.locate(x)
	return f.primitive[i] + (x-f.xs[i])*f.ys[i+1], nil
}

// ForwardFlat holds y[i] over [x[i], x[i+1]).
type ForwardFlat struct{}

func (ForwardFlat) New(xs, ys []float64) (Interpolator, error) {
	b, err := newBase(xs, ys, 2)
	if err != nil {
		return nil, fmt.Errorf("ForwardFlat.New: %w", err)
	}
	f := &forwardFlat{base: b}
	return f, f.Update()
}

func (ForwardFlat) Global() bool        { return false }
func (ForwardFlat) RequiredPoints() int { return 2 }
func (ForwardFlat) String() string      { return "ForwardFlat" }

type forwardFlat struct {
	base
	primitive []float64
}

func (f *forwardFlat) Update() error {
	if err := f.checkSorted(); err != nil {
		return err
	}
	f.primitive = resize(f.primitive, len(f.xs))
	f.primitive[0] = 0
	for i := 1; i < len(f.xs); i++ {
		f.primitive[i] = f.primitive[i-1] + (f.xs[i]-f.xs[i-1])*f.ys[i-1]
	}
	return nil
}

func (f *forwardFlat) ValueAt(x float64) (float64, error) {
	if err := f.checkRange(x); err != nil {
		return 0, err
	}
	n := len(f.xs)
	if x >= f.xs[n-1] {
		return f.ys[n-1], nil
	}
	return f.ys[f.locate(x)], nil
}

func (f *forwardFlat) DerivativeAt(x float64) (float64, error) {
	return 0, f.checkRange(x)
}

func (f *forwardFlat) Primitive(x float64) (float64, error) {
	if err := f.checkRange(x); err != nil {
		return 0, err
	}
	n := len(f.xs)
	if x >= f.xs[n-1] {
		return f.primitive[n-1] + (x-f.xs[n-1])*f.ys[n-1], nil
	}
	i := f.locate(x)
	return f.primitive[i] + (x-f.xs[i])*f.ys[i], nil
}
