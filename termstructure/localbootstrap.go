package termstructure

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/ratecurve/utils"
)

const (
	minDamping  = 1.0 / 1024
	stallFactor = 1e3
)

// LocalBootstrap solves windows of up to Localisation trailing nodes jointly
// with a damped Newton iteration on a finite-difference Jacobian. Each new
// node may revise the previous ones in its window.
type LocalBootstrap struct{}

func (LocalBootstrap) Name() string { return "LocalBootstrap" }

func (LocalBootstrap) bootstrap(p *problem) error {
	if err := p.checkQuotes(); err != nil {
		return err
	}
	window := p.cfg.Localisation
	if window < 1 {
		window = 1
	}
	n := p.nodes()
	previous := make([]float64, n)
	global := p.curve.method.Global()

	for iteration := 0; ; iteration++ {
		copy(previous, p.curve.data)
		for i := 1; i < n; i++ {
			if iteration == 0 {
				if _, _, _, err := p.seed(i, true); err != nil {
					return fmt.Errorf("%s: helper %d: %w", p.name, i-1, err)
				}
			}
			if err := p.solveWindow(max(1, i-window+1), i); err != nil {
				return err
			}
		}
		if !global {
			p.logger.Info("bootstrap completed", zap.String("curve", p.name), zap.Int("iterations", iteration+1))
			return nil
		}
		if iteration > 0 {
			change := floats.Distance(p.curve.data, previous, math.Inf(1))
			if change <= p.cfg.Accuracy {
				p.logger.Info("bootstrap completed", zap.String("curve", p.name), zap.Int("iterations", iteration+1))
				return nil
			}
			if iteration+1 >= p.cfg.MaxIterations {
				p.logger.Warn("bootstrap did not converge", zap.String("curve", p.name),
					zap.Int("iterations", iteration+1), zap.Float64("change", change))
				return &BootstrapError{
					HelperIndex:  -1,
					LastResidual: change,
					Err:          fmt.Errorf("node change %g above accuracy after %d iterations", change, iteration+1),
				}
			}
		}
	}
}

// windowResiduals sets nodes lo..hi from x and fills y with the quote errors
// of the matching helpers.
func (p *problem) windowResiduals(lo int, y, x []float64) error {
	for k, v := range x {
		p.trait().setNode(p.curve, lo+k, v)
	}
	if err := p.curve.refit(); err != nil {
		return err
	}
	for k := range y {
		r, err := p.helpers[lo+k-1].QuoteError(p.curve)
		if err != nil {
			return err
		}
		y[k] = r
	}
	return nil
}

func (p *problem) windowBounds(lo int, x []float64) {
	if p.trait() != Discount {
		for k := range x {
			x[k] = math.Max(-p.cfg.MaxRate, math.Min(p.cfg.MaxRate, x[k]))
		}
		return
	}
	for k := range x {
		x[k] = math.Max(p.cfg.MinDiscountFactor, x[k])
	}
}

func (p *problem) solveWindow(lo, hi int) error {
	m := hi - lo + 1
	x := append([]float64(nil), p.curve.data[lo:hi+1]...)
	r := make([]float64, m)
	if err := p.windowResiduals(lo, r, x); err != nil {
		return fmt.Errorf("%s: helper %d: %w", p.name, hi-1, err)
	}
	evaluations := 1

	fail := func(reason error) error {
		return &BootstrapError{
			HelperIndex:  hi - 1,
			Helper:       p.helpers[hi-1].Name(),
			Pillar:       p.curve.dates[hi],
			Low:          floats.Min(x),
			High:         floats.Max(x),
			LastResidual: floats.Norm(r, math.Inf(1)),
			Evaluations:  evaluations,
			Err:          reason,
		}
	}

	var ferr error
	f := func(y, z []float64) {
		evaluations++
		if err := p.windowResiduals(lo, y, z); err != nil && ferr == nil {
			ferr = err
		}
	}

	jac := mat.NewDense(m, m, nil)
	trial := make([]float64, m)
	trialR := make([]float64, m)
	for step := 0; step < p.cfg.MaxEvaluations; step++ {
		norm := floats.Norm(r, math.Inf(1))
		if norm <= p.cfg.Accuracy {
			p.logger.Debug("window solved",
				zap.String("curve", p.name),
				zap.Int("helper", hi-1),
				zap.String("instrument", p.helpers[hi-1].Name()),
				zap.String("pillar", utils.FormatDate(p.curve.dates[hi])),
				zap.Int("window", m),
				zap.Float64("value", x[m-1]),
				zap.Int("evaluations", evaluations))
			return nil
		}

		fd.Jacobian(jac, f, x, &fd.JacobianSettings{
			Formula:     fd.Forward,
			Step:        p.cfg.JacobianStep,
			OriginValue: r,
		})
		if ferr != nil {
			return fmt.Errorf("%s: helper %d: %w", p.name, hi-1, ferr)
		}
		var dx mat.VecDense
		if err := dx.SolveVec(jac, mat.NewVecDense(m, append([]float64(nil), r...))); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
				return fail(fmt.Errorf("singular Jacobian: %w", err))
			}
		}

		accepted := false
		for lambda := 1.0; lambda >= minDamping; lambda /= 2 {
			for k := range trial {
				trial[k] = x[k] - lambda*dx.AtVec(k)
			}
			p.windowBounds(lo, trial)
			f(trialR, trial)
			if ferr != nil {
				return fmt.Errorf("%s: helper %d: %w", p.name, hi-1, ferr)
			}
			if floats.Norm(trialR, math.Inf(1)) < norm {
				copy(x, trial)
				copy(r, trialR)
				accepted = true
				break
			}
		}
		if !accepted {
			if err := p.windowResiduals(lo, r, x); err != nil {
				return fmt.Errorf("%s: helper %d: %w", p.name, hi-1, err)
			}
			// rounding noise can keep the residual just above accuracy
			if norm <= stallFactor*p.cfg.Accuracy {
				return nil
			}
			return fail(errors.New("newton step did not reduce the residual"))
		}
	}
	return fail(fmt.Errorf("residual above %g after %d newton steps", p.cfg.Accuracy, p.cfg.MaxEvaluations))
}
