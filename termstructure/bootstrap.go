package termstructure

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/ratecurve/config"
	"github.com/meenmo/ratecurve/ratehelper"
	"github.com/meenmo/ratecurve/solver"
	"github.com/meenmo/ratecurve/utils"
)

// Bootstrapper solves node values so every helper reprices its quote.
type Bootstrapper interface {
	Name() string
	bootstrap(p *problem) error
}

// problem is one bootstrap run: the working curve has one node per helper
// plus the reference node and always extrapolates.
type problem struct {
	name    string
	curve   *InterpolatedCurve
	helpers []ratehelper.RateHelper
	cfg     config.Config
	logger  *zap.Logger
}

func (p *problem) trait() Trait { return p.curve.trait }

func (p *problem) nodes() int { return len(p.curve.times) }

// residual sets node i to x and returns helper i-1's quote error.
func (p *problem) residual(i int, x float64) (float64, error) {
	p.trait().setNode(p.curve, i, x)
	if err := p.curve.refit(); err != nil {
		return 0, err
	}
	return p.helpers[i-1].QuoteError(p.curve)
}

// checkQuotes surfaces stale quotes before any solving starts.
func (p *problem) checkQuotes() error {
	for i, h := range p.helpers {
		if _, err := h.QuoteValue(); err != nil {
			return fmt.Errorf("%s: helper %d: %w", p.name, i, err)
		}
	}
	return nil
}

// seed fits the curve on nodes [0, i), guesses node i from it, then refits
// on [0, i]. On later passes the previous value is the guess.
func (p *problem) seed(i int, firstPass bool) (guess, lo, hi float64, err error) {
	c := p.curve
	lo, hi = p.trait().bounds(i, c, p.cfg)
	if firstPass {
		if i > 1 {
			if err = c.fit(i); err != nil {
				return 0, 0, 0, err
			}
		}
		guess = p.trait().guess(i, c, p.cfg)
		if math.IsNaN(guess) || math.IsInf(guess, 0) {
			guess = c.data[i-1]
		}
		guess = math.Max(lo, math.Min(hi, guess))
		p.trait().setNode(c, i, guess)
		if err = c.fit(i + 1); err != nil {
			return 0, 0, 0, err
		}
		return guess, lo, hi, nil
	}
	return math.Max(lo, math.Min(hi, c.data[i])), lo, hi, nil
}

// IterativeBootstrap solves one node at a time with Brent's method. Non-local
// interpolations repeat the sweep until nodes move less than the accuracy.
type IterativeBootstrap struct{}

func (IterativeBootstrap) Name() string { return "IterativeBootstrap" }

func (IterativeBootstrap) bootstrap(p *problem) error {
	if err := p.checkQuotes(); err != nil {
		return err
	}
	n := p.nodes()
	previous := make([]float64, n)
	global := p.curve.method.Global()

	for iteration := 0; ; iteration++ {
		copy(previous, p.curve.data)
		for i := 1; i < n; i++ {
			if err := p.solveNode(i, iteration == 0); err != nil {
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

func (p *problem) solveNode(i int, firstPass bool) error {
	h := p.helpers[i-1]
	guess, lo, hi, err := p.seed(i, firstPass)
	if err != nil {
		return fmt.Errorf("%s: helper %d: %w", p.name, i-1, err)
	}
	brent := solver.NewBrent(p.cfg.MaxEvaluations,
		solver.WithBounds(lo, hi),
		solver.WithGrowthFactor(p.cfg.GrowthFactor))
	f := func(x float64) (float64, error) { return p.residual(i, x) }

	res, err := brent.Solve(f, p.cfg.Accuracy, guess, p.cfg.BracketStep)
	if err != nil {
		berr := &BootstrapError{
			HelperIndex: i - 1,
			Helper:      h.Name(),
			Pillar:      p.curve.dates[i],
			Low:         lo,
			High:        hi,
			Err:         err,
		}
		var serr *solver.Error
		if errors.As(err, &serr) {
			berr.Low, berr.High = serr.Low, serr.High
			berr.LastResidual = serr.LastResidual
			berr.Evaluations = serr.Evaluations
		} else if !errors.Is(err, solver.ErrInvalidBracket) {
			// objective errors such as a failed schedule are not numerical failures
			return fmt.Errorf("%s: helper %d (%s): %w", p.name, i-1, h.Name(), err)
		}
		return berr
	}
	if _, err := p.residual(i, res.Root); err != nil {
		return fmt.Errorf("%s: helper %d (%s): %w", p.name, i-1, h.Name(), err)
	}
	p.logger.Debug("node solved",
		zap.String("curve", p.name),
		zap.Int("helper", i-1),
		zap.String("instrument", h.Name()),
		zap.String("pillar", utils.FormatDate(p.curve.dates[i])),
		zap.Float64("value", res.Root),
		zap.Int("evaluations", res.Evaluations))
	return nil
}
