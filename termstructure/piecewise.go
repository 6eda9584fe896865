package termstructure

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/config"
	"github.com/meenmo/ratecurve/interpolation"
	"github.com/meenmo/ratecurve/quote"
	"github.com/meenmo/ratecurve/ratehelper"
	"github.com/meenmo/ratecurve/utils"
)

// PiecewiseCurve is bootstrapped lazily from rate helpers. Any change to a
// helper quote or to the evaluation date marks it stale; the next query
// bootstraps again. A failed bootstrap exposes no nodes.
type PiecewiseCurve struct {
	ctx      *quote.Context
	id       quote.ObservableID
	observer quote.ObserverID
	detached bool

	name         string
	trait        Trait
	method       interpolation.Method
	dayCount     utils.DayCount
	helpers      []ratehelper.RateHelper
	bootstrapper Bootstrapper
	cfg          config.Config
	logger       *zap.Logger
	extrapolate  bool

	fixedReference time.Time
	settlementDays int
	calendar       calendar.CalendarID

	curve          *InterpolatedCurve
	calculated     bool
	recalculations int
}

// CurveOption configures a PiecewiseCurve.
type CurveOption func(*PiecewiseCurve)

// WithLogger sets the structured logger; the default discards output.
func WithLogger(logger *zap.Logger) CurveOption {
	return func(c *PiecewiseCurve) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConfig overrides the active config.Config for this curve.
func WithConfig(cfg config.Config) CurveOption {
	return func(c *PiecewiseCurve) { c.cfg = cfg }
}

// WithExtrapolation allows queries past the last pillar.
func WithExtrapolation(on bool) CurveOption {
	return func(c *PiecewiseCurve) { c.extrapolate = on }
}

// WithBootstrapper selects the solving strategy; IterativeBootstrap by default.
func WithBootstrapper(b Bootstrapper) CurveOption {
	return func(c *PiecewiseCurve) {
		if b != nil {
			c.bootstrapper = b
		}
	}
}

// WithName labels the curve in logs and errors.
func WithName(name string) CurveOption {
	return func(c *PiecewiseCurve) { c.name = name }
}

// NewPiecewiseCurve builds a curve anchored on a fixed reference date.
// Helpers must already be sorted by pillar.
func NewPiecewiseCurve(ctx *quote.Context, reference time.Time, helpers []ratehelper.RateHelper, dc utils.DayCount, trait Trait, method interpolation.Method, opts ...CurveOption) (*PiecewiseCurve, error) {
	return newPiecewiseCurve(ctx, utils.Normalize(reference), 0, calendar.NullCalendar, helpers, dc, trait, method, opts)
}

// NewPiecewiseCurveFromSettlement builds a curve whose reference date is
// settlementDays business days after the evaluation date, moving with it.
func NewPiecewiseCurveFromSettlement(ctx *quote.Context, settlementDays int, cal calendar.CalendarID, helpers []ratehelper.RateHelper, dc utils.DayCount, trait Trait, method interpolation.Method, opts ...CurveOption) (*PiecewiseCurve, error) {
	if settlementDays < 0 {
		return nil, fmt.Errorf("NewPiecewiseCurveFromSettlement: negative settlement days: %w", ErrInvalidHelperData)
	}
	return newPiecewiseCurve(ctx, time.Time{}, settlementDays, cal, helpers, dc, trait, method, opts)
}

func newPiecewiseCurve(ctx *quote.Context, reference time.Time, settlementDays int, cal calendar.CalendarID, helpers []ratehelper.RateHelper, dc utils.DayCount, trait Trait, method interpolation.Method, opts []CurveOption) (*PiecewiseCurve, error) {
	if ctx == nil || method == nil {
		return nil, fmt.Errorf("NewPiecewiseCurve: nil context or interpolation: %w", ErrInvalidHelperData)
	}
	if err := trait.supports(method); err != nil {
		return nil, fmt.Errorf("NewPiecewiseCurve: %w", err)
	}
	c := &PiecewiseCurve{
		ctx:            ctx,
		name:           trait.String() + "/" + method.String(),
		trait:          trait,
		method:         method,
		dayCount:       dc,
		helpers:        append([]ratehelper.RateHelper(nil), helpers...),
		bootstrapper:   IterativeBootstrap{},
		cfg:            config.GetConfig(),
		logger:         zap.NewNop(),
		fixedReference: reference,
		settlementDays: settlementDays,
		calendar:       cal,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewPiecewiseCurve: %w", err)
	}
	c.logger = c.logger.Named("termstructure")
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("NewPiecewiseCurve: %w", err)
	}

	c.id = ctx.NewObservable()
	c.observer = ctx.Register(c.update)
	ctx.ObserveEvaluationDate(c.observer)
	for _, h := range c.helpers {
		for _, id := range h.Observables() {
			ctx.Observe(c.observer, id)
		}
	}
	return c, nil
}

func (c *PiecewiseCurve) validate() error {
	return ratehelper.Validate(c.helpers, c.ReferenceDate())
}

// update is the observer callback.
func (c *PiecewiseCurve) update() {
	if !c.calculated {
		return
	}
	c.calculated = false
	c.logger.Debug("curve invalidated", zap.String("curve", c.name))
	c.ctx.Notify(c.id)
}

// ObservableID lets other curves and helpers observe this curve.
func (c *PiecewiseCurve) ObservableID() quote.ObservableID { return c.id }

// Name labels the curve.
func (c *PiecewiseCurve) Name() string { return c.name }

// Helpers returns the calibration instruments.
func (c *PiecewiseCurve) Helpers() []ratehelper.RateHelper {
	return append([]ratehelper.RateHelper(nil), c.helpers...)
}

// ReferenceDate is the fixed anchor or the settlement of the evaluation date.
func (c *PiecewiseCurve) ReferenceDate() time.Time {
	if !c.fixedReference.IsZero() {
		return c.fixedReference
	}
	return calendar.AddBusinessDays(c.calendar, c.ctx.EvaluationDate(), c.settlementDays)
}

// DayCount measures curve time.
func (c *PiecewiseCurve) DayCount() utils.DayCount { return c.dayCount }

// Trait is the node quantity.
func (c *PiecewiseCurve) Trait() Trait { return c.trait }

// Recalculations counts completed bootstraps.
func (c *PiecewiseCurve) Recalculations() int { return c.recalculations }

// Detach stops observing quotes and the evaluation date. The last nodes stay
// in use and are never rebuilt.
func (c *PiecewiseCurve) Detach() {
	if c.detached {
		return
	}
	c.ctx.Unregister(c.observer)
	c.detached = true
}

// Update forces the next query to bootstrap again.
func (c *PiecewiseCurve) Update() {
	c.calculated = false
	c.ctx.Notify(c.id)
}

// Calculate bootstraps the curve if a dependency changed since the last run.
func (c *PiecewiseCurve) Calculate() error {
	if c.calculated || (c.detached && c.curve != nil) {
		return nil
	}
	if err := c.validate(); err != nil {
		c.curve = nil
		return fmt.Errorf("%s: %w", c.name, err)
	}
	work, err := c.workingCurve()
	if err != nil {
		c.curve = nil
		return fmt.Errorf("%s: %w", c.name, err)
	}
	p := &problem{name: c.name, curve: work, helpers: c.helpers, cfg: c.cfg, logger: c.logger}
	if err := c.bootstrapper.bootstrap(p); err != nil {
		c.curve = nil
		return err
	}
	work.extrapolate = c.extrapolate
	c.curve = work
	c.calculated = true
	c.recalculations++
	return nil
}

// workingCurve lays out one node per helper pillar plus the reference node.
func (c *PiecewiseCurve) workingCurve() (*InterpolatedCurve, error) {
	ref := c.ReferenceDate()
	n := len(c.helpers) + 1
	w := &InterpolatedCurve{
		referenceDate: ref,
		dayCount:      c.dayCount,
		trait:         c.trait,
		method:        c.method,
		dates:         make([]time.Time, n),
		times:         make([]float64, n),
		data:          make([]float64, n),
		extrapolate:   true,
	}
	w.dates[0] = ref
	w.data[0] = c.trait.initialValue(c.cfg)
	for i, h := range c.helpers {
		w.dates[i+1] = h.PillarDate()
		w.times[i+1] = w.TimeFromReference(w.dates[i+1])
		if !(w.times[i+1] > w.times[i]) {
			return nil, fmt.Errorf("helper %d pillar %s maps to time %g, not after %g: %w",
				i, utils.FormatDate(w.dates[i+1]), w.times[i+1], w.times[i], ErrDuplicateMaturity)
		}
		w.data[i+1] = w.data[0]
	}
	return w, w.fit(2)
}

func (c *PiecewiseCurve) built() (*InterpolatedCurve, error) {
	if err := c.Calculate(); err != nil {
		return nil, err
	}
	return c.curve, nil
}

// Clone returns an independent snapshot of the current nodes. It does not
// follow later quote changes.
func (c *PiecewiseCurve) Clone() (*InterpolatedCurve, error) {
	curve, err := c.built()
	if err != nil {
		return nil, err
	}
	return curve.Clone()
}

// Discount implements market.DiscountCurve.
func (c *PiecewiseCurve) Discount(d time.Time) (float64, error) {
	curve, err := c.built()
	if err != nil {
		return 0, err
	}
	return curve.Discount(d)
}

// DiscountAt is the discount factor at curve time t.
func (c *PiecewiseCurve) DiscountAt(t float64) (float64, error) {
	curve, err := c.built()
	if err != nil {
		return 0, err
	}
	return curve.DiscountAt(t)
}

// ZeroRate is the rate from the reference date to d.
func (c *PiecewiseCurve) ZeroRate(d time.Time, comp Compounding, freq int) (InterestRate, error) {
	curve, err := c.built()
	if err != nil {
		return InterestRate{}, err
	}
	return curve.ZeroRate(d, comp, freq)
}

// ForwardRate is the rate between d1 and d2.
func (c *PiecewiseCurve) ForwardRate(d1, d2 time.Time, comp Compounding, freq int) (InterestRate, error) {
	curve, err := c.built()
	if err != nil {
		return InterestRate{}, err
	}
	return curve.ForwardRate(d1, d2, comp, freq)
}

// InstantaneousForward is the continuously compounded forward at d.
func (c *PiecewiseCurve) InstantaneousForward(d time.Time) (float64, error) {
	curve, err := c.built()
	if err != nil {
		return 0, err
	}
	return curve.InstantaneousForward(d)
}

// Nodes returns the bootstrapped pillars.
func (c *PiecewiseCurve) Nodes() ([]Node, error) {
	curve, err := c.built()
	if err != nil {
		return nil, err
	}
	return curve.Nodes(), nil
}

// MaxDate is the last pillar.
func (c *PiecewiseCurve) MaxDate() (time.Time, error) {
	curve, err := c.built()
	if err != nil {
		return time.Time{}, err
	}
	return curve.MaxDate(), nil
}

// Interpolator exposes the fitted interpolator of the current nodes.
func (c *PiecewiseCurve) Interpolator() (interpolation.Interpolator, error) {
	curve, err := c.built()
	if err != nil {
		return nil, err
	}
	return curve.Interpolator(), nil
}
