// Package ratehelper adapts market instruments into bootstrap constraints:
// each helper maps a candidate curve to the quote it implies.
package ratehelper

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/quote"
	"github.com/meenmo/ratecurve/utils"
)

var (
	// ErrInvalidHelperData is returned for malformed or unsorted helpers.
	ErrInvalidHelperData = errors.New("invalid rate helper data")

	// ErrDuplicateMaturity is returned when two helpers share a pillar date.
	ErrDuplicateMaturity = errors.New("duplicate helper maturity")
)

// RateHelper is one calibration instrument. ImpliedQuote only reads the
// curve at dates up to PillarDate.
type RateHelper interface {
	Name() string
	Quote() quote.Quote
	QuoteValue() (float64, error)
	EarliestDate() time.Time
	MaturityDate() time.Time
	PillarDate() time.Time
	ImpliedQuote(curve market.DiscountCurve) (float64, error)
	QuoteError(curve market.DiscountCurve) (float64, error)
	Observables() []quote.ObservableID
	// Err reports a failure to build the instrument for the current
	// evaluation date.
	Err() error
}

// helperBase carries the quote and the lazily computed dates. Dates are
// rebuilt whenever the context evaluation date moves.
type helperBase struct {
	ctx   *quote.Context
	quote quote.Quote
	name  string

	initDates func(eval time.Time) error
	evalDate  time.Time
	initErr   error

	earliest time.Time
	maturity time.Time
	pillar   time.Time

	extra []quote.ObservableID
}

func newHelperBase(ctx *quote.Context, q quote.Quote, name string) helperBase {
	return helperBase{ctx: ctx, quote: q, name: name}
}

func (h *helperBase) refresh() error {
	eval := h.ctx.EvaluationDate()
	if h.initDates == nil || (!h.evalDate.IsZero() && eval.Equal(h.evalDate)) {
		return h.initErr
	}
	h.evalDate = eval
	h.initErr = h.initDates(eval)
	if h.initErr == nil && !h.maturity.After(h.earliest) {
		h.initErr = fmt.Errorf("%s: maturity %s not after earliest date %s: %w",
			h.name, utils.FormatDate(h.maturity), utils.FormatDate(h.earliest), ErrInvalidHelperData)
	}
	return h.initErr
}

// Name identifies the helper in logs and errors.
func (h *helperBase) Name() string { return h.name }

// Quote returns the market quote the helper calibrates to.
func (h *helperBase) Quote() quote.Quote { return h.quote }

// QuoteValue reads the market quote.
func (h *helperBase) QuoteValue() (float64, error) {
	v, err := h.quote.Value()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", h.name, err)
	}
	return v, nil
}

func (h *helperBase) Err() error { return h.refresh() }

func (h *helperBase) EarliestDate() time.Time {
	_ = h.refresh()
	return h.earliest
}

func (h *helperBase) MaturityDate() time.Time {
	_ = h.refresh()
	return h.maturity
}

func (h *helperBase) PillarDate() time.Time {
	_ = h.refresh()
	return h.pillar
}

// Observables lists the evaluation date, the quote and any auxiliary quotes.
func (h *helperBase) Observables() []quote.ObservableID {
	out := []quote.ObservableID{quote.EvaluationDateID, h.quote.ObservableID()}
	return append(out, h.extra...)
}

func quoteError(h RateHelper, curve market.DiscountCurve) (float64, error) {
	q, err := h.QuoteValue()
	if err != nil {
		return 0, err
	}
	implied, err := h.ImpliedQuote(curve)
	if err != nil {
		return 0, err
	}
	return q - implied, nil
}

func optionalValue(q quote.Quote) (float64, error) {
	if q == nil {
		return 0, nil
	}
	return q.Value()
}

// Sort orders helpers by pillar date, keeping input order on ties.
func Sort(helpers []RateHelper) {
	sort.SliceStable(helpers, func(i, j int) bool {
		return helpers[i].PillarDate().Before(helpers[j].PillarDate())
	})
}

// Validate checks that helpers are non-empty, build for the current
// evaluation date, have pillars after reference, and are strictly ascending.
func Validate(helpers []RateHelper, reference time.Time) error {
	if len(helpers) == 0 {
		return fmt.Errorf("Validate: no helpers: %w", ErrInvalidHelperData)
	}
	for i, h := range helpers {
		if err := h.Err(); err != nil {
			return fmt.Errorf("Validate: helper %d: %w", i, err)
		}
		pillar := h.PillarDate()
		if !pillar.After(reference) {
			return fmt.Errorf("Validate: helper %d (%s) pillar %s not after reference %s: %w",
				i, h.Name(), utils.FormatDate(pillar), utils.FormatDate(reference), ErrInvalidHelperData)
		}
		if i == 0 {
			continue
		}
		prev := helpers[i-1].PillarDate()
		switch {
		case pillar.Equal(prev):
			return fmt.Errorf("Validate: helpers %d (%s) and %d (%s) share pillar %s: %w",
				i-1, helpers[i-1].Name(), i, h.Name(), utils.FormatDate(pillar), ErrDuplicateMaturity)
		case pillar.Before(prev):
			return fmt.Errorf("Validate: helper %d (%s) pillar %s before previous %s: %w",
				i, h.Name(), utils.FormatDate(pillar), utils.FormatDate(prev), ErrInvalidHelperData)
		}
	}
	return nil
}
