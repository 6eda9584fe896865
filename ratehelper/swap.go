package ratehelper

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/quote"
	"github.com/meenmo/ratecurve/swap"
)

// SwapRateHelper calibrates to a par fixed-vs-Ibor swap rate quoted as a
// decimal. The helper's curve forecasts the index; it also discounts unless
// an exogenous discount curve is supplied.
type SwapRateHelper struct {
	helperBase
	Tenor          calendar.Period
	FixedLeg       market.LegConvention
	Index          *market.IborIndex
	Spread         quote.Quote
	ForwardStart   calendar.Period
	SettlementDays int
	Discount       market.DiscountCurve

	swap *swap.VanillaSwap
}

// SwapOption customises a SwapRateHelper.
type SwapOption func(*SwapRateHelper)

// WithSpread adds a floating-leg spread quote.
func WithSpread(q quote.Quote) SwapOption {
	return func(h *SwapRateHelper) { h.Spread = q }
}

// WithForwardStart delays the swap start past spot.
func WithForwardStart(p calendar.Period) SwapOption {
	return func(h *SwapRateHelper) { h.ForwardStart = p }
}

// WithSettlementDays overrides the index fixing days for the spot lag.
func WithSettlementDays(n int) SwapOption {
	return func(h *SwapRateHelper) { h.SettlementDays = n }
}

// WithDiscountCurve discounts on an exogenous curve.
func WithDiscountCurve(c market.DiscountCurve) SwapOption {
	return func(h *SwapRateHelper) { h.Discount = c }
}

// NewSwapRateHelper builds a spot or forward-starting swap helper of the given tenor.
func NewSwapRateHelper(ctx *quote.Context, rate quote.Quote, tenor calendar.Period, fixedLeg market.LegConvention, index *market.IborIndex, opts ...SwapOption) (*SwapRateHelper, error) {
	if rate == nil || index == nil || tenor.Length <= 0 {
		return nil, fmt.Errorf("NewSwapRateHelper: %w", ErrInvalidHelperData)
	}
	h := &SwapRateHelper{
		helperBase:     newHelperBase(ctx, rate, "Swap"+tenor.String()),
		Tenor:          tenor,
		FixedLeg:       fixedLeg,
		Index:          index,
		SettlementDays: index.FixingDays,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.ForwardStart.Length < 0 || h.SettlementDays < 0 {
		return nil, fmt.Errorf("NewSwapRateHelper: negative start lag: %w", ErrInvalidHelperData)
	}
	if h.ForwardStart.Length > 0 {
		h.name = fmt.Sprintf("Swap%sx%s", h.ForwardStart, tenor)
	}
	if h.Spread != nil {
		h.extra = append(h.extra, h.Spread.ObservableID())
	}
	if o, ok := h.Discount.(quote.Observable); ok && !market.IsNil(h.Discount) {
		h.extra = append(h.extra, o.ObservableID())
	}
	h.initDates = h.dates
	if err := h.refresh(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *SwapRateHelper) dates(eval time.Time) error {
	cal := h.Index.Calendar
	spot := calendar.AddBusinessDays(cal, calendar.AdjustFollowing(cal, eval), h.SettlementDays)
	start := spot
	if h.ForwardStart.Length > 0 {
		start = calendar.AdjustFollowing(cal, calendar.Advance(calendar.NullCalendar, spot, h.ForwardStart, calendar.Unadjusted, false))
	}
	termination := calendar.Advance(calendar.NullCalendar, start, h.Tenor, calendar.Unadjusted, false)

	s, err := swap.NewVanillaSwap(start, termination, 0, h.FixedLeg, h.Index, 0)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", h.name, ErrInvalidHelperData, err)
	}
	h.swap = s
	h.earliest = start
	h.maturity = s.LatestDate()
	h.pillar = h.maturity
	return nil
}

// Swap exposes the underlying swap for the current evaluation date.
func (h *SwapRateHelper) Swap() (*swap.VanillaSwap, error) {
	if err := h.refresh(); err != nil {
		return nil, err
	}
	return h.swap, nil
}

// ImpliedQuote is the fair fixed rate, spread included.
func (h *SwapRateHelper) ImpliedQuote(curve market.DiscountCurve) (float64, error) {
	if err := h.refresh(); err != nil {
		return 0, err
	}
	spread, err := optionalValue(h.Spread)
	if err != nil {
		return 0, fmt.Errorf("%s: spread: %w", h.name, err)
	}
	discount := curve
	if !market.IsNil(h.Discount) {
		discount = h.Discount
	}
	return h.swap.FairRateWithSpread(curve, discount, spread)
}

func (h *SwapRateHelper) QuoteError(curve market.DiscountCurve) (float64, error) {
	return quoteError(h, curve)
}
