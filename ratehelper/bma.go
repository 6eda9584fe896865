package ratehelper

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/quote"
	"github.com/meenmo/ratecurve/swap"
)

// BMASwapRateHelper calibrates a BMA curve to the Libor fraction quoted on a
// BMA vs Libor swap. Libor forecasting and discounting use LiborCurve.
type BMASwapRateHelper struct {
	helperBase
	Tenor          calendar.Period
	SettlementDays int
	Calendar       calendar.CalendarID
	BMALeg         market.LegConvention
	BMAIndex       *market.BMAIndex
	LiborIndex     *market.IborIndex
	LiborCurve     market.DiscountCurve

	swap *swap.BMASwap
}

// NewBMASwapRateHelper builds a BMA swap helper; the quote is a fraction such as 0.6756.
func NewBMASwapRateHelper(ctx *quote.Context, fraction quote.Quote, tenor calendar.Period, settlementDays int, cal calendar.CalendarID, bmaLeg market.LegConvention, bma *market.BMAIndex, libor *market.IborIndex, liborCurve market.DiscountCurve) (*BMASwapRateHelper, error) {
	if fraction == nil || bma == nil || libor == nil || market.IsNil(liborCurve) || tenor.Length <= 0 {
		return nil, fmt.Errorf("NewBMASwapRateHelper: %w", ErrInvalidHelperData)
	}
	h := &BMASwapRateHelper{
		helperBase:     newHelperBase(ctx, fraction, "BMA"+tenor.String()),
		Tenor:          tenor,
		SettlementDays: settlementDays,
		Calendar:       cal,
		BMALeg:         bmaLeg,
		BMAIndex:       bma,
		LiborIndex:     libor,
		LiborCurve:     liborCurve,
	}
	if o, ok := liborCurve.(quote.Observable); ok {
		h.extra = append(h.extra, o.ObservableID())
	}
	h.initDates = h.dates
	if err := h.refresh(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *BMASwapRateHelper) dates(eval time.Time) error {
	start := calendar.AddBusinessDays(h.Calendar, calendar.AdjustFollowing(h.Calendar, eval), h.SettlementDays)
	end := calendar.Advance(h.Calendar, start, h.Tenor, h.BMALeg.Convention, false)
	s, err := swap.NewBMASwap(start, end, 1.0, 0, h.LiborIndex, h.BMAIndex, h.BMALeg)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", h.name, ErrInvalidHelperData, err)
	}
	h.swap = s
	h.earliest = start
	h.maturity = s.LatestDate()
	h.pillar = h.maturity
	return nil
}

// ImpliedQuote is the Libor fraction that prices the swap at par when the
// BMA leg forecasts on curve.
func (h *BMASwapRateHelper) ImpliedQuote(curve market.DiscountCurve) (float64, error) {
	if err := h.refresh(); err != nil {
		return 0, err
	}
	return h.swap.FairLiborFraction(curve, h.LiborCurve, h.LiborCurve)
}

func (h *BMASwapRateHelper) QuoteError(curve market.DiscountCurve) (float64, error) {
	return quoteError(h, curve)
}
