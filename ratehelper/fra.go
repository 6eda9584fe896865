package ratehelper

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/quote"
)

// FraRateHelper calibrates to a forward rate agreement starting
// MonthsToStart months after spot on index.
type FraRateHelper struct {
	helperBase
	Index         *market.IborIndex
	MonthsToStart int
}

// NewFraRateHelper builds an m x (m + tenor) FRA helper.
func NewFraRateHelper(ctx *quote.Context, rate quote.Quote, monthsToStart int, index *market.IborIndex) (*FraRateHelper, error) {
	if index == nil || rate == nil || monthsToStart < 0 {
		return nil, fmt.Errorf("NewFraRateHelper: %w", ErrInvalidHelperData)
	}
	months, _ := index.Tenor.Months()
	h := &FraRateHelper{
		helperBase:    newHelperBase(ctx, rate, fmt.Sprintf("FRA%dx%d", monthsToStart, monthsToStart+months)),
		Index:         index,
		MonthsToStart: monthsToStart,
	}
	h.initDates = h.dates
	if err := h.refresh(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *FraRateHelper) dates(eval time.Time) error {
	spot := h.Index.ValueDate(calendar.AdjustFollowing(h.Index.Calendar, eval))
	h.earliest = calendar.Advance(h.Index.Calendar, spot,
		calendar.Period{Length: h.MonthsToStart, Unit: calendar.Months}, h.Index.Convention, h.Index.EndOfMonth)
	h.maturity = h.Index.MaturityDate(h.earliest)
	h.pillar = h.maturity
	return nil
}

// ImpliedQuote is the simple forward rate over the FRA period.
func (h *FraRateHelper) ImpliedQuote(curve market.DiscountCurve) (float64, error) {
	if err := h.refresh(); err != nil {
		return 0, err
	}
	return market.ForwardRate(curve, h.earliest, h.maturity, h.Index.DayCount)
}

func (h *FraRateHelper) QuoteError(curve market.DiscountCurve) (float64, error) {
	return quoteError(h, curve)
}
