package ratehelper

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/quote"
)

// DepositRateHelper calibrates to a term deposit fixing today on index.
// The quote is a decimal simple rate.
type DepositRateHelper struct {
	helperBase
	Index *market.IborIndex

	fixingDate time.Time
}

// NewDepositRateHelper builds a deposit helper over the index tenor.
func NewDepositRateHelper(ctx *quote.Context, rate quote.Quote, index *market.IborIndex) (*DepositRateHelper, error) {
	if index == nil || rate == nil {
		return nil, fmt.Errorf("NewDepositRateHelper: %w", ErrInvalidHelperData)
	}
	h := &DepositRateHelper{
		helperBase: newHelperBase(ctx, rate, "Deposit"+index.Tenor.String()),
		Index:      index,
	}
	h.initDates = h.dates
	if err := h.refresh(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *DepositRateHelper) dates(eval time.Time) error {
	h.fixingDate = calendar.AdjustFollowing(h.Index.Calendar, eval)
	h.earliest = h.Index.ValueDate(h.fixingDate)
	h.maturity = h.Index.MaturityDate(h.earliest)
	h.pillar = h.maturity
	return nil
}

// FixingDate is the index fixing the deposit replicates.
func (h *DepositRateHelper) FixingDate() time.Time {
	_ = h.refresh()
	return h.fixingDate
}

// ImpliedQuote is the simple forward rate between value and maturity dates.
func (h *DepositRateHelper) ImpliedQuote(curve market.DiscountCurve) (float64, error) {
	if err := h.refresh(); err != nil {
		return 0, err
	}
	return market.ForwardRate(curve, h.earliest, h.maturity, h.Index.DayCount)
}

func (h *DepositRateHelper) QuoteError(curve market.DiscountCurve) (float64, error) {
	return quoteError(h, curve)
}
