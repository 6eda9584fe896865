package ratehelper

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecurve/bond"
	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/quote"
	"github.com/meenmo/ratecurve/utils"
)

// FixedRateBondHelper calibrates to a bond clean price per 100 of face.
type FixedRateBondHelper struct {
	helperBase
	Bond *bond.FixedRateBond

	settlement time.Time
}

// NewFixedRateBondHelper wraps b with its quoted clean price.
func NewFixedRateBondHelper(ctx *quote.Context, cleanPrice quote.Quote, b *bond.FixedRateBond) (*FixedRateBondHelper, error) {
	if cleanPrice == nil || b == nil {
		return nil, fmt.Errorf("NewFixedRateBondHelper: %w", ErrInvalidHelperData)
	}
	h := &FixedRateBondHelper{
		helperBase: newHelperBase(ctx, cleanPrice, "Bond"+utils.FormatDate(b.MaturityDate)),
		Bond:       b,
	}
	h.initDates = h.dates
	if err := h.refresh(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *FixedRateBondHelper) dates(eval time.Time) error {
	h.settlement = h.Bond.SettlementDate(eval)
	h.earliest = h.settlement
	h.maturity = h.Bond.LatestDate()
	h.pillar = h.maturity
	return nil
}

// SettlementDate is the bond settlement for the current evaluation date.
func (h *FixedRateBondHelper) SettlementDate() time.Time {
	_ = h.refresh()
	return h.settlement
}

// ImpliedQuote is the clean price implied by curve at settlement.
func (h *FixedRateBondHelper) ImpliedQuote(curve market.DiscountCurve) (float64, error) {
	if err := h.refresh(); err != nil {
		return 0, err
	}
	return h.Bond.CleanPrice(curve, h.settlement)
}

func (h *FixedRateBondHelper) QuoteError(curve market.DiscountCurve) (float64, error) {
	return quoteError(h, curve)
}
