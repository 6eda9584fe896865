package ratehelper

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/quote"
	"github.com/meenmo/ratecurve/utils"
)

// FuturesType selects the delivery date rule a futures contract follows.
type FuturesType int

const (
	FuturesIMM FuturesType = iota
	FuturesASX
)

func (t FuturesType) String() string {
	if t == FuturesASX {
		return "ASX"
	}
	return "IMM"
}

// FuturesRateHelper calibrates to a short-rate futures price quoted as
// 100 x (1 - rate). Convexity, when set, is a decimal rate adjustment
// subtracted from the forward before pricing.
type FuturesRateHelper struct {
	helperBase
	Type       FuturesType
	Calendar   calendar.CalendarID
	Convention calendar.BusinessDayConvention
	EndOfMonth bool
	DayCount   utils.DayCount
	Convexity  quote.Quote
}

// NewFuturesRateHelper builds a futures helper starting on start and lasting
// lengthInMonths. start must be a valid IMM or ASX date for the type.
func NewFuturesRateHelper(ctx *quote.Context, price quote.Quote, start time.Time, lengthInMonths int, cal calendar.CalendarID, conv calendar.BusinessDayConvention, eom bool, dc utils.DayCount, convexity quote.Quote, kind FuturesType) (*FuturesRateHelper, error) {
	if price == nil || lengthInMonths <= 0 {
		return nil, fmt.Errorf("NewFuturesRateHelper: %w", ErrInvalidHelperData)
	}
	switch kind {
	case FuturesIMM:
		if !calendar.IsIMMDate(start, false) {
			return nil, fmt.Errorf("NewFuturesRateHelper: %s is not an IMM date: %w", utils.FormatDate(start), ErrInvalidHelperData)
		}
	case FuturesASX:
		if !calendar.IsASXDate(start, false) {
			return nil, fmt.Errorf("NewFuturesRateHelper: %s is not an ASX date: %w", utils.FormatDate(start), ErrInvalidHelperData)
		}
	default:
		return nil, fmt.Errorf("NewFuturesRateHelper: unknown futures type %d: %w", kind, ErrInvalidHelperData)
	}
	h := &FuturesRateHelper{
		helperBase: newHelperBase(ctx, price, kind.String()+" "+utils.FormatDate(start)),
		Type:       kind,
		Calendar:   cal,
		Convention: conv,
		EndOfMonth: eom,
		DayCount:   dc,
		Convexity:  convexity,
	}
	if convexity != nil {
		h.extra = append(h.extra, convexity.ObservableID())
	}
	maturity := calendar.Advance(cal, start, calendar.Period{Length: lengthInMonths, Unit: calendar.Months}, conv, eom)
	h.initDates = func(time.Time) error {
		h.earliest = start
		h.maturity = maturity
		h.pillar = maturity
		return nil
	}
	if err := h.refresh(); err != nil {
		return nil, err
	}
	return h, nil
}

// ConvexityAdjustment reads the optional convexity quote, zero when unset.
func (h *FuturesRateHelper) ConvexityAdjustment() (float64, error) {
	return optionalValue(h.Convexity)
}

// ImpliedQuote is the futures price implied by the curve forward.
func (h *FuturesRateHelper) ImpliedQuote(curve market.DiscountCurve) (float64, error) {
	if err := h.refresh(); err != nil {
		return 0, err
	}
	fwd, err := market.ForwardRate(curve, h.earliest, h.maturity, h.DayCount)
	if err != nil {
		return 0, err
	}
	adj, err := h.ConvexityAdjustment()
	if err != nil {
		return 0, fmt.Errorf("%s: convexity: %w", h.name, err)
	}
	return 100.0 * (1.0 - (fwd + adj)), nil
}

func (h *FuturesRateHelper) QuoteError(curve market.DiscountCurve) (float64, error) {
	return quoteError(h, curve)
}
