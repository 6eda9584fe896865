package bond

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/ratecurve/utils"
)

// FeedCashflow is a cash flow from a vendor feed that stores coupon and
// principal as integer minor units (cents for EUR and USD).
type FeedCashflow struct {
	Date           time.Time
	CouponCents    int64
	PrincipalCents int64
}

func minorUnits(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

// Cashflow converts the feed amounts to currency units.
func (c FeedCashflow) Cashflow() Cashflow {
	return Cashflow{
		Date:      c.Date,
		Coupon:    minorUnits(c.CouponCents),
		Principal: minorUnits(c.PrincipalCents),
	}
}

// FromFeed converts a feed schedule in order.
func FromFeed(in []FeedCashflow) []Cashflow {
	out := make([]Cashflow, 0, len(in))
	for _, cf := range in {
		out = append(out, cf.Cashflow())
	}
	return out
}

// ErrFeedMismatch flags a feed schedule that disagrees with the bond's own.
var ErrFeedMismatch = errors.New("feed cash flows do not match bond")

// feedTolerance is half a minor unit.
const feedTolerance = 0.005

// MatchFeed checks feed, in order, against the generated coupon and
// redemption flows: same dates and amounts within half a minor unit.
func (b *FixedRateBond) MatchFeed(feed []FeedCashflow) error {
	if len(feed) != len(b.cashflows) {
		return fmt.Errorf("MatchFeed: %d flows, bond has %d: %w", len(feed), len(b.cashflows), ErrFeedMismatch)
	}
	for i, cf := range FromFeed(feed) {
		own := b.cashflows[i]
		if !cf.Date.Equal(own.Date) {
			return fmt.Errorf("MatchFeed: flow %d on %s, bond pays on %s: %w",
				i, utils.FormatDate(cf.Date), utils.FormatDate(own.Date), ErrFeedMismatch)
		}
		if math.Abs(cf.Coupon-own.Coupon) > feedTolerance || math.Abs(cf.Principal-own.Principal) > feedTolerance {
			return fmt.Errorf("MatchFeed: flow %d on %s pays %.2f, bond pays %.2f: %w",
				i, utils.FormatDate(cf.Date), cf.Amount(), own.Amount(), ErrFeedMismatch)
		}
	}
	return nil
}
