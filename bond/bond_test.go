package bond_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratecurve/bond"
	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/utils"
)

type flatCurve struct {
	ref  time.Time
	rate float64
}

func (c flatCurve) ReferenceDate() time.Time { return c.ref }

func (c flatCurve) Discount(d time.Time) (float64, error) {
	return math.Exp(-c.rate * utils.YearFraction(c.ref, d, utils.ACT365F)), nil
}

func newTestBond(t *testing.T) *bond.FixedRateBond {
	t.Helper()
	b, err := bond.NewFixedRateBond(3, calendar.TARGET, 100, 0.05, market.FreqSemi, utils.ACTACT,
		calendar.Following, 100, utils.Date(2020, time.May, 15), utils.Date(2025, time.May, 15))
	require.NoError(t, err)
	return b
}

func TestFixedRateBondCashflows(t *testing.T) {
	t.Parallel()
	b := newTestBond(t)
	cfs := b.Cashflows()
	require.Len(t, cfs, 11)
	for _, cf := range cfs[:10] {
		assert.InDelta(t, 2.5, cf.Coupon, 1e-12)
		assert.Zero(t, cf.Principal)
	}
	assert.Equal(t, 100.0, cfs[10].Principal)
	assert.Equal(t, utils.Date(2025, time.May, 15), b.LatestDate())

	cfs[0].Coupon = 0
	assert.InDelta(t, 2.5, b.Cashflows()[0].Coupon, 1e-12, "Cashflows returns a copy")
}

func TestFixedRateBondAccruedAndPrices(t *testing.T) {
	t.Parallel()
	b := newTestBond(t)
	settle := utils.Date(2024, time.August, 15)
	assert.InDelta(t, 1.25, b.AccruedAmount(settle), 1e-12)

	zero := flatCurve{ref: utils.Date(2024, time.August, 12), rate: 0}
	dirty, err := b.DirtyPrice(zero, settle)
	require.NoError(t, err)
	assert.InDelta(t, 105.0, dirty, 1e-12)

	clean, err := b.CleanPrice(zero, settle)
	require.NoError(t, err)
	assert.InDelta(t, 103.75, clean, 1e-12)
}

func TestFixedRateBondSettlementDate(t *testing.T) {
	t.Parallel()
	b := newTestBond(t)
	assert.Equal(t, utils.Date(2024, time.August, 15), b.SettlementDate(utils.Date(2024, time.August, 12)))
}

func TestFixedRateBondYieldAtPar(t *testing.T) {
	t.Parallel()
	b := newTestBond(t)
	res, err := b.Yield(100, utils.Date(2024, time.May, 15))
	require.NoError(t, err)
	assert.InDelta(t, 0.05, res.Yield, 1e-10)
	assert.Zero(t, res.AccruedInterest)
}

func TestFixedRateBondYieldRoundTrip(t *testing.T) {
	t.Parallel()
	b := newTestBond(t)
	settle := utils.Date(2023, time.February, 1)
	clean, err := b.CleanPriceFromYield(0.04, settle)
	require.NoError(t, err)
	assert.Greater(t, clean, 100.0)

	res, err := b.Yield(clean, settle)
	require.NoError(t, err)
	assert.InDelta(t, 0.04, res.Yield, 1e-10)
	assert.InDelta(t, clean+b.AccruedAmount(settle), res.DirtyPrice, 1e-12)
}

func TestFixedRateBondSettled(t *testing.T) {
	t.Parallel()
	b := newTestBond(t)
	_, err := b.DirtyPrice(flatCurve{ref: utils.Date(2025, time.June, 1)}, utils.Date(2025, time.June, 3))
	assert.ErrorIs(t, err, bond.ErrSettledBond)
	_, err = b.DirtyPrice(nil, utils.Date(2024, time.June, 3))
	assert.ErrorIs(t, err, market.ErrNilCurve)
}

func TestNewFixedRateBondRejectsBadInput(t *testing.T) {
	t.Parallel()
	_, err := bond.NewFixedRateBond(3, calendar.TARGET, 0, 0.05, market.FreqSemi, utils.ACTACT,
		calendar.Following, 100, utils.Date(2020, time.May, 15), utils.Date(2025, time.May, 15))
	assert.Error(t, err)
	_, err = bond.NewFixedRateBond(3, calendar.TARGET, 100, 0.05, market.FreqSemi, utils.ACTACT,
		calendar.Following, 100, utils.Date(2025, time.May, 15), utils.Date(2020, time.May, 15))
	assert.Error(t, err)
}

func TestComputeASWSpreadOfCurvePricedBond(t *testing.T) {
	t.Parallel()
	b := newTestBond(t)
	settle := utils.Date(2024, time.August, 15)
	curve := flatCurve{ref: utils.Date(2024, time.August, 12), rate: 0.03}
	dirty, err := b.DirtyPrice(curve, settle)
	require.NoError(t, err)

	res, err := bond.ComputeASWSpread(bond.ASWInput{
		SettlementDate: settle,
		DirtyPrice:     dirty,
		Notional:       100,
		Cashflows:      b.Cashflows(),
		FloatLeg:       market.FloatingLeg(market.Euribor(calendar.MustParsePeriod("6M"))),
		DiscountCurve:  curve,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.SpreadBP, 1e-9)
	assert.Greater(t, res.PV01, 0.0)

	res, err = bond.ComputeASWSpread(bond.ASWInput{
		SettlementDate: settle,
		DirtyPrice:     dirty - 1,
		Notional:       100,
		Cashflows:      b.Cashflows(),
		FloatLeg:       market.FloatingLeg(market.Euribor(calendar.MustParsePeriod("6M"))),
		DiscountCurve:  curve,
	})
	require.NoError(t, err)
	assert.Greater(t, res.SpreadBP, 0.0, "a cheaper bond pays a positive spread")

	clean, err := b.CleanPrice(curve, settle)
	require.NoError(t, err)
	viaBond, err := b.AssetSwapSpread(curve, clean-1, settle, market.FloatingLeg(market.Euribor(calendar.MustParsePeriod("6M"))))
	require.NoError(t, err)
	assert.InDelta(t, res.SpreadBP, viaBond.SpreadBP, 1e-9)
}

func TestFeedCashflowsMatchSchedule(t *testing.T) {
	t.Parallel()
	b := newTestBond(t)
	var feed []bond.FeedCashflow
	for _, cf := range b.Cashflows() {
		feed = append(feed, bond.FeedCashflow{
			Date:           cf.Date,
			CouponCents:    int64(math.Round(cf.Coupon * 100)),
			PrincipalCents: int64(math.Round(cf.Principal * 100)),
		})
	}
	require.NoError(t, b.MatchFeed(feed))
	short := append([]bond.FeedCashflow(nil), feed[:len(feed)-1]...)
	assert.ErrorIs(t, b.MatchFeed(short), bond.ErrFeedMismatch)
	shifted := append([]bond.FeedCashflow(nil), feed...)
	shifted[0].Date = shifted[0].Date.AddDate(0, 0, 1)
	assert.ErrorIs(t, b.MatchFeed(shifted), bond.ErrFeedMismatch)
	offByCent := append([]bond.FeedCashflow(nil), feed...)
	offByCent[1].CouponCents++
	assert.ErrorIs(t, b.MatchFeed(offByCent), bond.ErrFeedMismatch)

	converted := bond.FromFeed(feed)
	require.Len(t, converted, len(b.Cashflows()))
	for i, cf := range b.Cashflows() {
		assert.Equal(t, cf.Date, converted[i].Date)
		assert.InDelta(t, cf.Amount(), converted[i].Amount(), 1e-12)
	}

	settle := utils.Date(2024, time.August, 15)
	curve := flatCurve{ref: utils.Date(2024, time.August, 12), rate: 0.03}
	dirty, err := b.DirtyPrice(curve, settle)
	require.NoError(t, err)
	res, err := bond.ComputeASWSpread(bond.ASWInput{
		SettlementDate: settle,
		DirtyPrice:     dirty,
		Notional:       100,
		Cashflows:      converted,
		FloatLeg:       market.FloatingLeg(market.Euribor(calendar.MustParsePeriod("6M"))),
		DiscountCurve:  curve,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.SpreadBP, 1e-8)
}
