package swap_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/swap"
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

func startDates(periods []swap.SchedulePeriod) []time.Time {
	out := make([]time.Time, 0, len(periods)+1)
	for _, p := range periods {
		out = append(out, p.StartDate)
	}
	return append(out, periods[len(periods)-1].EndDate)
}

func TestGenerateScheduleBackwardStubAtFront(t *testing.T) {
	t.Parallel()
	periods, err := swap.GenerateSchedule(utils.Date(2024, time.March, 15), utils.Date(2026, time.September, 15), market.EURFixedAnnual)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		utils.Date(2024, time.March, 15),
		utils.Date(2024, time.September, 15),
		utils.Date(2025, time.September, 15),
		utils.Date(2026, time.September, 15),
	}, startDates(periods), "unadjusted fixed leg keeps the Sunday roll date")
	assert.Equal(t, 184, periods[0].AccrualDays)
}

func TestGenerateScheduleForwardStubAtBack(t *testing.T) {
	t.Parallel()
	leg := market.EURFixedAnnual
	leg.Direction = market.ScheduleForward
	periods, err := swap.GenerateSchedule(utils.Date(2024, time.March, 15), utils.Date(2026, time.September, 15), leg)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		utils.Date(2024, time.March, 15),
		utils.Date(2025, time.March, 15),
		utils.Date(2026, time.March, 15),
		utils.Date(2026, time.September, 15),
	}, startDates(periods))
}

func TestGenerateScheduleEndOfMonth(t *testing.T) {
	t.Parallel()
	leg := market.EURFixedAnnual
	leg.Frequency = market.FreqSemi
	leg.EndOfMonth = true
	periods, err := swap.GenerateSchedule(utils.Date(2024, time.February, 29), utils.Date(2025, time.February, 28), leg)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		utils.Date(2024, time.February, 29),
		utils.Date(2024, time.August, 31),
		utils.Date(2025, time.February, 28),
	}, startDates(periods))
}

func TestGenerateScheduleAdjustsPayDates(t *testing.T) {
	t.Parallel()
	leg := market.FloatingLeg(market.Euribor(calendar.MustParsePeriod("6M")))
	periods, err := swap.GenerateSchedule(utils.Date(2024, time.March, 15), utils.Date(2026, time.March, 15), leg)
	require.NoError(t, err)
	require.Len(t, periods, 4)
	assert.Equal(t, utils.Date(2024, time.September, 16), periods[0].EndDate, "Sunday rolls to Monday")
	for i := 1; i < len(periods); i++ {
		assert.Equal(t, periods[i-1].EndDate, periods[i].StartDate)
	}
}

func TestGenerateScheduleRejectsInvertedDates(t *testing.T) {
	t.Parallel()
	_, err := swap.GenerateSchedule(utils.Date(2025, time.March, 15), utils.Date(2024, time.March, 15), market.EURFixedAnnual)
	assert.Error(t, err)
}

func TestVanillaSwapFloatingLegTelescopes(t *testing.T) {
	t.Parallel()
	curve := flatCurve{ref: utils.Date(2024, time.March, 13), rate: 0.035}
	start, end := utils.Date(2024, time.March, 15), utils.Date(2029, time.March, 15)
	s, err := swap.NewVanillaSwap(start, end, 0.03, market.EURFixedAnnual, market.Euribor(calendar.MustParsePeriod("6M")), 0)
	require.NoError(t, err)

	npv, err := s.FloatingLegNPV(curve, curve)
	require.NoError(t, err)
	dfStart, _ := curve.Discount(s.FloatSchedule[0].StartDate)
	dfEnd, _ := curve.Discount(s.FloatSchedule[len(s.FloatSchedule)-1].EndDate)
	assert.InDelta(t, dfStart-dfEnd, npv, 1e-14)
}

func TestVanillaSwapFairRateZeroesNPV(t *testing.T) {
	t.Parallel()
	curve := flatCurve{ref: utils.Date(2024, time.March, 13), rate: 0.035}
	start, end := utils.Date(2024, time.March, 15), utils.Date(2034, time.March, 15)
	index := market.Euribor(calendar.MustParsePeriod("6M"))

	s, err := swap.NewVanillaSwap(start, end, 0.01, market.EURFixedAnnual, index, 0.001)
	require.NoError(t, err)
	fair, err := s.FairRate(curve, curve)
	require.NoError(t, err)
	assert.InDelta(t, 0.037, fair, 0.003)

	s.FixedRate = fair
	pv, err := s.PV(curve, curve)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, pv.TotalPV, 1e-14)
	assert.InDelta(t, -pv.FixedLegPV, pv.FloatLegPV, 1e-14)
	assert.Equal(t, s.FloatSchedule[len(s.FloatSchedule)-1].EndDate, s.LatestDate())
}

func TestVanillaSwapFairSpreadZeroesNPV(t *testing.T) {
	t.Parallel()
	curve := flatCurve{ref: utils.Date(2024, time.March, 13), rate: 0.02}
	s, err := swap.NewVanillaSwap(utils.Date(2024, time.March, 15), utils.Date(2029, time.March, 15), 0.025, market.EURFixedAnnual, market.Euribor(calendar.MustParsePeriod("6M")), 0)
	require.NoError(t, err)

	spread, err := s.FairSpread(curve, curve)
	require.NoError(t, err)
	assert.Greater(t, spread, 0.0)

	s.Spread = spread
	pv, err := s.PV(curve, curve)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, pv.TotalPV, 1e-14)
}

func TestVanillaSwapUsesStoredFixings(t *testing.T) {
	t.Parallel()
	curve := flatCurve{ref: utils.Date(2024, time.June, 5), rate: 0.035}
	index := market.Euribor(calendar.MustParsePeriod("6M"))
	s, err := swap.NewVanillaSwap(utils.Date(2024, time.March, 15), utils.Date(2029, time.March, 15), 0.03, market.EURFixedAnnual, index, 0)
	require.NoError(t, err)

	_, err = s.FloatingCoupons(curve)
	require.Error(t, err)
	assert.True(t, errors.Is(err, market.ErrMissingFixing))

	index.AddFixing(utils.Date(2024, time.March, 13), 0.039)
	coupons, err := s.FloatingCoupons(curve)
	require.NoError(t, err)
	assert.Equal(t, 0.039, coupons[0].Rate)
	assert.NotEqual(t, 0.039, coupons[1].Rate)
}

func TestVanillaSwapNilCurve(t *testing.T) {
	t.Parallel()
	s, err := swap.NewVanillaSwap(utils.Date(2024, time.March, 15), utils.Date(2026, time.March, 15), 0.03, market.EURFixedAnnual, market.Euribor(calendar.MustParsePeriod("6M")), 0)
	require.NoError(t, err)
	_, err = s.FairRate(nil, nil)
	assert.ErrorIs(t, err, market.ErrNilCurve)
}

func TestBMASwapFairLiborFraction(t *testing.T) {
	t.Parallel()
	ref := utils.Date(2024, time.June, 5)
	libor := flatCurve{ref: ref, rate: 0.05}
	bma := flatCurve{ref: ref, rate: 0.034}

	leg := market.USDFixedSemi
	leg.Frequency = market.FreqQuarterly
	leg.DayCount = utils.ACTACT
	start, end := utils.Date(2024, time.June, 7), utils.Date(2027, time.June, 7)

	s, err := swap.NewBMASwap(start, end, 1.0, 0, market.USDLibor(calendar.MustParsePeriod("3M")), market.NewBMAIndex(), leg)
	require.NoError(t, err)

	fraction, err := s.FairLiborFraction(bma, libor, libor)
	require.NoError(t, err)
	assert.InDelta(t, 0.68, fraction, 0.02)

	s.LiborFraction = fraction
	bmaNPV, err := s.BMALegNPV(bma, libor)
	require.NoError(t, err)
	liborNPV, err := s.LiborLegNPV(libor, libor)
	require.NoError(t, err)
	assert.InDelta(t, bmaNPV, liborNPV, 1e-10)

	assert.False(t, s.LastFixingMaturity().Before(s.BMASchedule[len(s.BMASchedule)-1].EndDate))
	assert.False(t, s.LatestDate().Before(s.LastFixingMaturity()))
}
