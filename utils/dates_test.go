package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratecurve/utils"
)

func TestAddMonthClipsToMonthEnd(t *testing.T) {
	t.Parallel()
	tests := []struct {
		start  time.Time
		months int
		want   time.Time
	}{
		{utils.Date(2024, time.January, 31), 1, utils.Date(2024, time.February, 29)},
		{utils.Date(2023, time.January, 31), 1, utils.Date(2023, time.February, 28)},
		{utils.Date(2024, time.March, 31), -1, utils.Date(2024, time.February, 29)},
		{utils.Date(2024, time.May, 15), 12, utils.Date(2025, time.May, 15)},
		{utils.Date(2024, time.August, 31), 1, utils.Date(2024, time.September, 30)},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, utils.AddMonth(tc.start, tc.months), "start %s months %d", tc.start, tc.months)
	}
}

func TestAdjacentDates(t *testing.T) {
	t.Parallel()
	dates := []time.Time{
		utils.Date(2024, 1, 1),
		utils.Date(2024, 6, 1),
		utils.Date(2025, 1, 1),
	}
	lo, hi, err := utils.AdjacentDates(utils.Date(2024, 7, 1), dates)
	require.NoError(t, err)
	assert.Equal(t, dates[1], lo)
	assert.Equal(t, dates[2], hi)

	lo, hi, err = utils.AdjacentDates(utils.Date(2030, 1, 1), dates)
	require.NoError(t, err)
	assert.Equal(t, dates[1], lo)
	assert.Equal(t, dates[2], hi)

	_, _, err = utils.AdjacentDates(utils.Date(2030, 1, 1), dates[:1])
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	t.Parallel()
	d, err := utils.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, utils.Date(2024, time.February, 29), d)

	_, err = utils.ParseDate("2024/02/29")
	assert.Error(t, err)
}

func TestYearFraction(t *testing.T) {
	t.Parallel()
	start := utils.Date(2024, time.January, 31)
	end := utils.Date(2024, time.July, 31)

	assert.InDelta(t, 182.0/360.0, utils.YearFraction(start, end, utils.ACT360), 1e-15)
	assert.InDelta(t, 182.0/365.0, utils.YearFraction(start, end, utils.ACT365F), 1e-15)
	assert.InDelta(t, 0.5, utils.YearFraction(start, end, utils.Thirty360), 1e-15)
	assert.InDelta(t, 0.5, utils.YearFraction(start, end, utils.Thirty360E), 1e-15)

	// 2023-12-01 .. 2024-03-01: 31 days in 2023, 60 in leap 2024.
	aa := utils.YearFraction(utils.Date(2023, 12, 1), utils.Date(2024, 3, 1), utils.ACTACT)
	assert.InDelta(t, 31.0/365.0+60.0/366.0, aa, 1e-15)
}

func TestThirty360BondBasis(t *testing.T) {
	t.Parallel()
	// End day 31 only rolls back when the start day is already 30 or 31.
	assert.Equal(t, 76, utils.DayCountDays(utils.Date(2024, 1, 15), utils.Date(2024, 3, 31), utils.Thirty360))
	assert.Equal(t, 30, utils.DayCountDays(utils.Date(2024, 3, 31), utils.Date(2024, 4, 30), utils.Thirty360))
	assert.Equal(t, 60, utils.DayCountDays(utils.Date(2024, 3, 30), utils.Date(2024, 5, 31), utils.Thirty360))
	assert.Equal(t, 75, utils.DayCountDays(utils.Date(2024, 1, 15), utils.Date(2024, 3, 31), utils.Thirty360E))
}

func TestParseDayCount(t *testing.T) {
	t.Parallel()
	dc, err := utils.ParseDayCount("Actual/360")
	require.NoError(t, err)
	assert.Equal(t, utils.ACT360, dc)

	_, err = utils.ParseDayCount("BUS/252")
	assert.Error(t, err)
}
