package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/utils"
)

func TestTargetHolidays(t *testing.T) {
	t.Parallel()
	holidays := []time.Time{
		utils.Date(2024, time.January, 1),
		utils.Date(2024, time.March, 29), // Good Friday
		utils.Date(2024, time.April, 1),  // Easter Monday
		utils.Date(2024, time.May, 1),
		utils.Date(2024, time.December, 25),
		utils.Date(2024, time.December, 26),
		utils.Date(2001, time.December, 31),
	}
	for _, d := range holidays {
		assert.False(t, calendar.IsBusinessDay(calendar.TARGET, d), "%s should be a TARGET holiday", d)
	}
	assert.True(t, calendar.IsBusinessDay(calendar.TARGET, utils.Date(2024, time.December, 31)))
	assert.False(t, calendar.IsBusinessDay(calendar.TARGET, utils.Date(2024, time.June, 1)), "Saturday")
	assert.True(t, calendar.IsBusinessDay(calendar.NullCalendar, utils.Date(2024, time.June, 1)))
}

func TestUSDHolidays(t *testing.T) {
	t.Parallel()
	holidays := []time.Time{
		utils.Date(2024, time.January, 15),  // MLK
		utils.Date(2024, time.May, 27),      // Memorial Day
		utils.Date(2024, time.June, 19),     // Juneteenth
		utils.Date(2024, time.July, 4),      // Independence Day
		utils.Date(2024, time.November, 28), // Thanksgiving
		utils.Date(2022, time.December, 26), // Christmas observed
	}
	for _, d := range holidays {
		assert.False(t, calendar.IsBusinessDay(calendar.USD, d), "%s should be a USD holiday", d)
	}
	assert.True(t, calendar.IsBusinessDay(calendar.USD, utils.Date(2021, time.June, 18)))
}

func TestEasterSunday(t *testing.T) {
	t.Parallel()
	assert.Equal(t, utils.Date(2024, time.March, 31), calendar.EasterSunday(2024))
	assert.Equal(t, utils.Date(2025, time.April, 20), calendar.EasterSunday(2025))
	assert.Equal(t, utils.Date(2019, time.April, 21), calendar.EasterSunday(2019))
}

func TestAdjustConventions(t *testing.T) {
	t.Parallel()
	sat := utils.Date(2024, time.August, 31)
	assert.Equal(t, utils.Date(2024, time.September, 2), calendar.AdjustBy(calendar.TARGET, sat, calendar.Following))
	assert.Equal(t, utils.Date(2024, time.August, 30), calendar.AdjustBy(calendar.TARGET, sat, calendar.ModifiedFollowing))
	assert.Equal(t, utils.Date(2024, time.August, 30), calendar.AdjustBy(calendar.TARGET, sat, calendar.Preceding))
	assert.Equal(t, sat, calendar.AdjustBy(calendar.TARGET, sat, calendar.Unadjusted))

	sun := utils.Date(2024, time.September, 1)
	assert.Equal(t, utils.Date(2024, time.September, 2), calendar.AdjustBy(calendar.TARGET, sun, calendar.ModifiedPreceding))
}

func TestAddBusinessDaysSkipsHolidays(t *testing.T) {
	t.Parallel()
	// Thursday before Easter 2024 plus two business days lands on Tuesday.
	got := calendar.AddBusinessDays(calendar.TARGET, utils.Date(2024, time.March, 28), 2)
	assert.Equal(t, utils.Date(2024, time.April, 3), got)

	back := calendar.AddBusinessDays(calendar.TARGET, utils.Date(2024, time.April, 2), -1)
	assert.Equal(t, utils.Date(2024, time.March, 28), back)
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()
	tests := map[string]calendar.Period{
		"1W":  {Length: 1, Unit: calendar.Weeks},
		"6m":  {Length: 6, Unit: calendar.Months},
		"10Y": {Length: 10, Unit: calendar.Years},
		"2D":  {Length: 2, Unit: calendar.Days},
	}
	for in, want := range tests {
		got, err := calendar.ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, bad := range []string{"", "M", "3Q", "xY"} {
		_, err := calendar.ParsePeriod(bad)
		assert.Error(t, err, bad)
	}
	assert.Equal(t, "18M", calendar.Period{Length: 18, Unit: calendar.Months}.String())
}

func TestAdvanceEndOfMonth(t *testing.T) {
	t.Parallel()
	start := utils.Date(2024, time.February, 29)
	got := calendar.Advance(calendar.TARGET, start, calendar.MustParsePeriod("1M"), calendar.ModifiedFollowing, true)
	assert.Equal(t, utils.Date(2024, time.March, 28), got, "Mar 29-31 are Good Friday and a weekend")

	got = calendar.Advance(calendar.TARGET, start, calendar.MustParsePeriod("1M"), calendar.ModifiedFollowing, false)
	assert.Equal(t, utils.Date(2024, time.March, 28), got)

	got = calendar.Advance(calendar.TARGET, utils.Date(2024, time.January, 31), calendar.MustParsePeriod("3M"), calendar.ModifiedFollowing, true)
	assert.Equal(t, utils.Date(2024, time.April, 30), got)

	got = calendar.Advance(calendar.TARGET, utils.Date(2024, time.May, 15), calendar.MustParsePeriod("1W"), calendar.Following, false)
	assert.Equal(t, utils.Date(2024, time.May, 22), got)
}

func TestIMMDates(t *testing.T) {
	t.Parallel()
	assert.True(t, calendar.IsIMMDate(utils.Date(2024, time.March, 20), true))
	assert.False(t, calendar.IsIMMDate(utils.Date(2024, time.April, 17), true))
	assert.True(t, calendar.IsIMMDate(utils.Date(2024, time.April, 17), false))

	assert.Equal(t, utils.Date(2024, time.June, 19), calendar.NextIMMDate(utils.Date(2024, time.March, 20), true))
	assert.Equal(t, utils.Date(2025, time.March, 19), calendar.NextIMMDate(utils.Date(2024, time.December, 20), true))

	code, err := calendar.IMMCode(utils.Date(2025, time.March, 19))
	require.NoError(t, err)
	assert.Equal(t, "H5", code)

	assert.True(t, calendar.IsASXDate(utils.Date(2024, time.March, 8), true))
	assert.Equal(t, utils.Date(2024, time.June, 14), calendar.NextASXDate(utils.Date(2024, time.March, 8), true))
}
