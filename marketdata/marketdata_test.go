package marketdata_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratecurve/bond"
	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/marketdata"
	"github.com/meenmo/ratecurve/utils"
)

func TestLoadYAMLQuoteSet(t *testing.T) {
	t.Parallel()
	qs, err := marketdata.Load("testdata/euribor.yaml")
	require.NoError(t, err)
	assert.Equal(t, "EUR6M", qs.Name)
	assert.Len(t, qs.Deposits, 6)
	assert.Len(t, qs.Swaps, 15)

	ctx, err := qs.NewContext()
	require.NoError(t, err)
	assert.Equal(t, utils.Date(2024, time.June, 3), ctx.EvaluationDate())

	m, err := qs.Build(ctx)
	require.NoError(t, err)
	require.Len(t, m.Helpers, 21)
	for i := 1; i < len(m.Helpers); i++ {
		assert.True(t, m.Helpers[i].PillarDate().After(m.Helpers[i-1].PillarDate()))
	}

	v, err := m.Quotes["Deposit3M"].Value()
	require.NoError(t, err)
	assert.Equal(t, 0.04557, v, "percent strings convert exactly")
	v, err = m.Quotes["Deposit9M"].Value()
	require.NoError(t, err)
	assert.Equal(t, 0.0449, v)

	fixing, ok := m.Indexes["Euribor6M"].PastFixing(utils.Date(2024, time.May, 31))
	require.True(t, ok)
	assert.Equal(t, 0.03789, fixing)
}

func TestQuoteSetCurveReprices(t *testing.T) {
	t.Parallel()
	for _, path := range []string{"testdata/euribor.yaml", "testdata/euribor3m.json"} {
		path := path
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			qs, err := marketdata.Load(path)
			require.NoError(t, err)
			ctx, err := qs.NewContext()
			require.NoError(t, err)
			curve, m, err := qs.Curve(ctx)
			require.NoError(t, err)
			assert.Equal(t, qs.Name, curve.Name())
			assert.Equal(t, calendar.AddBusinessDays(calendar.TARGET, ctx.EvaluationDate(), 2), curve.ReferenceDate())

			for _, h := range m.Helpers {
				want, err := m.Quotes[h.Name()].Value()
				require.NoError(t, err)
				got, err := h.ImpliedQuote(curve)
				require.NoError(t, err, h.Name())
				assert.InDelta(t, want, got, 1e-9, h.Name())
			}
		})
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	t.Parallel()
	_, err := marketdata.Parse([]byte("name: x\n"), "yaml")
	assert.ErrorIs(t, err, marketdata.ErrInvalidQuoteSet, "missing evaluation date")

	_, err = marketdata.Parse([]byte(`{"evaluation_date": "2024-06-03"}`), "toml")
	assert.ErrorIs(t, err, marketdata.ErrInvalidQuoteSet)

	qs, err := marketdata.Parse([]byte(`{"evaluation_date": "2024-06-03", "deposits": [{"tenor": "3M", "rate": "n/a"}]}`), "json")
	require.NoError(t, err)
	ctx, err := qs.NewContext()
	require.NoError(t, err)
	_, err = qs.Build(ctx)
	assert.ErrorIs(t, err, marketdata.ErrInvalidQuoteSet)

	qs, err = marketdata.Parse([]byte(`{"evaluation_date": "2024-06-03", "fras": [{"tenor": "9x3", "rate": 4}]}`), "json")
	require.NoError(t, err)
	_, err = qs.Build(ctx)
	assert.ErrorIs(t, err, marketdata.ErrInvalidQuoteSet)

	qs, err = marketdata.Parse([]byte(`{"evaluation_date": "2024-06-03", "index": "SONIA"}`), "json")
	require.NoError(t, err)
	_, err = qs.Build(ctx)
	assert.ErrorIs(t, err, marketdata.ErrInvalidQuoteSet)
}

func TestQuoteChangeMovesCurve(t *testing.T) {
	t.Parallel()
	qs, err := marketdata.Load("testdata/euribor.yaml")
	require.NoError(t, err)
	ctx, err := qs.NewContext()
	require.NoError(t, err)
	curve, m, err := qs.Curve(ctx)
	require.NoError(t, err)

	d := utils.Date(2034, time.June, 5)
	before, err := curve.Discount(d)
	require.NoError(t, err)
	m.Quotes["Swap10Y"].SetValue(0.0557)
	after, err := curve.Discount(d)
	require.NoError(t, err)
	assert.Less(t, after, before)
}

func TestBondCashflowsCheckedAgainstSchedule(t *testing.T) {
	t.Parallel()
	const quoted = `{"evaluation_date": "2024-06-03", "bonds": [{"issue": "2024-01-15", "maturity": "2026-01-15",
		"coupon": 3, "frequency": "Annual", "day_count": "ACT/ACT", "settlement_days": 2, "price": 99.5,
		"cashflows": [
			{"date": "2025-01-15", "coupon_cents": 300},
			{"date": "2026-01-15", "coupon_cents": %d},
			{"date": "2026-01-15", "principal_cents": 10000}]}]}`

	qs, err := marketdata.Parse([]byte(fmt.Sprintf(quoted, 300)), "json")
	require.NoError(t, err)
	ctx, err := qs.NewContext()
	require.NoError(t, err)
	m, err := qs.Build(ctx)
	require.NoError(t, err)
	require.Len(t, m.Helpers, 1)
	assert.Equal(t, "Bond2026-01-15", m.Helpers[0].Name())

	qs, err = marketdata.Parse([]byte(fmt.Sprintf(quoted, 301)), "json")
	require.NoError(t, err)
	_, err = qs.Build(ctx)
	assert.ErrorIs(t, err, marketdata.ErrInvalidQuoteSet)
	assert.ErrorIs(t, err, bond.ErrFeedMismatch)
}
