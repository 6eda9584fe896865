package quote_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratecurve/quote"
)

func newContext() *quote.Context {
	return quote.NewContext(time.Date(2024, time.June, 3, 15, 30, 0, 0, time.UTC))
}

func TestEmptyQuoteIsStale(t *testing.T) {
	ctx := newContext()
	q := quote.NewEmptyQuote(ctx, "1Y")
	_, err := q.Value()
	require.ErrorIs(t, err, quote.ErrStaleQuote)
	assert.False(t, q.IsValid())

	q.SetValue(0.045)
	v, err := q.Value()
	require.NoError(t, err)
	assert.Equal(t, 0.045, v)
}

func TestSetValueNotifiesObservers(t *testing.T) {
	ctx := newContext()
	q := quote.NewSimpleQuote(ctx, "6M", 0.04)

	calls := 0
	obs := ctx.Register(func() { calls++ })
	ctx.Observe(obs, q.ObservableID())
	ctx.Observe(obs, q.ObservableID())
	assert.Equal(t, 1, ctx.Observers(q.ObservableID()))

	q.SetValue(0.04)
	assert.Equal(t, 0, calls, "unchanged value must not notify")

	q.SetValue(0.041)
	assert.Equal(t, 1, calls)

	q.Reset()
	assert.Equal(t, 2, calls)

	ctx.Unregister(obs)
	q.SetValue(0.05)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, ctx.Observers(q.ObservableID()))
}

func TestEvaluationDateBroadcast(t *testing.T) {
	ctx := newContext()
	assert.Equal(t, time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC), ctx.EvaluationDate())

	var seen []string
	a := ctx.Register(func() { seen = append(seen, "a") })
	b := ctx.Register(func() { seen = append(seen, "b") })
	ctx.ObserveEvaluationDate(a)
	ctx.ObserveEvaluationDate(b)

	ctx.SetEvaluationDate(time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, seen)

	ctx.SetEvaluationDate(time.Date(2024, time.June, 4, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestCascadingNotification(t *testing.T) {
	ctx := newContext()
	q := quote.NewSimpleQuote(ctx, "swap", 0.03)
	derived := ctx.NewObservable()

	stale := false
	leaf := 0
	mid := ctx.Register(func() {
		if !stale {
			stale = true
			ctx.Notify(derived)
		}
	})
	ctx.Observe(mid, q.ObservableID())
	end := ctx.Register(func() { leaf++ })
	ctx.Observe(end, derived)

	q.SetValue(0.031)
	q.SetValue(0.032)
	assert.Equal(t, 1, leaf, "derived observable only fires on the first invalidation")
}

func TestUnregisterDuringNotify(t *testing.T) {
	ctx := newContext()
	q := quote.NewSimpleQuote(ctx, "dep", 0.01)

	var second quote.ObserverID
	calls := 0
	first := ctx.Register(func() { ctx.Unregister(second) })
	second = ctx.Register(func() { calls++ })
	ctx.Observe(first, q.ObservableID())
	ctx.Observe(second, q.ObservableID())

	q.SetValue(0.02)
	assert.Equal(t, 0, calls)
}
