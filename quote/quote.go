package quote

import (
	"errors"
	"fmt"
)

// ErrStaleQuote is returned when a quote is read before it was ever set.
var ErrStaleQuote = errors.New("quote has no value")

// Quote is an observable market value.
type Quote interface {
	Observable
	Value() (float64, error)
	IsValid() bool
}

// SimpleQuote is a settable quote that notifies observers on change.
type SimpleQuote struct {
	ctx   *Context
	id    ObservableID
	name  string
	value float64
	valid bool
}

// NewSimpleQuote registers a quote holding value.
func NewSimpleQuote(ctx *Context, name string, value float64) *SimpleQuote {
	q := NewEmptyQuote(ctx, name)
	q.value = value
	q.valid = true
	return q
}

// NewEmptyQuote registers a quote with no value yet.
func NewEmptyQuote(ctx *Context, name string) *SimpleQuote {
	return &SimpleQuote{ctx: ctx, id: ctx.NewObservable(), name: name}
}

// ObservableID implements Observable.
func (q *SimpleQuote) ObservableID() ObservableID { return q.id }

// Name is the label given at construction.
func (q *SimpleQuote) Name() string { return q.name }

// IsValid reports whether a value has been set.
func (q *SimpleQuote) IsValid() bool { return q.valid }

// Value returns the current value or ErrStaleQuote.
func (q *SimpleQuote) Value() (float64, error) {
	if !q.valid {
		return 0, fmt.Errorf("Value: %s: %w", q.name, ErrStaleQuote)
	}
	return q.value, nil
}

// SetValue stores v and notifies observers if it differs from the current value.
func (q *SimpleQuote) SetValue(v float64) {
	if q.valid && q.value == v {
		return
	}
	q.value = v
	q.valid = true
	q.ctx.Notify(q.id)
}

// Reset clears the value and notifies observers.
func (q *SimpleQuote) Reset() {
	if !q.valid {
		return
	}
	q.valid = false
	q.value = 0
	q.ctx.Notify(q.id)
}
