// Package market holds the curve view instruments price against, interest
// rate indexes and leg conventions.
package market

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/meenmo/ratecurve/utils"
)

var (
	// ErrNilCurve is returned when a required curve argument is nil.
	ErrNilCurve = errors.New("nil curve")

	// ErrMissingFixing is returned when a past index fixing was never stored.
	ErrMissingFixing = errors.New("missing historical fixing")
)

// DiscountCurve is the read-only view instruments and rate helpers need.
type DiscountCurve interface {
	ReferenceDate() time.Time
	Discount(d time.Time) (float64, error)
}

// IsNil reports whether c is nil or wraps a nil pointer.
func IsNil(c DiscountCurve) bool {
	if c == nil {
		return true
	}
	rv := reflect.ValueOf(c)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// ForwardRate returns the simple forward rate over [start, end] in decimal.
func ForwardRate(c DiscountCurve, start, end time.Time, dc utils.DayCount) (float64, error) {
	if IsNil(c) {
		return 0, ErrNilCurve
	}
	alpha := utils.YearFraction(start, end, dc)
	if alpha == 0 {
		return 0, fmt.Errorf("ForwardRate: empty accrual period %s", utils.FormatDate(start))
	}
	dfStart, err := c.Discount(start)
	if err != nil {
		return 0, fmt.Errorf("ForwardRate: %w", err)
	}
	dfEnd, err := c.Discount(end)
	if err != nil {
		return 0, fmt.Errorf("ForwardRate: %w", err)
	}
	return (dfStart/dfEnd - 1.0) / alpha, nil
}
