// Package swap prices the swaps used to calibrate and check yield curves:
// fixed against Ibor, and BMA against a fraction of Libor.
package swap

import (
	"errors"
	"time"
)

var (
	// ErrZeroAnnuity is returned when a leg has no remaining cash flows to divide by.
	ErrZeroAnnuity = errors.New("zero annuity")
)

// SchedulePeriod is a cashflow period for a single leg.
//
// Dates are business-day adjusted per the provided leg convention.
type SchedulePeriod struct {
	StartDate   time.Time
	EndDate     time.Time
	PayDate     time.Time
	AccrualDays int
}

// Coupon is one projected floating coupon.
//
// Rate is returned as a decimal (e.g., 0.025 == 2.5%).
type Coupon struct {
	FixingDate time.Time
	StartDate  time.Time
	EndDate    time.Time
	PayDate    time.Time
	Accrual    float64
	Rate       float64
	Amount     float64
}

// PV contains present values for each leg and the net sum.
type PV struct {
	FixedLegPV float64
	FloatLegPV float64
	TotalPV    float64
}
