// Package bond values fixed-rate bullet bonds off a discount curve.
package bond

import (
	"errors"
	"time"
)

// ErrSettledBond is returned when every cash flow falls on or before settlement.
var ErrSettledBond = errors.New("bond has no cash flows after settlement")

// Cashflow is a single dated cash payment for a bond.
//
// Amounts are in currency units for the bond's face amount, not price-per-100.
type Cashflow struct {
	Date        time.Time
	AccrualFrom time.Time
	AccrualTo   time.Time
	Coupon      float64
	Principal   float64
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}
