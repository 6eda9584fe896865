package bond

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/swap"
	"github.com/meenmo/ratecurve/utils"
)

type ASWInput struct {
	SettlementDate time.Time
	DirtyPrice     float64
	Notional       float64
	Cashflows      []Cashflow

	// FloatLeg is the floating leg convention used for PV01.
	// It defines what the spread is "over" (e.g., EURIBOR6M).
	FloatLeg market.LegConvention

	DiscountCurve market.DiscountCurve
}

type ASWResult struct {
	SpreadBP float64
	PVBondRF float64
	PV01     float64
}

// ComputeASWSpread computes the asset swap spread (in bp) using the approximation:
//
//	ASW ≈ (PV_bond^{rf} - P_dirty) / PV01
//
// where PV01 is the PV of receiving 1bp on the floating leg over the swap schedule.
// Bond cash flows and DirtyPrice share the units of Notional.
func ComputeASWSpread(in ASWInput) (ASWResult, error) {
	if in.SettlementDate.IsZero() {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: SettlementDate is required")
	}
	if in.Notional <= 0 {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: Notional must be positive")
	}
	if market.IsNil(in.DiscountCurve) {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: %w", market.ErrNilCurve)
	}
	if len(in.Cashflows) == 0 {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: Cashflows are required")
	}

	maturity := in.SettlementDate
	for _, cf := range in.Cashflows {
		maturity = utils.MaxDate(maturity, cf.Date)
	}
	if !maturity.After(in.SettlementDate) {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: maturity (%s) must be after settlement (%s)", utils.FormatDate(maturity), utils.FormatDate(in.SettlementDate))
	}

	dfSettle, err := in.DiscountCurve.Discount(in.SettlementDate)
	if err != nil {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: %w", err)
	}

	pvBondRF := 0.0
	for _, cf := range in.Cashflows {
		if !cf.Date.After(in.SettlementDate) {
			continue
		}
		df, err := in.DiscountCurve.Discount(cf.Date)
		if err != nil {
			return ASWResult{}, fmt.Errorf("ComputeASWSpread: %w", err)
		}
		pvBondRF += cf.Amount() * df / dfSettle
	}

	periods, err := swap.GenerateSchedule(in.SettlementDate, maturity, in.FloatLeg)
	if err != nil {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: float leg schedule: %w", err)
	}

	pv01 := 0.0
	for _, p := range periods {
		if !p.PayDate.After(in.SettlementDate) {
			continue
		}
		df, err := in.DiscountCurve.Discount(p.PayDate)
		if err != nil {
			return ASWResult{}, fmt.Errorf("ComputeASWSpread: %w", err)
		}
		accrual := utils.YearFraction(p.StartDate, p.EndDate, in.FloatLeg.DayCount)
		pv01 += in.Notional * accrual * 1e-4 * df / dfSettle
	}
	if pv01 == 0 {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: PV01 is zero")
	}

	spreadBP := (pvBondRF - in.DirtyPrice) / pv01
	return ASWResult{
		SpreadBP: spreadBP,
		PVBondRF: pvBondRF,
		PV01:     pv01,
	}, nil
}

// AssetSwapSpread is the par asset swap spread of the bond bought at a clean
// price per 100 on settlement, paid over floatLeg.
func (b *FixedRateBond) AssetSwapSpread(curve market.DiscountCurve, cleanPrice float64, settlement time.Time, floatLeg market.LegConvention) (ASWResult, error) {
	dirty := (cleanPrice + b.AccruedAmount(settlement)) * b.FaceAmount / 100.0
	res, err := ComputeASWSpread(ASWInput{
		SettlementDate: settlement,
		DirtyPrice:     dirty,
		Notional:       b.FaceAmount,
		Cashflows:      b.Cashflows(),
		FloatLeg:       floatLeg,
		DiscountCurve:  curve,
	})
	if err != nil {
		return ASWResult{}, fmt.Errorf("FixedRateBond.AssetSwapSpread: %w", err)
	}
	return res, nil
}
