package market

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/utils"
)

// IborIndex is a term deposit rate index such as Euribor 6M.
type IborIndex struct {
	Name       string
	Tenor      calendar.Period
	FixingDays int
	Calendar   calendar.CalendarID
	Convention calendar.BusinessDayConvention
	EndOfMonth bool
	DayCount   utils.DayCount

	fixings map[string]float64
}

// Euribor returns the TARGET-calendar Euribor index of the given tenor.
func Euribor(tenor calendar.Period) *IborIndex {
	conv := calendar.ModifiedFollowing
	eom := true
	if tenor.Unit == calendar.Days || tenor.Unit == calendar.Weeks {
		conv = calendar.Following
		eom = false
	}
	return &IborIndex{
		Name:       "Euribor" + tenor.String(),
		Tenor:      tenor,
		FixingDays: 2,
		Calendar:   calendar.TARGET,
		Convention: conv,
		EndOfMonth: eom,
		DayCount:   utils.ACT360,
	}
}

// USDLibor returns a USD Libor index on the USD calendar.
func USDLibor(tenor calendar.Period) *IborIndex {
	ix := Euribor(tenor)
	ix.Name = "USDLibor" + tenor.String()
	ix.Calendar = calendar.USD
	return ix
}

// Clone copies the index including its stored fixings.
func (ix *IborIndex) Clone() *IborIndex {
	out := *ix
	out.fixings = make(map[string]float64, len(ix.fixings))
	for k, v := range ix.fixings {
		out.fixings[k] = v
	}
	return &out
}

// IsValidFixingDate reports whether the index fixes on d.
func (ix *IborIndex) IsValidFixingDate(d time.Time) bool {
	return calendar.IsBusinessDay(ix.Calendar, d)
}

// ValueDate is the start of the deposit fixed on fixing.
func (ix *IborIndex) ValueDate(fixing time.Time) time.Time {
	return calendar.AddBusinessDays(ix.Calendar, fixing, ix.FixingDays)
}

// FixingDate is the fixing that produces a deposit starting on value.
func (ix *IborIndex) FixingDate(value time.Time) time.Time {
	return calendar.AddBusinessDays(ix.Calendar, value, -ix.FixingDays)
}

// MaturityDate is the end of the deposit starting on value.
func (ix *IborIndex) MaturityDate(value time.Time) time.Time {
	return calendar.Advance(ix.Calendar, value, ix.Tenor, ix.Convention, ix.EndOfMonth)
}

// AddFixing stores a published fixing.
func (ix *IborIndex) AddFixing(fixing time.Time, rate float64) {
	if ix.fixings == nil {
		ix.fixings = make(map[string]float64)
	}
	ix.fixings[utils.FormatDate(fixing)] = rate
}

// PastFixing returns a stored fixing.
func (ix *IborIndex) PastFixing(fixing time.Time) (float64, bool) {
	v, ok := ix.fixings[utils.FormatDate(fixing)]
	return v, ok
}

// Forecast projects the fixing from curve discount factors.
func (ix *IborIndex) Forecast(curve DiscountCurve, fixing time.Time) (float64, error) {
	value := ix.ValueDate(fixing)
	r, err := ForwardRate(curve, value, ix.MaturityDate(value), ix.DayCount)
	if err != nil {
		return 0, fmt.Errorf("%s.Forecast: %w", ix.Name, err)
	}
	return r, nil
}

// Fixing returns the stored fixing when present. Fixings whose deposit starts
// before the curve's reference date must have been stored; later ones are
// forecast from curve.
func (ix *IborIndex) Fixing(curve DiscountCurve, fixing time.Time) (float64, error) {
	if v, ok := ix.PastFixing(fixing); ok {
		return v, nil
	}
	if IsNil(curve) {
		return 0, ErrNilCurve
	}
	if ix.ValueDate(fixing).Before(curve.ReferenceDate()) {
		return 0, fmt.Errorf("%s.Fixing: %s: %w", ix.Name, utils.FormatDate(fixing), ErrMissingFixing)
	}
	return ix.Forecast(curve, fixing)
}

// BMAIndex is the weekly-reset SIFMA municipal swap index.
type BMAIndex struct {
	Name     string
	Calendar calendar.CalendarID
	DayCount utils.DayCount
}

// NewBMAIndex returns the BMA index on the USD calendar with ACT/ACT accrual.
func NewBMAIndex() *BMAIndex {
	return &BMAIndex{Name: "BMA", Calendar: calendar.USD, DayCount: utils.ACTACT}
}

// IsValidFixingDate reports whether d is a reset date: Wednesdays, or the
// preceding business day when Wednesday is a holiday.
func (b *BMAIndex) IsValidFixingDate(d time.Time) bool {
	if !calendar.IsBusinessDay(b.Calendar, d) {
		return false
	}
	return calendar.AdjustBy(b.Calendar, wednesdayOfWeek(d), calendar.Preceding).Equal(d)
}

func wednesdayOfWeek(d time.Time) time.Time {
	offset := int(time.Wednesday) - int(d.Weekday())
	if d.Weekday() == time.Sunday {
		offset = 3
	}
	return d.AddDate(0, 0, offset)
}

// FixingSchedule lists the reset dates whose rates accrue within [start, end).
// The first reset is start itself so the coupon never needs a past fixing.
func (b *BMAIndex) FixingSchedule(start, end time.Time) []time.Time {
	out := []time.Time{start}
	w := wednesdayOfWeek(start)
	if !w.After(start) {
		w = w.AddDate(0, 0, 7)
	}
	for ; w.Before(end); w = w.AddDate(0, 0, 7) {
		d := calendar.AdjustBy(b.Calendar, w, calendar.Preceding)
		if d.After(out[len(out)-1]) && d.Before(end) {
			out = append(out, d)
		}
	}
	return out
}

// MaturityDate is the end of the one-week period starting at value.
func (b *BMAIndex) MaturityDate(value time.Time) time.Time {
	return calendar.AdjustBy(b.Calendar, value.AddDate(0, 0, 7), calendar.Following)
}

// Forecast projects the weekly rate fixed on fixing from curve.
func (b *BMAIndex) Forecast(curve DiscountCurve, fixing time.Time) (float64, error) {
	r, err := ForwardRate(curve, fixing, b.MaturityDate(fixing), b.DayCount)
	if err != nil {
		return 0, fmt.Errorf("%s.Forecast: %w", b.Name, err)
	}
	return r, nil
}
