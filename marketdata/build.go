package marketdata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/meenmo/ratecurve/bond"
	"github.com/meenmo/ratecurve/calendar"
	"github.com/meenmo/ratecurve/interpolation"
	"github.com/meenmo/ratecurve/market"
	"github.com/meenmo/ratecurve/quote"
	"github.com/meenmo/ratecurve/ratehelper"
	"github.com/meenmo/ratecurve/termstructure"
	"github.com/meenmo/ratecurve/utils"
)

// Market is a built quote set: helpers sorted by pillar and the quotes that
// drive them, keyed by helper name.
type Market struct {
	Helpers []ratehelper.RateHelper
	Quotes  map[string]*quote.SimpleQuote
	Indexes map[string]*market.IborIndex
}

// NewContext returns a context set to the quote set's evaluation date.
func (qs *QuoteSet) NewContext(opts ...quote.Option) (*quote.Context, error) {
	d, err := utils.ParseDate(qs.EvaluationDate)
	if err != nil {
		return nil, fmt.Errorf("QuoteSet.NewContext: %w", err)
	}
	return quote.NewContext(d, opts...), nil
}

type builder struct {
	qs      *QuoteSet
	ctx     *quote.Context
	out     *Market
	family  func(calendar.Period) *market.IborIndex
	prefix  string
	fixed   market.LegConvention
	calName calendar.CalendarID
}

// Build creates one SimpleQuote and one helper per instrument.
func (qs *QuoteSet) Build(ctx *quote.Context) (*Market, error) {
	b := &builder{
		qs:  qs,
		ctx: ctx,
		out: &Market{
			Quotes:  make(map[string]*quote.SimpleQuote),
			Indexes: make(map[string]*market.IborIndex),
		},
	}
	if err := b.conventions(); err != nil {
		return nil, fmt.Errorf("QuoteSet.Build: %s: %w", qs.Name, err)
	}
	steps := []func() error{b.fixings, b.deposits, b.fras, b.futures, b.swaps, b.bonds}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("QuoteSet.Build: %s: %w", qs.Name, err)
		}
	}
	ratehelper.Sort(b.out.Helpers)
	return b.out, nil
}

// Curve builds the helpers and a settlement-based piecewise curve over them.
func (qs *QuoteSet) Curve(ctx *quote.Context, opts ...termstructure.CurveOption) (*termstructure.PiecewiseCurve, *Market, error) {
	m, err := qs.Build(ctx)
	if err != nil {
		return nil, nil, err
	}
	cal, err := calendar.ParseCalendar(qs.Calendar)
	if err != nil {
		return nil, nil, fmt.Errorf("QuoteSet.Curve: %w", err)
	}
	dc, err := utils.ParseDayCount(qs.DayCount)
	if err != nil {
		return nil, nil, fmt.Errorf("QuoteSet.Curve: %w", err)
	}
	trait, err := termstructure.ParseTrait(qs.Trait)
	if err != nil {
		return nil, nil, fmt.Errorf("QuoteSet.Curve: %w", err)
	}
	method, err := interpolation.ParseMethod(qs.Interpolation)
	if err != nil {
		return nil, nil, fmt.Errorf("QuoteSet.Curve: %w", err)
	}
	if qs.Name != "" {
		opts = append([]termstructure.CurveOption{termstructure.WithName(qs.Name)}, opts...)
	}
	curve, err := termstructure.NewPiecewiseCurveFromSettlement(ctx, qs.SettlementDays, cal, m.Helpers, dc, trait, method, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("QuoteSet.Curve: %w", err)
	}
	return curve, m, nil
}

func (b *builder) conventions() error {
	switch b.qs.Index {
	case "Euribor", "":
		b.family = market.Euribor
		b.prefix = "Euribor"
		b.calName = calendar.TARGET
	case "USDLibor":
		b.family = market.USDLibor
		b.prefix = "USDLibor"
		b.calName = calendar.USD
	default:
		return fmt.Errorf("unknown index family %q: %w", b.qs.Index, ErrInvalidQuoteSet)
	}
	switch b.qs.FixedLeg {
	case "EURFixedAnnual", "":
		b.fixed = market.EURFixedAnnual
	case "USDFixedSemi":
		b.fixed = market.USDFixedSemi
	default:
		return fmt.Errorf("unknown fixed leg %q: %w", b.qs.FixedLeg, ErrInvalidQuoteSet)
	}
	return nil
}

// index returns the shared index of the given tenor so stored fixings reach
// every helper using it.
func (b *builder) index(tenor calendar.Period) *market.IborIndex {
	ix := b.family(tenor)
	if shared, ok := b.out.Indexes[ix.Name]; ok {
		return shared
	}
	b.out.Indexes[ix.Name] = ix
	return ix
}

func (b *builder) add(h ratehelper.RateHelper, q *quote.SimpleQuote) error {
	if _, dup := b.out.Quotes[h.Name()]; dup {
		return fmt.Errorf("instrument %s listed twice: %w", h.Name(), ratehelper.ErrDuplicateMaturity)
	}
	b.out.Quotes[h.Name()] = q
	b.out.Helpers = append(b.out.Helpers, h)
	return nil
}

func (b *builder) fixings() error {
	for _, f := range b.qs.Fixings {
		tenor, err := calendar.ParsePeriod(strings.TrimPrefix(f.Index, b.prefix))
		if err != nil {
			return fmt.Errorf("fixing index %q: %w", f.Index, err)
		}
		d, err := utils.ParseDate(f.Date)
		if err != nil {
			return fmt.Errorf("fixing %s: %w", f.Index, err)
		}
		r, err := percent(f.Rate)
		if err != nil {
			return fmt.Errorf("fixing %s %s: %w", f.Index, f.Date, err)
		}
		b.index(tenor).AddFixing(d, r)
	}
	return nil
}

func (b *builder) deposits() error {
	for _, d := range b.qs.Deposits {
		tenor, err := calendar.ParsePeriod(d.Tenor)
		if err != nil {
			return fmt.Errorf("deposit: %w", err)
		}
		r, err := percent(d.Rate)
		if err != nil {
			return fmt.Errorf("deposit %s: %w", d.Tenor, err)
		}
		q := quote.NewSimpleQuote(b.ctx, "Deposit"+tenor.String(), r)
		h, err := ratehelper.NewDepositRateHelper(b.ctx, q, b.index(tenor))
		if err != nil {
			return err
		}
		if err := b.add(h, q); err != nil {
			return err
		}
	}
	return nil
}

// parseFRA splits "3x9" into start and end months.
func parseFRA(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("FRA tenor %q: %w", s, ErrInvalidQuoteSet)
	}
	start, err1 := strconv.Atoi(parts[0])
	end, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || end <= start {
		return 0, 0, fmt.Errorf("FRA tenor %q: %w", s, ErrInvalidQuoteSet)
	}
	return start, end, nil
}

func (b *builder) fras() error {
	for _, f := range b.qs.FRAs {
		start, end, err := parseFRA(f.Tenor)
		if err != nil {
			return err
		}
		r, err := percent(f.Rate)
		if err != nil {
			return fmt.Errorf("FRA %s: %w", f.Tenor, err)
		}
		q := quote.NewSimpleQuote(b.ctx, "FRA"+f.Tenor, r)
		ix := b.index(calendar.Period{Length: end - start, Unit: calendar.Months})
		h, err := ratehelper.NewFraRateHelper(b.ctx, q, start, ix)
		if err != nil {
			return err
		}
		if err := b.add(h, q); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) futures() error {
	for _, f := range b.qs.Futures {
		start, err := utils.ParseDate(f.Start)
		if err != nil {
			return fmt.Errorf("futures: %w", err)
		}
		kind := ratehelper.FuturesIMM
		switch strings.ToUpper(f.Type) {
		case "IMM", "":
		case "ASX":
			kind = ratehelper.FuturesASX
		default:
			return fmt.Errorf("futures type %q: %w", f.Type, ErrInvalidQuoteSet)
		}
		px, err := price(f.Price)
		if err != nil {
			return fmt.Errorf("futures %s: %w", f.Start, err)
		}
		months := f.Months
		if months == 0 {
			months = 3
		}
		var convexity quote.Quote
		if f.Convexity != nil {
			adj, err := percent(f.Convexity)
			if err != nil {
				return fmt.Errorf("futures %s convexity: %w", f.Start, err)
			}
			convexity = quote.NewSimpleQuote(b.ctx, "Convexity"+f.Start, adj)
		}
		q := quote.NewSimpleQuote(b.ctx, kind.String()+f.Start, px)
		ix := b.index(calendar.Period{Length: months, Unit: calendar.Months})
		h, err := ratehelper.NewFuturesRateHelper(b.ctx, q, start, months, ix.Calendar, ix.Convention, ix.EndOfMonth,
			ix.DayCount, convexity, kind)
		if err != nil {
			return err
		}
		if err := b.add(h, q); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) swaps() error {
	for _, s := range b.qs.Swaps {
		tenor, err := calendar.ParsePeriod(s.Tenor)
		if err != nil {
			return fmt.Errorf("swap: %w", err)
		}
		floatTenor := s.FloatTenor
		if floatTenor == "" {
			floatTenor = "6M"
		}
		ft, err := calendar.ParsePeriod(floatTenor)
		if err != nil {
			return fmt.Errorf("swap %s: %w", s.Tenor, err)
		}
		r, err := percent(s.Rate)
		if err != nil {
			return fmt.Errorf("swap %s: %w", s.Tenor, err)
		}
		var opts []ratehelper.SwapOption
		if s.ForwardStart != "" {
			fwd, err := calendar.ParsePeriod(s.ForwardStart)
			if err != nil {
				return fmt.Errorf("swap %s: %w", s.Tenor, err)
			}
			opts = append(opts, ratehelper.WithForwardStart(fwd))
		}
		if s.Spread != nil {
			spread, err := optionalPercent(s.Spread)
			if err != nil {
				return fmt.Errorf("swap %s spread: %w", s.Tenor, err)
			}
			opts = append(opts, ratehelper.WithSpread(quote.NewSimpleQuote(b.ctx, "Spread"+s.Tenor, spread)))
		}
		q := quote.NewSimpleQuote(b.ctx, "Swap"+s.Tenor, r)
		h, err := ratehelper.NewSwapRateHelper(b.ctx, q, tenor, b.fixed, b.index(ft), opts...)
		if err != nil {
			return err
		}
		if err := b.add(h, q); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) bonds() error {
	for _, bq := range b.qs.Bonds {
		issue, err := utils.ParseDate(bq.Issue)
		if err != nil {
			return fmt.Errorf("bond: %w", err)
		}
		maturity, err := utils.ParseDate(bq.Maturity)
		if err != nil {
			return fmt.Errorf("bond: %w", err)
		}
		coupon, err := percent(bq.Coupon)
		if err != nil {
			return fmt.Errorf("bond %s coupon: %w", bq.Maturity, err)
		}
		px, err := price(bq.Price)
		if err != nil {
			return fmt.Errorf("bond %s: %w", bq.Maturity, err)
		}
		freq, err := market.ParseFrequency(defaultString(bq.Frequency, "Annual"))
		if err != nil {
			return fmt.Errorf("bond %s: %w", bq.Maturity, err)
		}
		dc, err := utils.ParseDayCount(defaultString(bq.DayCount, "ACT/ACT"))
		if err != nil {
			return fmt.Errorf("bond %s: %w", bq.Maturity, err)
		}
		fb, err := bond.NewFixedRateBond(bq.SettlementDays, b.calName, 100, coupon, freq, dc,
			calendar.Following, 100, issue, maturity)
		if err != nil {
			return fmt.Errorf("bond %s: %w", bq.Maturity, err)
		}
		if len(bq.Cashflows) > 0 {
			feed := make([]bond.FeedCashflow, 0, len(bq.Cashflows))
			for _, cq := range bq.Cashflows {
				d, err := utils.ParseDate(cq.Date)
				if err != nil {
					return fmt.Errorf("bond %s cash flow: %w: %w", bq.Maturity, ErrInvalidQuoteSet, err)
				}
				feed = append(feed, bond.FeedCashflow{Date: d, CouponCents: cq.CouponCents, PrincipalCents: cq.PrincipalCents})
			}
			if err := fb.MatchFeed(feed); err != nil {
				return fmt.Errorf("bond %s: %w: %w", bq.Maturity, ErrInvalidQuoteSet, err)
			}
		}
		q := quote.NewSimpleQuote(b.ctx, "Bond"+utils.FormatDate(maturity), px)
		h, err := ratehelper.NewFixedRateBondHelper(b.ctx, q, fb)
		if err != nil {
			return err
		}
		if err := b.add(h, q); err != nil {
			return err
		}
	}
	return nil
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
