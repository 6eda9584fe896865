// Package marketdata loads curve quote sets from YAML or JSON files and turns
// them into quotes and rate helpers.
package marketdata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// ErrInvalidQuoteSet flags files that cannot describe a curve.
var ErrInvalidQuoteSet = errors.New("invalid quote set")

// QuoteSet is one curve's market snapshot. Rates, spreads and coupons are in
// percent; futures and bonds are quoted as prices.
type QuoteSet struct {
	Name           string `yaml:"name" json:"name"`
	EvaluationDate string `yaml:"evaluation_date" json:"evaluation_date"`
	Calendar       string `yaml:"calendar" json:"calendar"`
	SettlementDays int    `yaml:"settlement_days" json:"settlement_days"`
	DayCount       string `yaml:"day_count" json:"day_count"`
	Trait          string `yaml:"trait" json:"trait"`
	Interpolation  string `yaml:"interpolation" json:"interpolation"`

	// Index names the Ibor family used by deposits, FRAs and swaps: Euribor or USDLibor.
	Index string `yaml:"index" json:"index"`
	// FixedLeg is EURFixedAnnual or USDFixedSemi.
	FixedLeg string `yaml:"fixed_leg" json:"fixed_leg"`

	Deposits []RateQuote    `yaml:"deposits" json:"deposits"`
	FRAs     []RateQuote    `yaml:"fras" json:"fras"`
	Futures  []FuturesQuote `yaml:"futures" json:"futures"`
	Swaps    []SwapQuote    `yaml:"swaps" json:"swaps"`
	Bonds    []BondQuote    `yaml:"bonds" json:"bonds"`
	Fixings  []FixingQuote  `yaml:"fixings" json:"fixings"`
}

// RateQuote is a deposit ("6M") or FRA ("3x9") rate.
type RateQuote struct {
	Tenor string `yaml:"tenor" json:"tenor"`
	Rate  any    `yaml:"rate" json:"rate"`
}

// FuturesQuote is a 100 minus rate futures price.
type FuturesQuote struct {
	Start     string `yaml:"start" json:"start"`
	Months    int    `yaml:"months" json:"months"`
	Type      string `yaml:"type" json:"type"`
	Price     any    `yaml:"price" json:"price"`
	Convexity any    `yaml:"convexity" json:"convexity"`
}

// SwapQuote is a par swap rate against the Index of the given tenor.
type SwapQuote struct {
	Tenor        string `yaml:"tenor" json:"tenor"`
	Rate         any    `yaml:"rate" json:"rate"`
	FloatTenor   string `yaml:"float_tenor" json:"float_tenor"`
	ForwardStart string `yaml:"forward_start" json:"forward_start"`
	Spread       any    `yaml:"spread" json:"spread"`
}

// BondQuote is a fixed-rate bond with its clean price per 100.
type BondQuote struct {
	Issue          string `yaml:"issue" json:"issue"`
	Maturity       string `yaml:"maturity" json:"maturity"`
	Coupon         any    `yaml:"coupon" json:"coupon"`
	Frequency      string `yaml:"frequency" json:"frequency"`
	DayCount       string `yaml:"day_count" json:"day_count"`
	SettlementDays int    `yaml:"settlement_days" json:"settlement_days"`
	Price          any    `yaml:"price" json:"price"`

	// Cashflows optionally lists the vendor schedule, checked against the
	// generated one.
	Cashflows []CashflowQuote `yaml:"cashflows" json:"cashflows"`
}

// CashflowQuote is one vendor bond flow in minor units per 100 face.
type CashflowQuote struct {
	Date           string `yaml:"date" json:"date"`
	CouponCents    int64  `yaml:"coupon_cents" json:"coupon_cents"`
	PrincipalCents int64  `yaml:"principal_cents" json:"principal_cents"`
}

// FixingQuote is a published index fixing in percent.
type FixingQuote struct {
	Index string `yaml:"index" json:"index"`
	Date  string `yaml:"date" json:"date"`
	Rate  any    `yaml:"rate" json:"rate"`
}

// Load reads a quote set, choosing the decoder from the file extension.
func Load(path string) (*QuoteSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("marketdata.Load: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	qs, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("marketdata.Load: %s: %w", path, err)
	}
	return qs, nil
}

// Parse decodes data as "yaml", "yml" or "json".
func Parse(data []byte, format string) (*QuoteSet, error) {
	var qs QuoteSet
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &qs); err != nil {
			return nil, fmt.Errorf("Parse: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &qs); err != nil {
			return nil, fmt.Errorf("Parse: %w", err)
		}
	default:
		return nil, fmt.Errorf("Parse: unsupported format %q: %w", format, ErrInvalidQuoteSet)
	}
	if qs.EvaluationDate == "" {
		return nil, fmt.Errorf("Parse: missing evaluation_date: %w", ErrInvalidQuoteSet)
	}
	return &qs, nil
}

// number reads a YAML/JSON scalar such as 4.559, "4.559" or "4.559%".
func number(v any) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, fmt.Errorf("missing value: %w", ErrInvalidQuoteSet)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("value %v: %w", v, ErrInvalidQuoteSet)
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("value %q: %w", s, ErrInvalidQuoteSet)
	}
	return d, nil
}

var hundred = decimal.NewFromInt(100)

// percent converts a percent quote to a decimal rate without binary rounding
// of the intermediate division.
func percent(v any) (float64, error) {
	d, err := number(v)
	if err != nil {
		return 0, err
	}
	return d.Div(hundred).InexactFloat64(), nil
}

// price reads a price quote unchanged.
func price(v any) (float64, error) {
	d, err := number(v)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// optionalPercent is percent with a missing value read as zero.
func optionalPercent(v any) (float64, error) {
	if v == nil {
		return 0, nil
	}
	return percent(v)
}
