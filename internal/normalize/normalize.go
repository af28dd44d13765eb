// Package normalize converts raw, untrusted scalar values into bounded
// canonical price and volume representations.
//
// All upstream numeric input (HTTP responses, CSV cells) passes through this
// package before touching storage. Every failure path resolves to "no value";
// nothing here panics or returns an error.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// priceScale is the number of fractional digits kept on a price.
const priceScale = 4

// priceLimit is the exclusive bound on |price|: valid prices satisfy
// -1e8 < p < 1e8.
var priceLimit = decimal.New(1, 8)

// Price converts a raw scalar into a fixed-point price with 4 fractional
// digits, rounding ties half-to-even (banker's rounding). It returns an
// invalid NullDecimal when the input is absent, non-numeric, NaN, infinite,
// or the rounded result falls outside (-1e8, 1e8).
func Price(raw any) decimal.NullDecimal {
	f, ok := toFloat(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.NullDecimal{}
	}
	d := decimal.NewFromFloat(f).RoundBank(priceScale)
	if d.Abs().Cmp(priceLimit) >= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// Volume converts a raw scalar into a whole-unit volume, rounding to the
// nearest integer with ties away from zero. Absent, non-numeric, non-finite,
// negative, or int64-overflowing inputs report ok=false.
func Volume(raw any) (v int64, ok bool) {
	f, hasValue := toFloat(raw)
	if !hasValue || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	r := math.Round(f)
	if r < 0 || r >= math.MaxInt64 {
		return 0, false
	}
	return int64(r), true
}

// toFloat coerces the scalar shapes produced by JSON decoding and CSV
// parsing into a float64.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
