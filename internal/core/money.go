// Package core provides the budget domain types and the money/date helpers
// shared by the aggregation, filtering and billing packages.
//
// Amounts are plain float64 values in the record's currency. Arithmetic that
// feeds a displayed figure goes through shopspring/decimal so sums and
// rounding do not pick up binary floating point noise.
package core

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundMoney rounds x to two decimal places, halves away from zero.
// Non-finite input yields 0.
func RoundMoney(x float64) float64 {
	if !IsFinite(x) {
		return 0
	}
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Total accumulates amounts exactly. The zero value is an empty total.
// Non-finite amounts are skipped.
type Total struct {
	sum decimal.Decimal
}

func (t *Total) Add(x float64) {
	if !IsFinite(x) {
		return
	}
	t.sum = t.sum.Add(decimal.NewFromFloat(x))
}

func (t Total) Float64() float64 {
	return t.sum.InexactFloat64()
}

// Decimal exposes the exact running sum.
func (t Total) Decimal() decimal.Decimal {
	return t.sum
}
