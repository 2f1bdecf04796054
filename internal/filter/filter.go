// Package filter applies declarative filter and sort selections to record
// collections. Every Apply returns a new slice and leaves its input untouched;
// all supplied predicates are ANDed, and equal sort keys fall back to an
// ascending secondary key so repeated calls give identical order.
package filter

import (
	"cmp"
	"strings"

	"budgetbook/internal/core"
)

// All matches every value of an enum predicate.
const All = "all"

// Direction selects ascending or descending order for the primary sort key.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func (d Direction) apply(c int) int {
	if d == Asc {
		return c
	}
	return -c
}

func matchesQuery(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func matchesEnum(want, got string) bool {
	return want == "" || want == All || want == got
}

func matchesAny(selected []string, got string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if s == got {
			return true
		}
	}
	return false
}

// inDateRange checks inclusive bounds. Malformed bounds are ignored; a record
// with a malformed date fails any bound that is in effect.
func inDateRange(date, from, to string) bool {
	lo, hasLo := core.ParseDate(from)
	hi, hasHi := core.ParseDate(to)
	if !hasLo && !hasHi {
		return true
	}
	d, ok := core.ParseDate(date)
	if !ok {
		return false
	}
	if hasLo && d.Compare(lo) < 0 {
		return false
	}
	if hasHi && d.Compare(hi) > 0 {
		return false
	}
	return true
}

// amountBounds swaps min and max when both are set and inverted. The caller's
// filter value is not modified.
func amountBounds(minV, maxV *float64) (*float64, *float64) {
	if minV != nil && maxV != nil && *minV > *maxV {
		return maxV, minV
	}
	return minV, maxV
}

func inRange(v float64, lo, hi *float64) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

// compareDates orders valid dates in direction dir and malformed ones after
// every valid date either way.
func compareDates(a, b string, dir Direction) int {
	da, okA := core.ParseDate(a)
	db, okB := core.ParseDate(b)
	switch {
	case okA && okB:
		return dir.apply(da.Compare(db))
	case okA:
		return -1
	case okB:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}
