// Package analytics groups transactions by category, month and year and
// derives the totals shown on the annual and monthly analysis views.
//
// Every function is a pure computation over its arguments: inputs are never
// modified and results are rebuilt on each call.
package analytics

import (
	"cmp"
	"slices"

	"budgetbook/internal/core"
)

// CategoryTotal is the summed amount and record count of one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Count    int     `json:"count"`
}

// CategoryAnnualTotal is a category's share of a year's total for one type.
type CategoryAnnualTotal struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// SumByType sums the amounts of records of type t whose date falls in scope
// ("YYYY", "YYYY-MM", or "" for every dated record).
func SumByType(records []core.Transaction, t core.TransactionType, scope string) float64 {
	var total core.Total
	for _, r := range records {
		if r.Type == t && core.InScope(r.Date, scope) {
			total.Add(r.Amount)
		}
	}
	return total.Float64()
}

// GroupByCategory sums amounts and counts records per category. A nil t
// groups every type. The result is ordered by amount descending, then by
// category name ascending.
func GroupByCategory(records []core.Transaction, t *core.TransactionType) []CategoryTotal {
	return groupScoped(records, t, "", false)
}

// CategoryAnnualTotals groups the year's records of type t and attaches each
// category's percentage of the combined total (0 when the total is 0).
func CategoryAnnualTotals(records []core.Transaction, year int, t core.TransactionType) []CategoryAnnualTotal {
	groups := groupScoped(records, &t, core.YearScope(year), true)

	var total core.Total
	for _, g := range groups {
		total.Add(g.Amount)
	}
	sum := total.Float64()

	out := make([]CategoryAnnualTotal, 0, len(groups))
	for _, g := range groups {
		pct := 0.0
		if sum > 0 {
			pct = g.Amount / sum * 100
		}
		out = append(out, CategoryAnnualTotal{Category: g.Category, Amount: g.Amount, Percentage: pct})
	}
	return out
}

// TopN returns the n highest-amount categories of type t within scope.
func TopN(records []core.Transaction, scope string, t core.TransactionType, n int) []CategoryTotal {
	if n <= 0 {
		return []CategoryTotal{}
	}
	groups := groupScoped(records, &t, scope, true)
	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// groupScoped partitions records by category. When scoped is false the date
// is not inspected at all, so undated records still count.
func groupScoped(records []core.Transaction, t *core.TransactionType, scope string, scoped bool) []CategoryTotal {
	type bucket struct {
		total core.Total
		count int
	}
	buckets := make(map[string]*bucket)
	for _, r := range records {
		if t != nil && r.Type != *t {
			continue
		}
		if scoped && !core.InScope(r.Date, scope) {
			continue
		}
		if !core.IsFinite(r.Amount) {
			continue
		}
		b, ok := buckets[r.Category]
		if !ok {
			b = &bucket{}
			buckets[r.Category] = b
		}
		b.total.Add(r.Amount)
		b.count++
	}

	out := make([]CategoryTotal, 0, len(buckets))
	for category, b := range buckets {
		out = append(out, CategoryTotal{Category: category, Amount: b.total.Float64(), Count: b.count})
	}
	slices.SortFunc(out, func(a, b CategoryTotal) int {
		if c := cmp.Compare(b.Amount, a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}
