package filter

import (
	"cmp"
	"slices"

	"budgetbook/internal/core"
)

type TransactionSort string

const (
	SortLatest     TransactionSort = "latest"
	SortOldest     TransactionSort = "oldest"
	SortAmountDesc TransactionSort = "amount_desc"
	SortAmountAsc  TransactionSort = "amount_asc"
)

// TransactionFilter selects and orders transactions. Zero values disable a
// predicate; Type accepts "all", "income" or "expense".
type TransactionFilter struct {
	Query      string
	Type       string
	Categories []string
	DateFrom   string
	DateTo     string
	MinAmount  *float64
	MaxAmount  *float64
	Sort       TransactionSort
}

func (f TransactionFilter) Match(t core.Transaction) bool {
	lo, hi := amountBounds(f.MinAmount, f.MaxAmount)
	return f.match(t, lo, hi)
}

func (f TransactionFilter) match(t core.Transaction, lo, hi *float64) bool {
	return matchesQuery(f.Query, t.Category, t.Description) &&
		matchesEnum(f.Type, string(t.Type)) &&
		matchesAny(f.Categories, t.Category) &&
		inDateRange(t.Date, f.DateFrom, f.DateTo) &&
		inRange(t.Amount, lo, hi)
}

// Apply returns the matching transactions in the selected order. An unknown
// or empty sort falls back to latest first.
func (f TransactionFilter) Apply(records []core.Transaction) []core.Transaction {
	lo, hi := amountBounds(f.MinAmount, f.MaxAmount)
	out := make([]core.Transaction, 0, len(records))
	for _, t := range records {
		if f.match(t, lo, hi) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, f.compare)
	return out
}

func (f TransactionFilter) compare(a, b core.Transaction) int {
	var c int
	switch f.Sort {
	case SortOldest:
		c = compareDates(a.Date, b.Date, Asc)
	case SortAmountDesc:
		c = cmp.Compare(b.Amount, a.Amount)
	case SortAmountAsc:
		c = cmp.Compare(a.Amount, b.Amount)
	default:
		c = compareDates(a.Date, b.Date, Desc)
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// FilterTransactions is shorthand for f.Apply(records).
func FilterTransactions(records []core.Transaction, f TransactionFilter) []core.Transaction {
	return f.Apply(records)
}
