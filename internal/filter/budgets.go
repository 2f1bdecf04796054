package filter

import (
	"cmp"
	"slices"

	"budgetbook/internal/core"
	"budgetbook/internal/usage"
)

// BudgetCategoryData is one category row of a month's budget view.
type BudgetCategoryData struct {
	Category     string      `json:"category"`
	Budget       float64     `json:"budget"`
	Spent        float64     `json:"spent"`
	Remaining    float64     `json:"remaining"`
	UsagePercent *float64    `json:"usagePercent"`
	State        usage.State `json:"state"`
	Progress     float64     `json:"progress"`
}

// BuildBudgetCategoryData returns one row per category that is budgeted for
// month or has expenses in it, ordered by category name. budget may be nil.
func BuildBudgetCategoryData(month string, txs []core.Transaction, budget *core.MonthlyBudget) []BudgetCategoryData {
	spent := make(map[string]*core.Total)
	if _, _, ok := core.ParseMonth(month); ok {
		for _, t := range txs {
			if t.Type != core.Expense || !core.InScope(t.Date, month) {
				continue
			}
			if spent[t.Category] == nil {
				spent[t.Category] = &core.Total{}
			}
			spent[t.Category].Add(t.Amount)
		}
	}

	limits := map[string]float64{}
	if budget != nil && budget.Month == month {
		limits = budget.Categories
	}

	names := make([]string, 0, len(spent)+len(limits))
	for name := range spent {
		names = append(names, name)
	}
	for name := range limits {
		if spent[name] == nil {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	rows := make([]BudgetCategoryData, 0, len(names))
	for _, name := range names {
		var s float64
		if spent[name] != nil {
			s = spent[name].Float64()
		}
		b := limits[name]
		pct := usage.UsagePercent(s, b)
		rows = append(rows, BudgetCategoryData{
			Category:     name,
			Budget:       b,
			Spent:        s,
			Remaining:    core.RoundMoney(b - s),
			UsagePercent: pct,
			State:        usage.Classify(pct),
			Progress:     usage.ProgressWidth(pct),
		})
	}
	return rows
}

type BudgetSortKey string

const (
	BudgetSortUsage     BudgetSortKey = "usage"
	BudgetSortSpent     BudgetSortKey = "spent"
	BudgetSortRemaining BudgetSortKey = "remaining"
	BudgetSortBudget    BudgetSortKey = "budget"
	BudgetSortName      BudgetSortKey = "name"
)

// BudgetFilter selects and orders budget category rows. Status accepts "all"
// or a usage.State. Usage bounds are percentages clamped to [0, 100]; a row
// without a budget never satisfies MinUsage. Usage bounds are not swapped.
type BudgetFilter struct {
	Query     string
	Status    string
	MinUsage  *float64
	MaxUsage  *float64
	SortKey   BudgetSortKey
	Direction Direction
}

func clampBound(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := max(0, min(100, *p))
	return &v
}

func (f BudgetFilter) Match(row BudgetCategoryData) bool {
	if !matchesQuery(f.Query, row.Category) || !matchesEnum(f.Status, string(row.State)) {
		return false
	}
	lo, hi := clampBound(f.MinUsage), clampBound(f.MaxUsage)
	if row.UsagePercent == nil {
		return lo == nil
	}
	return inRange(*row.UsagePercent, lo, hi)
}

// Apply filters rows and sorts them. The default order is usage descending.
// Rows without a usage percentage sort last for the usage key in either
// direction.
func (f BudgetFilter) Apply(rows []BudgetCategoryData) []BudgetCategoryData {
	out := make([]BudgetCategoryData, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, f.compare)
	return out
}

func (f BudgetFilter) compare(a, b BudgetCategoryData) int {
	dir := f.Direction
	if dir != Asc {
		dir = Desc
	}

	var c int
	switch f.SortKey {
	case BudgetSortSpent:
		c = dir.apply(cmp.Compare(a.Spent, b.Spent))
	case BudgetSortRemaining:
		c = dir.apply(cmp.Compare(a.Remaining, b.Remaining))
	case BudgetSortBudget:
		c = dir.apply(cmp.Compare(a.Budget, b.Budget))
	case BudgetSortName:
		c = dir.apply(cmp.Compare(a.Category, b.Category))
	default:
		c = compareUsage(a.UsagePercent, b.UsagePercent, dir)
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(a.Category, b.Category)
}

func compareUsage(a, b *float64, dir Direction) int {
	switch {
	case a != nil && b != nil:
		return dir.apply(cmp.Compare(*a, *b))
	case a != nil:
		return -1
	case b != nil:
		return 1
	default:
		return 0
	}
}

// FilterAndSortBudgetCategories is shorthand for f.Apply(rows).
func FilterAndSortBudgetCategories(rows []BudgetCategoryData, f BudgetFilter) []BudgetCategoryData {
	return f.Apply(rows)
}
