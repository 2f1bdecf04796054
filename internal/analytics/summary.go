package analytics

import (
	"cmp"
	"slices"

	"budgetbook/internal/core"
)

// MonthlySummary is one month's row of the annual view.
type MonthlySummary struct {
	Month      int     `json:"month"` // 1-12
	MonthKey   string  `json:"monthKey"`
	Income     float64 `json:"income"`
	Expense    float64 `json:"expense"`
	NetSavings float64 `json:"netSavings"`
	Budget     float64 `json:"budget"`
}

// AnnualSummary holds the year's headline totals.
type AnnualSummary struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	NetSavings   float64 `json:"netSavings"`
	TotalBudget  float64 `json:"totalBudget"`
}

// AnnualAnalysisPayload is everything the annual analysis view renders.
type AnnualAnalysisPayload struct {
	Year             int                   `json:"year"`
	Summary          AnnualSummary         `json:"summary"`
	MonthlySummaries []MonthlySummary      `json:"monthlySummaries"`
	ExpenseTotals    []CategoryAnnualTotal `json:"expenseTotals"`
	IncomeTotals     []CategoryAnnualTotal `json:"incomeTotals"`
}

// MonthlyAnalysis summarises a single month.
type MonthlyAnalysis struct {
	Month       string          `json:"month"`
	Income      float64         `json:"income"`
	Expense     float64         `json:"expense"`
	NetSavings  float64         `json:"netSavings"`
	Budget      float64         `json:"budget"`
	TopExpenses []CategoryTotal `json:"topExpenses"`
}

// topExpenseCount is how many categories the monthly view ranks.
const topExpenseCount = 5

// MonthlySummaries returns exactly twelve entries for year, one per month,
// whether or not the month has any data. Budget is the sum of the month's
// budget categories, 0 when no budget exists for it.
func MonthlySummaries(records []core.Transaction, budgets []core.MonthlyBudget, year int) []MonthlySummary {
	var income, expense [12]core.Total
	scope := core.YearScope(year)
	for _, r := range records {
		if !core.InScope(r.Date, scope) {
			continue
		}
		d, _ := core.ParseDate(r.Date)
		switch r.Type {
		case core.Income:
			income[d.Month()-1].Add(r.Amount)
		case core.Expense:
			expense[d.Month()-1].Add(r.Amount)
		}
	}

	budgetByMonth := budgetTotals(budgets)

	out := make([]MonthlySummary, 12)
	for i := range out {
		key := core.MonthKey(year, i+1)
		in, ex := income[i].Float64(), expense[i].Float64()
		out[i] = MonthlySummary{
			Month:      i + 1,
			MonthKey:   key,
			Income:     in,
			Expense:    ex,
			NetSavings: income[i].Decimal().Sub(expense[i].Decimal()).InexactFloat64(),
			Budget:     budgetByMonth[key],
		}
	}
	return out
}

// BuildAnnualAnalysisPayload assembles the annual analysis for year.
func BuildAnnualAnalysisPayload(year int, transactions []core.Transaction, budgets []core.MonthlyBudget) AnnualAnalysisPayload {
	months := MonthlySummaries(transactions, budgets, year)

	var income, expense, budget core.Total
	for _, m := range months {
		income.Add(m.Income)
		expense.Add(m.Expense)
		budget.Add(m.Budget)
	}

	return AnnualAnalysisPayload{
		Year: year,
		Summary: AnnualSummary{
			TotalIncome:  income.Float64(),
			TotalExpense: expense.Float64(),
			NetSavings:   income.Decimal().Sub(expense.Decimal()).InexactFloat64(),
			TotalBudget:  budget.Float64(),
		},
		MonthlySummaries: months,
		ExpenseTotals:    CategoryAnnualTotals(transactions, year, core.Expense),
		IncomeTotals:     CategoryAnnualTotals(transactions, year, core.Income),
	}
}

// BuildMonthlyAnalysis summarises month ("YYYY-MM"). budget may be nil when
// the month has none.
func BuildMonthlyAnalysis(month string, transactions []core.Transaction, budget *core.MonthlyBudget) MonthlyAnalysis {
	in := SumByType(transactions, core.Income, month)
	ex := SumByType(transactions, core.Expense, month)

	out := MonthlyAnalysis{
		Month:       month,
		Income:      in,
		Expense:     ex,
		NetSavings:  core.RoundMoney(in - ex),
		TopExpenses: TopN(transactions, month, core.Expense, topExpenseCount),
	}
	if budget != nil && budget.Month == month {
		out.Budget = budget.Total()
	}
	return out
}

// AvailableYears lists every year that has a dated transaction or a budget,
// newest first.
func AvailableYears(transactions []core.Transaction, budgets []core.MonthlyBudget) []int {
	seen := make(map[int]struct{})
	for _, t := range transactions {
		if d, ok := core.ParseDate(t.Date); ok {
			seen[d.Year()] = struct{}{}
		}
	}
	for _, b := range budgets {
		if y, _, ok := core.ParseMonth(b.Month); ok {
			seen[y] = struct{}{}
		}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	slices.SortFunc(years, func(a, b int) int { return cmp.Compare(b, a) })
	return years
}

// budgetTotals maps month keys to budget totals. A later budget for the same
// month replaces an earlier one, matching upsert-by-month storage.
func budgetTotals(budgets []core.MonthlyBudget) map[string]float64 {
	out := make(map[string]float64, len(budgets))
	for _, b := range budgets {
		if _, _, ok := core.ParseMonth(b.Month); !ok {
			continue
		}
		out[b.Month] = b.Total()
	}
	return out
}
