package google

import (
	"budgetbook/internal/analytics"
	"budgetbook/internal/billing"
)

var monthHeaders = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// annualReportRows lays out the annual payload as three blocks separated by
// a blank row: the monthly table with a Total row, then expense and income
// category totals.
func annualReportRows(p analytics.AnnualAnalysisPayload) [][]any {
	rows := [][]any{{"Month", "Income", "Expense", "Net Savings", "Budget"}}
	for _, m := range p.MonthlySummaries {
		label := m.MonthKey
		if m.Month >= 1 && m.Month <= 12 {
			label = monthHeaders[m.Month-1]
		}
		rows = append(rows, []any{label, m.Income, m.Expense, m.NetSavings, m.Budget})
	}
	rows = append(rows, []any{"Total", p.Summary.TotalIncome, p.Summary.TotalExpense, p.Summary.NetSavings, p.Summary.TotalBudget})

	rows = appendCategoryBlock(rows, "Expense Category", p.ExpenseTotals)
	rows = appendCategoryBlock(rows, "Income Category", p.IncomeTotals)
	return rows
}

func appendCategoryBlock(rows [][]any, title string, totals []analytics.CategoryAnnualTotal) [][]any {
	rows = append(rows, []any{}, []any{title, "Amount", "Share %"})
	for _, t := range totals {
		rows = append(rows, []any{t.Category, t.Amount, t.Percentage})
	}
	return rows
}

func subscriptionRows(views []billing.SubscriptionView) [][]any {
	rows := [][]any{{"Service", "Category", "Currency", "Cycle", "Per Person", "Monthly", "Yearly", "Next Date", "Reason", "Progress %", "Status"}}
	for _, v := range views {
		next := ""
		if v.Next.Date != nil {
			next = v.Next.Date.String()
		}
		status := "ended"
		if v.Active {
			status = "active"
		}
		s := v.Subscription
		rows = append(rows, []any{
			s.ServiceName,
			s.Category,
			string(s.Currency),
			string(s.BillingCycle),
			v.PerPersonActual,
			v.MonthlyEquivalent,
			v.YearlyEquivalent,
			next,
			string(v.Next.Reason),
			v.ProgressPercent,
			status,
		})
	}
	return rows
}
