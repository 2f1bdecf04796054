package filter

import (
	"testing"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/usage"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

func txID(t core.Transaction) string { return t.ID }

var categories = []string{"Food", "Transport", "Rent", "Fun", "Salary"}

func fakeTransactions(n int) []core.Transaction {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	out := make([]core.Transaction, n)
	for i := range out {
		typ := core.Expense
		if gofakeit.Bool() {
			typ = core.Income
		}
		out[i] = core.Transaction{
			ID:          gofakeit.UUID(),
			Type:        typ,
			Amount:      core.RoundMoney(gofakeit.Float64Range(0, 1000)),
			Category:    gofakeit.RandomString(categories),
			Description: gofakeit.Sentence(5),
			Date:        core.FormatDate(core.DateOf(gofakeit.DateRange(start, end))),
		}
	}
	return out
}

func TestTransactionFilterIsIdempotent(t *testing.T) {
	data := fakeTransactions(200)
	filters := []TransactionFilter{
		{},
		{Sort: SortOldest, Type: "expense"},
		{Sort: SortAmountDesc, Categories: []string{"Food", "Rent"}},
		{Sort: SortAmountAsc, MinAmount: f64(700), MaxAmount: f64(200)},
		{Query: "a", DateFrom: "2025-06-01", DateTo: "2026-02-28"},
	}
	for _, f := range filters {
		once := f.Apply(data)
		twice := f.Apply(once)
		assert.Equal(t, once, twice)
	}
}

func TestTransactionFilterDoesNotMutateInput(t *testing.T) {
	data := fakeTransactions(50)
	snapshot := append([]core.Transaction(nil), data...)

	TransactionFilter{Sort: SortAmountAsc}.Apply(data)

	assert.Equal(t, snapshot, data)
}

func TestLatestSortBreaksTiesByID(t *testing.T) {
	a := core.Transaction{ID: "b", Type: core.Expense, Date: "2026-01-05"}
	b := core.Transaction{ID: "a", Type: core.Expense, Date: "2026-01-05"}
	c := core.Transaction{ID: "c", Type: core.Expense, Date: "2026-01-06"}

	f := TransactionFilter{Sort: SortLatest}
	assert.Equal(t, []string{"c", "a", "b"}, ids(f.Apply([]core.Transaction{a, b, c}), txID))
	assert.Equal(t, []string{"c", "a", "b"}, ids(f.Apply([]core.Transaction{c, b, a}), txID))

	oldest := TransactionFilter{Sort: SortOldest}
	assert.Equal(t, []string{"a", "b", "c"}, ids(oldest.Apply([]core.Transaction{c, a, b}), txID))
}

func TestTransactionSortPutsInvalidDatesLast(t *testing.T) {
	records := []core.Transaction{
		{ID: "x", Date: "garbage"},
		{ID: "y", Date: "2026-01-01"},
		{ID: "z", Date: "2026-03-01"},
	}
	assert.Equal(t, []string{"z", "y", "x"}, ids(TransactionFilter{Sort: SortLatest}.Apply(records), txID))
	assert.Equal(t, []string{"y", "z", "x"}, ids(TransactionFilter{Sort: SortOldest}.Apply(records), txID))
}

func TestAmountRangeIsSwapped(t *testing.T) {
	records := []core.Transaction{
		{ID: "1", Amount: 300, Date: "2026-01-01"},
		{ID: "2", Amount: 50, Date: "2026-01-01"},
		{ID: "3", Amount: 600, Date: "2026-01-01"},
	}
	f := TransactionFilter{MinAmount: f64(500), MaxAmount: f64(100)}

	assert.Equal(t, []string{"1"}, ids(f.Apply(records), txID))
	assert.Equal(t, 500.0, *f.MinAmount)
	assert.Equal(t, 100.0, *f.MaxAmount)
}

func TestTransactionPredicates(t *testing.T) {
	records := []core.Transaction{
		{ID: "1", Type: core.Income, Category: "Salary", Description: "October pay", Amount: 3000, Date: "2026-10-01"},
		{ID: "2", Type: core.Expense, Category: "Food", Description: "Groceries", Amount: 80, Date: "2026-10-03"},
		{ID: "3", Type: core.Expense, Category: "Rent", Description: "Flat", Amount: 900, Date: "2026-09-30"},
		{ID: "4", Type: core.Expense, Category: "Food", Description: "Pizza night", Amount: 25, Date: "bad"},
	}

	tests := []struct {
		name string
		f    TransactionFilter
		want []string
	}{
		{"everything", TransactionFilter{Type: All}, []string{"2", "1", "3", "4"}},
		{"blank query", TransactionFilter{Query: "   "}, []string{"2", "1", "3", "4"}},
		{"query matches description case-insensitively", TransactionFilter{Query: "PIZZA"}, []string{"4"}},
		{"query matches category", TransactionFilter{Query: "foo"}, []string{"2", "4"}},
		{"type", TransactionFilter{Type: "income"}, []string{"1"}},
		{"categories", TransactionFilter{Categories: []string{"Rent", "Salary"}}, []string{"1", "3"}},
		{"inclusive date range", TransactionFilter{DateFrom: "2026-09-30", DateTo: "2026-10-01"}, []string{"1", "3"}},
		{"open upper bound", TransactionFilter{DateFrom: "2026-10-02"}, []string{"2"}},
		{"malformed bound is ignored", TransactionFilter{DateFrom: "2026/10/02"}, []string{"2", "1", "3", "4"}},
		{"min only", TransactionFilter{MinAmount: f64(900)}, []string{"1", "3"}},
		{"combined", TransactionFilter{Type: "expense", MaxAmount: f64(100), Sort: SortAmountAsc}, []string{"4", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.f.Apply(records), txID))
		})
	}
}

func budgetFixture() ([]core.Transaction, *core.MonthlyBudget) {
	txs := []core.Transaction{
		{ID: "1", Type: core.Expense, Category: "Food", Amount: 450, Date: "2026-01-10"},
		{ID: "2", Type: core.Expense, Category: "Transport", Amount: 240, Date: "2026-01-11"},
		{ID: "3", Type: core.Expense, Category: "Fun", Amount: 120, Date: "2026-01-12"},
		{ID: "4", Type: core.Expense, Category: "Rent", Amount: 1000, Date: "2026-01-01"},
		{ID: "5", Type: core.Income, Category: "Salary", Amount: 5000, Date: "2026-01-25"},
		{ID: "6", Type: core.Expense, Category: "Food", Amount: 999, Date: "2026-02-01"},
	}
	budget := &core.MonthlyBudget{
		Month: "2026-01",
		Categories: map[string]float64{
			"Food":      500,
			"Transport": 300,
			"Rent":      1000,
			"Books":     50,
		},
	}
	return txs, budget
}

func TestBuildBudgetCategoryData(t *testing.T) {
	txs, budget := budgetFixture()
	rows := BuildBudgetCategoryData("2026-01", txs, budget)

	names := ids(rows, func(r BudgetCategoryData) string { return r.Category })
	require.Equal(t, []string{"Books", "Food", "Fun", "Rent", "Transport"}, names)

	food := rows[1]
	assert.Equal(t, 450.0, food.Spent)
	assert.Equal(t, 50.0, food.Remaining)
	require.NotNil(t, food.UsagePercent)
	assert.Equal(t, 90.0, *food.UsagePercent)
	assert.Equal(t, usage.StateWarning, food.State)

	fun := rows[2]
	assert.Nil(t, fun.UsagePercent)
	assert.Equal(t, usage.StateUnset, fun.State)
	assert.Equal(t, -120.0, fun.Remaining)

	assert.Equal(t, usage.StateOver, rows[3].State)
	assert.Equal(t, usage.StateOK, rows[4].State)
	assert.Equal(t, 0.0, rows[0].Spent)

	assert.Empty(t, BuildBudgetCategoryData("2026-13", txs, budget))
	assert.Len(t, BuildBudgetCategoryData("2026-02", txs, nil), 1)
}

func TestBudgetFilter(t *testing.T) {
	txs, budget := budgetFixture()
	rows := BuildBudgetCategoryData("2026-01", txs, budget)
	name := func(r BudgetCategoryData) string { return r.Category }

	tests := []struct {
		name string
		f    BudgetFilter
		want []string
	}{
		{"default is usage desc with unset last", BudgetFilter{}, []string{"Rent", "Food", "Transport", "Books", "Fun"}},
		{"usage asc keeps unset last", BudgetFilter{Direction: Asc}, []string{"Books", "Transport", "Food", "Rent", "Fun"}},
		{"status", BudgetFilter{Status: string(usage.StateWarning)}, []string{"Food"}},
		{"query", BudgetFilter{Query: "TRANS"}, []string{"Transport"}},
		{"lower bound drops unset rows", BudgetFilter{MinUsage: f64(50)}, []string{"Rent", "Food", "Transport"}},
		{"upper bound only keeps unset rows", BudgetFilter{MaxUsage: f64(85)}, []string{"Transport", "Books", "Fun"}},
		{"bounds are clamped", BudgetFilter{MinUsage: f64(-20), MaxUsage: f64(250)}, []string{"Rent", "Food", "Transport", "Books"}},
		{"spent desc", BudgetFilter{SortKey: BudgetSortSpent}, []string{"Rent", "Food", "Transport", "Fun", "Books"}},
		{"remaining asc ties by name", BudgetFilter{SortKey: BudgetSortRemaining, Direction: Asc}, []string{"Fun", "Rent", "Books", "Food", "Transport"}},
		{"budget desc ties by name", BudgetFilter{SortKey: BudgetSortBudget}, []string{"Rent", "Food", "Transport", "Books", "Fun"}},
		{"name desc", BudgetFilter{SortKey: BudgetSortName, Direction: Desc}, []string{"Transport", "Rent", "Fun", "Food", "Books"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAndSortBudgetCategories(rows, tt.f)
			assert.Equal(t, tt.want, ids(got, name))
			assert.Equal(t, got, tt.f.Apply(got))
		})
	}
}

func TestSubscriptionFilter(t *testing.T) {
	asOf, _ := core.ParseDate("2026-03-10")
	subs := []core.Subscription{
		{ID: "a", ServiceName: "Netflix", Category: "Video", Currency: core.KRW, BillingCycle: core.Monthly,
			ParticipantCount: 1, ActualPrice: 17000, BillingStartDate: "2025-01-20"},
		{ID: "b", ServiceName: "iCloud", Category: "Storage", Currency: core.USD, BillingCycle: core.Monthly,
			ParticipantCount: 1, ActualPrice: 2.99, BillingStartDate: "2025-06-12", Memo: "family plan"},
		{ID: "c", ServiceName: "Domain", Category: "Web", Currency: core.USD, BillingCycle: core.Yearly,
			ParticipantCount: 1, ActualPrice: 12, BillingStartDate: "2024-04-01"},
		{ID: "d", ServiceName: "Old gym", Category: "Health", Currency: core.JPY, BillingCycle: core.Monthly,
			ParticipantCount: 1, ActualPrice: 8000, BillingStartDate: "2024-01-01", EndDate: "2025-12-31"},
	}
	subID := func(s core.Subscription) string { return s.ID }

	tests := []struct {
		name string
		f    SubscriptionFilter
		want []string
	}{
		{"default next payment asc", SubscriptionFilter{}, []string{"d", "b", "a", "c"}},
		{"active only", SubscriptionFilter{Status: StatusActive}, []string{"b", "a", "c"}},
		{"ended only", SubscriptionFilter{Status: StatusEnded}, []string{"d"}},
		{"currency", SubscriptionFilter{Currency: "USD"}, []string{"b", "c"}},
		{"cycle", SubscriptionFilter{Cycle: "yearly"}, []string{"c"}},
		{"query matches memo", SubscriptionFilter{Query: "FAMILY"}, []string{"b"}},
		{"monthly price desc", SubscriptionFilter{SortKey: SubscriptionSortMonthlyPrice, Direction: Desc}, []string{"a", "d", "b", "c"}},
	}
	for _, tt := range tests {
		tt.f.AsOf = asOf
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.f.Apply(subs), subID))
		})
	}

	byName := SubscriptionFilter{SortKey: SubscriptionSortName, AsOf: asOf}.Apply(subs)
	assert.Equal(t, []string{"Domain", "Netflix", "Old gym", "iCloud"},
		ids(byName, func(s core.Subscription) string { return s.ServiceName }))
}
