package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"budgetbook/internal/core"
	"budgetbook/internal/filter"
	"budgetbook/internal/schema"
	"budgetbook/internal/services"
	"budgetbook/internal/sheets"
	"budgetbook/internal/store"
)

var errUsage = errors.New("usage")

const usageText = `usage: budget <command> [flags]

reports:
  annual         annual analysis for -year
  month          monthly analysis for -month
  budget         budget category rows for -month
  transactions   filtered and sorted transactions
  subscriptions  subscription views and per-currency totals
  years          years that have data

records:
  add-transaction       record an income or expense
  set-budget            set a month's category budgets
  add-subscription      record a subscription
  import-subscriptions  import subscriptions from a JSON array (any schema version)
  delete                delete a record by -entity and -key

export:
  export         write the annual report and subscriptions to Google Sheets
`

// app runs one CLI command against a repository.
type app struct {
	repo    store.Repository
	reports *services.ReportService
	out     io.Writer
	errOut  io.Writer
	// newExporter is nil when no spreadsheet is configured.
	newExporter func(ctx context.Context) (sheets.ReportWriter, error)
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "annual":
		return a.annual(ctx, rest)
	case "month":
		return a.month(ctx, rest)
	case "budget":
		return a.budget(ctx, rest)
	case "transactions":
		return a.transactions(ctx, rest)
	case "subscriptions":
		return a.subscriptions(ctx, rest)
	case "years":
		years, err := a.reports.AvailableYears(ctx)
		if err != nil {
			return err
		}
		return a.print(years)
	case "add-transaction":
		return a.addTransaction(ctx, rest)
	case "set-budget":
		return a.setBudget(ctx, rest)
	case "add-subscription":
		return a.addSubscription(ctx, rest)
	case "import-subscriptions":
		return a.importSubscriptions(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "export":
		return a.export(ctx, rest)
	case "help", "-h", "--help":
		_, err := io.WriteString(a.out, usageText)
		return err
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) currentMonth() string {
	today := a.reports.Today()
	return core.MonthKey(today.Year(), today.Month())
}

func (a *app) annual(ctx context.Context, args []string) error {
	fs := a.flagSet("annual")
	year := fs.Int("year", a.reports.Today().Year(), "calendar year")
	if err := fs.Parse(args); err != nil {
		return err
	}
	payload, err := a.reports.AnnualReport(ctx, *year)
	if err != nil {
		return err
	}
	return a.print(payload)
}

func (a *app) month(ctx context.Context, args []string) error {
	fs := a.flagSet("month")
	month := fs.String("month", a.currentMonth(), "month key YYYY-MM")
	if err := fs.Parse(args); err != nil {
		return err
	}
	analysis, err := a.reports.MonthlyReport(ctx, *month)
	if err != nil {
		return err
	}
	return a.print(analysis)
}

func (a *app) budget(ctx context.Context, args []string) error {
	fs := a.flagSet("budget")
	month := fs.String("month", a.currentMonth(), "month key YYYY-MM")
	var f filter.BudgetFilter
	var minUsage, maxUsage optionalFloat
	fs.StringVar(&f.Query, "q", "", "category substring")
	fs.StringVar(&f.Status, "status", filter.All, "all, unset, ok, warning or over")
	fs.Var(&minUsage, "min-usage", "minimum usage percent")
	fs.Var(&maxUsage, "max-usage", "maximum usage percent")
	sortKey := fs.String("sort", string(filter.BudgetSortUsage), "usage, spent, remaining, budget or name")
	dir := fs.String("dir", string(filter.Desc), "asc or desc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f.MinUsage, f.MaxUsage = minUsage.v, maxUsage.v
	f.SortKey = filter.BudgetSortKey(*sortKey)
	f.Direction = filter.Direction(*dir)

	rows, err := a.reports.BudgetView(ctx, *month, f)
	if err != nil {
		return err
	}
	return a.print(rows)
}

func (a *app) transactions(ctx context.Context, args []string) error {
	fs := a.flagSet("transactions")
	var f filter.TransactionFilter
	var categories stringList
	var minAmount, maxAmount optionalFloat
	fs.StringVar(&f.Query, "q", "", "description or category substring")
	fs.StringVar(&f.Type, "type", filter.All, "all, income or expense")
	fs.Var(&categories, "category", "category to include (repeatable, comma separated)")
	fs.StringVar(&f.DateFrom, "from", "", "earliest date YYYY-MM-DD")
	fs.StringVar(&f.DateTo, "to", "", "latest date YYYY-MM-DD")
	fs.Var(&minAmount, "min", "minimum amount")
	fs.Var(&maxAmount, "max", "maximum amount")
	sortKey := fs.String("sort", string(filter.SortLatest), "latest, oldest, amount_desc or amount_asc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f.Categories = categories
	f.MinAmount, f.MaxAmount = minAmount.v, maxAmount.v
	f.Sort = filter.TransactionSort(*sortKey)

	txs, err := a.reports.Transactions(ctx, f)
	if err != nil {
		return err
	}
	return a.print(txs)
}

func (a *app) subscriptions(ctx context.Context, args []string) error {
	fs := a.flagSet("subscriptions")
	var f filter.SubscriptionFilter
	fs.StringVar(&f.Query, "q", "", "service, category, account or memo substring")
	fs.StringVar(&f.Status, "status", filter.All, "all, active or ended")
	fs.StringVar(&f.Currency, "currency", filter.All, "all, KRW, USD or JPY")
	fs.StringVar(&f.Cycle, "cycle", filter.All, "all, monthly, yearly or custom")
	sortKey := fs.String("sort", string(filter.SubscriptionSortNextPayment), "next_payment, monthly_price or name")
	dir := fs.String("dir", string(filter.Asc), "asc or desc")
	asOf := fs.String("as-of", "", "evaluation date YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f.SortKey = filter.SubscriptionSortKey(*sortKey)
	f.Direction = filter.Direction(*dir)
	if *asOf != "" {
		d, ok := core.ParseDate(*asOf)
		if !ok {
			return fmt.Errorf("%w: invalid -as-of %q", errUsage, *asOf)
		}
		f.AsOf = d
	}

	report, err := a.reports.Subscriptions(ctx, f)
	if err != nil {
		return err
	}
	return a.print(report)
}

func (a *app) addTransaction(ctx context.Context, args []string) error {
	fs := a.flagSet("add-transaction")
	var t core.Transaction
	typ := fs.String("type", string(core.Expense), "income or expense")
	fs.Float64Var(&t.Amount, "amount", 0, "amount")
	fs.StringVar(&t.Category, "category", "", "category")
	fs.StringVar(&t.Description, "description", "", "description")
	fs.StringVar(&t.Date, "date", a.reports.Today().String(), "date YYYY-MM-DD")
	fs.StringVar(&t.ID, "id", "", "id of a transaction to replace")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t.Type = core.TransactionType(*typ)

	saved, err := a.repo.UpsertTransaction(ctx, t)
	if err != nil {
		return err
	}
	return a.print(saved)
}

func (a *app) setBudget(ctx context.Context, args []string) error {
	fs := a.flagSet("set-budget")
	month := fs.String("month", a.currentMonth(), "month key YYYY-MM")
	var entries stringList
	fs.Var(&entries, "category", "category=amount (repeatable, comma separated)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b := core.MonthlyBudget{Month: *month, Categories: make(map[string]float64, len(entries))}
	for _, e := range entries {
		name, amount, ok := strings.Cut(e, "=")
		if !ok {
			return fmt.Errorf("%w: budget entry %q is not category=amount", errUsage, e)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
		if err != nil {
			return fmt.Errorf("%w: budget amount for %q: %v", errUsage, name, err)
		}
		b.Categories[strings.TrimSpace(name)] = v
	}

	saved, err := a.repo.UpsertBudget(ctx, b)
	if err != nil {
		return err
	}
	return a.print(saved)
}

func (a *app) addSubscription(ctx context.Context, args []string) error {
	fs := a.flagSet("add-subscription")
	var s core.Subscription
	var defaultPrice optionalFloat
	fs.StringVar(&s.ID, "id", "", "id of a subscription to replace")
	fs.StringVar(&s.ServiceName, "name", "", "service name")
	fs.StringVar(&s.Category, "category", "", "category")
	fs.Float64Var(&s.ActualPrice, "price", 0, "price actually paid per cycle")
	fs.Var(&defaultPrice, "default-price", "list price per cycle (default -price)")
	fs.IntVar(&s.ParticipantCount, "members", 1, "people sharing the subscription")
	currency := fs.String("currency", string(core.KRW), "KRW, USD or JPY")
	cycle := fs.String("cycle", string(core.Monthly), "monthly, yearly or custom")
	fs.IntVar(&s.CustomCycleMonths, "months", 0, "cycle length in months for custom cycles")
	fs.StringVar(&s.BillingStartDate, "start", a.reports.Today().String(), "billing start date YYYY-MM-DD")
	fs.StringVar(&s.EndDate, "end", "", "end date YYYY-MM-DD")
	fs.StringVar(&s.AccountName, "account", "", "payment account")
	fs.StringVar(&s.Memo, "memo", "", "memo")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s.Currency = core.Currency(*currency)
	s.BillingCycle = core.BillingCycle(*cycle)
	s.DefaultPrice = s.ActualPrice
	if defaultPrice.v != nil {
		s.DefaultPrice = *defaultPrice.v
	}

	saved, err := a.repo.UpsertSubscription(ctx, s)
	if err != nil {
		return err
	}
	return a.print(saved)
}

// importResult summarises an import run.
type importResult struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped,omitempty"`
}

func (a *app) importSubscriptions(ctx context.Context, args []string) error {
	fs := a.flagSet("import-subscriptions")
	file := fs.String("file", "", "path to a JSON array of subscription records")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("%w: -file is required", errUsage)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%w: import file must hold a JSON array: %v", schema.ErrMalformed, err)
	}

	var result importResult
	for i, raw := range records {
		sub, err := schema.DecodeSubscription(raw)
		if err == nil {
			_, err = a.repo.UpsertSubscription(ctx, sub)
		}
		if err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("record %d: %v", i, err))
			continue
		}
		result.Imported++
	}
	return a.print(result)
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	entity := fs.String("entity", "", "transaction, budget or subscription")
	key := fs.String("key", "", "id, or month key for budgets")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	switch store.Entity(*entity) {
	case store.EntityTransaction:
		err = a.repo.DeleteTransaction(ctx, *key)
	case store.EntityBudget:
		err = a.repo.DeleteBudget(ctx, *key)
	case store.EntitySubscription:
		err = a.repo.DeleteSubscription(ctx, *key)
	default:
		return fmt.Errorf("%w: unknown entity %q", errUsage, *entity)
	}
	if err != nil {
		return err
	}
	return a.print(store.Change{Entity: store.Entity(*entity), Kind: store.ChangeDelete, Key: *key})
}

type exportResult struct {
	AnnualRange       string `json:"annualRange"`
	SubscriptionRange string `json:"subscriptionRange"`
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := a.flagSet("export")
	year := fs.Int("year", a.reports.Today().Year(), "calendar year")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.newExporter == nil {
		return errors.New("export requires GOOGLE_SPREADSHEET_ID")
	}

	writer, err := a.newExporter(ctx)
	if err != nil {
		return fmt.Errorf("sheets client: %w", err)
	}

	payload, err := a.reports.AnnualReport(ctx, *year)
	if err != nil {
		return err
	}
	subs, err := a.reports.Subscriptions(ctx, filter.SubscriptionFilter{})
	if err != nil {
		return err
	}

	var res exportResult
	if res.AnnualRange, err = writer.WriteAnnualReport(ctx, payload); err != nil {
		return err
	}
	if res.SubscriptionRange, err = writer.WriteSubscriptions(ctx, subs.Views); err != nil {
		return err
	}
	return a.print(res)
}
