// Package services orchestrates repositories and the pure calculation
// packages into the reports and background processors the commands run.
package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"budgetbook/internal/analytics"
	"budgetbook/internal/billing"
	"budgetbook/internal/core"
	"budgetbook/internal/filter"
	"budgetbook/internal/store"

	"golang.org/x/sync/errgroup"
)

// ReportService builds read-only views from fresh repository data on every
// call. Nothing is cached between calls.
type ReportService struct {
	repo store.Repository
	now  func() time.Time
}

func NewReportService(repo store.Repository) *ReportService {
	return &ReportService{repo: repo, now: time.Now}
}

// WithClock overrides the time source used for as-of dates.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// Today is the calendar day reports are evaluated at.
func (s *ReportService) Today() core.Date {
	return core.DateOf(s.now())
}

type snapshot struct {
	transactions  []core.Transaction
	budgets       []core.MonthlyBudget
	subscriptions []core.Subscription
}

// load fetches every collection concurrently.
func (s *ReportService) load(ctx context.Context) (snapshot, error) {
	if s.repo == nil {
		return snapshot{}, fmt.Errorf("report service not properly initialized")
	}

	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := s.repo.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		snap.transactions = txs
		return nil
	})
	g.Go(func() error {
		budgets, err := s.repo.ListBudgets(gctx)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		snap.budgets = budgets
		return nil
	})
	g.Go(func() error {
		subs, err := s.repo.ListSubscriptions(gctx)
		if err != nil {
			return fmt.Errorf("list subscriptions: %w", err)
		}
		snap.subscriptions = subs
		return nil
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}

	slog.DebugContext(ctx, "Report data loaded",
		"transactions", len(snap.transactions),
		"budgets", len(snap.budgets),
		"subscriptions", len(snap.subscriptions))
	return snap, nil
}

func (s *ReportService) AnnualReport(ctx context.Context, year int) (analytics.AnnualAnalysisPayload, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return analytics.AnnualAnalysisPayload{}, err
	}
	return analytics.BuildAnnualAnalysisPayload(year, snap.transactions, snap.budgets), nil
}

func (s *ReportService) MonthlyReport(ctx context.Context, month string) (analytics.MonthlyAnalysis, error) {
	txs, budget, err := s.monthData(ctx, month)
	if err != nil {
		return analytics.MonthlyAnalysis{}, err
	}
	return analytics.BuildMonthlyAnalysis(month, txs, budget), nil
}

// BudgetView returns the month's category rows after applying f.
func (s *ReportService) BudgetView(ctx context.Context, month string, f filter.BudgetFilter) ([]filter.BudgetCategoryData, error) {
	txs, budget, err := s.monthData(ctx, month)
	if err != nil {
		return nil, err
	}
	return f.Apply(filter.BuildBudgetCategoryData(month, txs, budget)), nil
}

// monthData loads transactions and the month's budget, which may be nil.
func (s *ReportService) monthData(ctx context.Context, month string) ([]core.Transaction, *core.MonthlyBudget, error) {
	if s.repo == nil {
		return nil, nil, fmt.Errorf("report service not properly initialized")
	}
	if _, _, ok := core.ParseMonth(month); !ok {
		return nil, nil, fmt.Errorf("invalid month %q: %w", month, core.ErrInvalidBudget)
	}

	var (
		txs    []core.Transaction
		budget *core.MonthlyBudget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.repo.ListTransactions(gctx)
		return err
	})
	g.Go(func() error {
		b, err := s.repo.GetBudget(gctx, month)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil
		case err != nil:
			return err
		}
		budget = &b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load month %s: %w", month, err)
	}
	return txs, budget, nil
}

func (s *ReportService) Transactions(ctx context.Context, f filter.TransactionFilter) ([]core.Transaction, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("report service not properly initialized")
	}
	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return f.Apply(txs), nil
}

// SubscriptionReport lists subscription views and per-currency totals of the
// listed subscriptions that are still active.
type SubscriptionReport struct {
	AsOf   core.Date                               `json:"asOf"`
	Views  []billing.SubscriptionView              `json:"views"`
	Totals map[core.Currency]billing.CurrencyTotal `json:"totals"`
}

// Subscriptions applies f as of today unless f.AsOf is set.
func (s *ReportService) Subscriptions(ctx context.Context, f filter.SubscriptionFilter) (SubscriptionReport, error) {
	if s.repo == nil {
		return SubscriptionReport{}, fmt.Errorf("report service not properly initialized")
	}
	subs, err := s.repo.ListSubscriptions(ctx)
	if err != nil {
		return SubscriptionReport{}, fmt.Errorf("list subscriptions: %w", err)
	}
	if f.AsOf.IsZero() {
		f.AsOf = s.Today()
	}

	listed := f.Apply(subs)
	views := make([]billing.SubscriptionView, 0, len(listed))
	active := make([]core.Subscription, 0, len(listed))
	for _, sub := range listed {
		v := billing.BuildView(sub, f.AsOf)
		views = append(views, v)
		if v.Active {
			active = append(active, sub)
		}
	}

	return SubscriptionReport{
		AsOf:   f.AsOf,
		Views:  views,
		Totals: billing.SummarizeByCurrency(active),
	}, nil
}

// AvailableYears lists years with data, newest first, always including the
// current year.
func (s *ReportService) AvailableYears(ctx context.Context) ([]int, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	years := analytics.AvailableYears(snap.transactions, snap.budgets)
	if current := s.Today().Year(); !slices.Contains(years, current) {
		years = append(years, current)
		slices.SortFunc(years, func(a, b int) int { return cmp.Compare(b, a) })
	}
	return years, nil
}

func (s *ReportService) Close() error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("close report service: %w", err)
	}
	return nil
}
