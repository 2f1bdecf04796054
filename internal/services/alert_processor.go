package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetbook/internal/core"
	"budgetbook/internal/filter"
	"budgetbook/internal/store"
	"budgetbook/internal/usage"
)

type alertRepository interface {
	store.TransactionRepository
	GetBudget(ctx context.Context, month string) (core.MonthlyBudget, error)
}

// BudgetAlertProcessor classifies a month's budget categories and notifies
// each warning or over state once.
type BudgetAlertProcessor struct {
	repo     alertRepository
	tracker  *usage.Tracker
	notifier Notifier
}

func NewBudgetAlertProcessor(repo alertRepository, tracker *usage.Tracker, notifier Notifier) *BudgetAlertProcessor {
	if tracker == nil {
		tracker = usage.NewTracker(nil)
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &BudgetAlertProcessor{repo: repo, tracker: tracker, notifier: notifier}
}

// CheckMonth returns the alerts raised for month by this call. Categories
// already reported in the same state are skipped.
func (p *BudgetAlertProcessor) CheckMonth(ctx context.Context, month string) ([]Alert, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("processor not properly initialized")
	}

	budget, err := p.repo.GetBudget(ctx, month)
	if errors.Is(err, store.ErrNotFound) {
		slog.DebugContext(ctx, "No budget for month, skipping alert check", "month", month)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget %s: %w", month, err)
	}

	txs, err := p.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	var alerts []Alert
	for _, row := range filter.BuildBudgetCategoryData(month, txs, &budget) {
		if !p.tracker.Observe(usage.BudgetSubject(month, row.Category), row.State) {
			continue
		}
		a := Alert{
			Month:        month,
			Category:     row.Category,
			State:        row.State,
			UsagePercent: *row.UsagePercent,
			Spent:        row.Spent,
			Budget:       row.Budget,
		}
		if err := p.notifier.NotifyAlert(ctx, a); err != nil {
			slog.ErrorContext(ctx, "Failed to deliver budget alert",
				"month", month,
				"category", row.Category,
				"error", err)
		}
		alerts = append(alerts, a)
	}

	slog.InfoContext(ctx, "Budget alert check complete", "month", month, "alerts", len(alerts))
	return alerts, nil
}

// monthOfTransaction resolves the month a transaction change affects.
// Deleted transactions are gone from the repository, so fallback is used.
func (p *BudgetAlertProcessor) monthOfTransaction(ctx context.Context, id, fallback string) (string, error) {
	txs, err := p.repo.ListTransactions(ctx)
	if err != nil {
		return "", fmt.Errorf("list transactions: %w", err)
	}
	for _, t := range txs {
		if t.ID != id {
			continue
		}
		if d, ok := core.ParseDate(t.Date); ok {
			return core.MonthKey(d.Year(), d.Month()), nil
		}
	}
	return fallback, nil
}
