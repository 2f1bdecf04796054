package store

import (
	"context"

	"budgetbook/internal/core"
)

// Ports implemented by the memory and sqlite backends.
type (
	TransactionRepository interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		// UpsertTransaction assigns an id when t.ID is empty and returns the
		// stored record.
		UpsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	BudgetRepository interface {
		ListBudgets(ctx context.Context) ([]core.MonthlyBudget, error)
		GetBudget(ctx context.Context, month string) (core.MonthlyBudget, error)
		UpsertBudget(ctx context.Context, b core.MonthlyBudget) (core.MonthlyBudget, error)
		DeleteBudget(ctx context.Context, month string) error
	}

	SubscriptionRepository interface {
		ListSubscriptions(ctx context.Context) ([]core.Subscription, error)
		UpsertSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
		DeleteSubscription(ctx context.Context, id string) error
	}

	// Repository is the full persistence port.
	Repository interface {
		TransactionRepository
		BudgetRepository
		SubscriptionRepository
		Subscribe(l Listener) (unsubscribe func())
		Close() error
	}
)
