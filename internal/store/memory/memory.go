package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/store"

	"github.com/google/uuid"
)

// Store keeps every record in process memory. Lists return copies in
// insertion order; budgets are ordered by month.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	notifier store.Notifier

	txs     []core.Transaction
	budgets map[string]core.MonthlyBudget
	subs    []core.Subscription
}

var _ store.Repository = (*Store)(nil)

func New() *Store {
	return &Store{now: time.Now, budgets: make(map[string]core.MonthlyBudget)}
}

// WithClock overrides the timestamp source for CreatedAt/UpdatedAt.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Subscribe(l store.Listener) func() {
	return s.notifier.Subscribe(l)
}

func (s *Store) Close() error { return nil }

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.txs), nil
}

func (s *Store) UpsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if i := slices.IndexFunc(s.txs, func(x core.Transaction) bool { return x.ID == t.ID }); i >= 0 {
		t.CreatedAt = s.txs[i].CreatedAt
		s.txs[i] = t
	} else {
		t.CreatedAt = s.now().UTC()
		s.txs = append(s.txs, t)
	}
	s.mu.Unlock()

	s.notifier.Notify(ctx, store.Change{Entity: store.EntityTransaction, Kind: store.ChangeUpsert, Key: t.ID})
	return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.txs, func(x core.Transaction) bool { return x.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("transaction %q: %w", id, store.ErrNotFound)
	}
	s.txs = slices.Delete(s.txs, i, i+1)
	s.mu.Unlock()

	s.notifier.Notify(ctx, store.Change{Entity: store.EntityTransaction, Kind: store.ChangeDelete, Key: id})
	return nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.MonthlyBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	months := slices.Sorted(maps.Keys(s.budgets))
	out := make([]core.MonthlyBudget, 0, len(months))
	for _, m := range months {
		out = append(out, cloneBudget(s.budgets[m]))
	}
	return out, nil
}

func (s *Store) GetBudget(_ context.Context, month string) (core.MonthlyBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[month]
	if !ok {
		return core.MonthlyBudget{}, fmt.Errorf("budget %q: %w", month, store.ErrNotFound)
	}
	return cloneBudget(b), nil
}

func (s *Store) UpsertBudget(ctx context.Context, b core.MonthlyBudget) (core.MonthlyBudget, error) {
	if err := b.Validate(); err != nil {
		return core.MonthlyBudget{}, err
	}
	b = cloneBudget(b)

	s.mu.Lock()
	b.UpdatedAt = s.now().UTC()
	s.budgets[b.Month] = b
	s.mu.Unlock()

	s.notifier.Notify(ctx, store.Change{Entity: store.EntityBudget, Kind: store.ChangeUpsert, Key: b.Month})
	return cloneBudget(b), nil
}

func (s *Store) DeleteBudget(ctx context.Context, month string) error {
	s.mu.Lock()
	if _, ok := s.budgets[month]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("budget %q: %w", month, store.ErrNotFound)
	}
	delete(s.budgets, month)
	s.mu.Unlock()

	s.notifier.Notify(ctx, store.Change{Entity: store.EntityBudget, Kind: store.ChangeDelete, Key: month})
	return nil
}

func (s *Store) ListSubscriptions(_ context.Context) ([]core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.subs), nil
}

func (s *Store) UpsertSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	sub.ServiceName = strings.TrimSpace(sub.ServiceName)
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}

	s.mu.Lock()
	now := s.now().UTC()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.UpdatedAt = now
	if i := slices.IndexFunc(s.subs, func(x core.Subscription) bool { return x.ID == sub.ID }); i >= 0 {
		sub.CreatedAt = s.subs[i].CreatedAt
		s.subs[i] = sub
	} else {
		sub.CreatedAt = now
		s.subs = append(s.subs, sub)
	}
	s.mu.Unlock()

	s.notifier.Notify(ctx, store.Change{Entity: store.EntitySubscription, Kind: store.ChangeUpsert, Key: sub.ID})
	return sub, nil
}

func (s *Store) DeleteSubscription(ctx context.Context, id string) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.subs, func(x core.Subscription) bool { return x.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("subscription %q: %w", id, store.ErrNotFound)
	}
	s.subs = slices.Delete(s.subs, i, i+1)
	s.mu.Unlock()

	s.notifier.Notify(ctx, store.Change{Entity: store.EntitySubscription, Kind: store.ChangeDelete, Key: id})
	return nil
}

func cloneBudget(b core.MonthlyBudget) core.MonthlyBudget {
	b.Categories = maps.Clone(b.Categories)
	if b.Categories == nil {
		b.Categories = map[string]float64{}
	}
	return b
}
