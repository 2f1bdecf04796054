package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"budgetbook/internal/amqp"
	"budgetbook/internal/core"
	"budgetbook/internal/store"
)

// ChangeSource delivers repository change messages until ctx is done.
type ChangeSource interface {
	ConsumeChanges(ctx context.Context, handler func(context.Context, *amqp.ChangeMessage) error) error
}

// ChangeWorker reacts to repository changes by re-running the budget alert
// and subscription reminder checks that the change could affect.
type ChangeWorker struct {
	source    ChangeSource
	alerts    *BudgetAlertProcessor
	reminders *ReminderProcessor
	now       func() time.Time

	// Lifecycle management
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

func NewChangeWorker(source ChangeSource, alerts *BudgetAlertProcessor, reminders *ReminderProcessor) *ChangeWorker {
	return &ChangeWorker{
		source:    source,
		alerts:    alerts,
		reminders: reminders,
		now:       time.Now,
	}
}

func (w *ChangeWorker) today() core.Date {
	return core.DateOf(w.now())
}

// Start runs an initial check for the current month and then consumes
// changes in the background. Returns an error if already running.
func (w *ChangeWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("change worker is already running")
	}
	if w.source == nil {
		w.mu.Unlock()
		return fmt.Errorf("change worker has no change source")
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.running = true
	w.cancel = cancel
	done := make(chan struct{})
	w.doneCh = done
	w.mu.Unlock()

	w.Scan(runCtx)

	go w.run(runCtx, done)

	slog.InfoContext(ctx, "Change worker started")
	return nil
}

func (w *ChangeWorker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	err := w.source.ConsumeChanges(ctx, func(ctx context.Context, msg *amqp.ChangeMessage) error {
		return w.Handle(ctx, msg.Change())
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "Change consumption stopped", "error", err)
	}
}

// Stop gracefully stops the worker and waits for completion.
func (w *ChangeWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel, done := w.cancel, w.doneCh
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	cancel()

	select {
	case <-done:
		slog.InfoContext(ctx, "Change worker stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Change worker stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the worker is currently running
func (w *ChangeWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Scan checks the current month's budget and today's reminders.
func (w *ChangeWorker) Scan(ctx context.Context) {
	today := w.today()
	if w.alerts != nil {
		if _, err := w.alerts.CheckMonth(ctx, core.MonthKey(today.Year(), today.Month())); err != nil {
			slog.ErrorContext(ctx, "Startup budget alert check failed", "error", err)
		}
	}
	if w.reminders != nil {
		if _, err := w.reminders.ProcessDue(ctx, today); err != nil {
			slog.ErrorContext(ctx, "Startup reminder check failed", "error", err)
		}
	}
}

// Handle processes one change. Returned errors cause the message to be
// redelivered.
func (w *ChangeWorker) Handle(ctx context.Context, c store.Change) error {
	today := w.today()
	current := core.MonthKey(today.Year(), today.Month())

	switch c.Entity {
	case store.EntityBudget:
		if w.alerts == nil {
			return nil
		}
		_, err := w.alerts.CheckMonth(ctx, c.Key)
		return err
	case store.EntityTransaction:
		if w.alerts == nil {
			return nil
		}
		month, err := w.alerts.monthOfTransaction(ctx, c.Key, current)
		if err != nil {
			return err
		}
		_, err = w.alerts.CheckMonth(ctx, month)
		return err
	case store.EntitySubscription:
		if w.reminders == nil {
			return nil
		}
		_, err := w.reminders.ProcessDue(ctx, today)
		return err
	default:
		slog.WarnContext(ctx, "Ignoring change for unknown entity", "entity", c.Entity, "key", c.Key)
		return nil
	}
}
