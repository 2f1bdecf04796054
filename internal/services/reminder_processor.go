package services

import (
	"context"
	"fmt"
	"log/slog"

	"budgetbook/internal/billing"
	"budgetbook/internal/core"
	"budgetbook/internal/store"
	"budgetbook/internal/usage"
)

// ReminderProcessor notifies upcoming subscription charges and end dates
// that fall within a horizon. Each (subscription, date) pair is notified once.
type ReminderProcessor struct {
	repo        store.SubscriptionRepository
	seen        usage.AlertStore
	notifier    Notifier
	horizonDays int
}

func NewReminderProcessor(repo store.SubscriptionRepository, seen usage.AlertStore, notifier Notifier, horizonDays int) *ReminderProcessor {
	if seen == nil {
		seen = usage.NewMemoryAlertStore()
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ReminderProcessor{
		repo:        repo,
		seen:        seen,
		notifier:    notifier,
		horizonDays: max(horizonDays, 0),
	}
}

// ProcessDue returns the reminders raised by this call for active
// subscriptions whose displayed next date is within the horizon of asOf.
func (p *ReminderProcessor) ProcessDue(ctx context.Context, asOf core.Date) ([]Reminder, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("processor not properly initialized")
	}

	subs, err := p.repo.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	var reminders []Reminder
	for _, s := range subs {
		if !billing.IsActive(s, asOf) {
			continue
		}
		next := billing.DisplayedNextPaymentDate(s, asOf)
		if next.Date == nil {
			continue
		}
		days := core.DaysBetween(asOf, *next.Date)
		if days < 0 || days > p.horizonDays {
			continue
		}

		key := "reminder:" + s.ID + "@" + next.Date.String() + "#" + string(next.Reason)
		if p.seen.Seen(key) {
			continue
		}
		p.seen.MarkSeen(key)

		r := Reminder{
			SubscriptionID: s.ID,
			ServiceName:    s.ServiceName,
			Date:           *next.Date,
			Reason:         next.Reason,
			DaysLeft:       days,
		}
		if err := p.notifier.NotifyReminder(ctx, r); err != nil {
			slog.ErrorContext(ctx, "Failed to deliver subscription reminder",
				"subscription_id", s.ID,
				"error", err)
		}
		reminders = append(reminders, r)
	}

	slog.InfoContext(ctx, "Subscription reminder check complete",
		"checked", len(subs),
		"reminders", len(reminders),
		"as_of", asOf.String(),
		"horizon_days", p.horizonDays)

	return reminders, nil
}
