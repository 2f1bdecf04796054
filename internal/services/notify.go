package services

import (
	"context"

	"budgetbook/internal/billing"
	"budgetbook/internal/core"
	applog "budgetbook/internal/log"
	"budgetbook/internal/usage"
)

// Alert reports a budget category that crossed into warning or over.
type Alert struct {
	Month        string
	Category     string
	State        usage.State
	UsagePercent float64
	Spent        float64
	Budget       float64
}

// Reminder reports an upcoming charge or end date of a subscription.
type Reminder struct {
	SubscriptionID string
	ServiceName    string
	Date           core.Date
	Reason         billing.Reason
	DaysLeft       int
}

// Notifier delivers alerts and reminders to the user.
type Notifier interface {
	NotifyAlert(ctx context.Context, a Alert) error
	NotifyReminder(ctx context.Context, r Reminder) error
}

// LogNotifier writes notifications to the structured log. A nil Logger uses
// the logger carried by ctx.
type LogNotifier struct {
	Logger *applog.Logger
}

func (n LogNotifier) logger(ctx context.Context) *applog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return applog.FromContext(ctx)
}

func (n LogNotifier) NotifyAlert(ctx context.Context, a Alert) error {
	fields := applog.NewFields().
		WithOperation(applog.OpAlert).
		WithBudgetCategory(a.Month, a.Category).
		WithUsage(string(a.State), a.UsagePercent, a.Spent, a.Budget)
	n.logger(ctx).WarnContext(ctx, "Budget usage alert", fields.ToSlice()...)
	return nil
}

func (n LogNotifier) NotifyReminder(ctx context.Context, r Reminder) error {
	fields := applog.NewFields().
		WithOperation(applog.OpReminder).
		WithSubscription(r.SubscriptionID, r.ServiceName)
	fields[applog.FieldDate] = r.Date.String()
	fields[applog.FieldReason] = string(r.Reason)
	fields[applog.FieldDaysLeft] = r.DaysLeft
	n.logger(ctx).InfoContext(ctx, "Subscription reminder", fields.ToSlice()...)
	return nil
}
