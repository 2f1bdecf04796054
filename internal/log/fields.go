package log

import (
	"maps"
	"slices"
)

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldSubcomponent   = "subcomponent"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldYear           = "year"
	FieldMonth          = "month"
	FieldCategory       = "category"
	FieldUsageState     = "state"
	FieldUsagePercent   = "usage_percent"
	FieldSpent          = "spent"
	FieldBudget         = "budget"
	FieldSubscriptionID = "subscription_id"
	FieldService        = "service"
	FieldDate           = "date"
	FieldReason         = "reason"
	FieldDaysLeft       = "days_left"
	FieldEntity         = "entity"
	FieldKey            = "key"
	FieldSheetsRef      = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpReport   = "report"
	OpExport   = "export"
	OpAlert    = "alert"
	OpReminder = "reminder"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithBudgetCategory adds the month and category a budget row belongs to.
func (f LogFields) WithBudgetCategory(month, category string) LogFields {
	f[FieldMonth] = month
	f[FieldCategory] = category
	return f
}

// WithUsage adds classifier output for a budget row.
func (f LogFields) WithUsage(state string, percent, spent, budget float64) LogFields {
	f[FieldUsageState] = state
	f[FieldUsagePercent] = percent
	f[FieldSpent] = spent
	f[FieldBudget] = budget
	return f
}

// WithSubscription adds subscription identity fields.
func (f LogFields) WithSubscription(id, service string) LogFields {
	f[FieldSubscriptionID] = id
	f[FieldService] = service
	return f
}

// WithChange adds the entity and key of a repository change.
func (f LogFields) WithChange(entity, key string) LogFields {
	f[FieldEntity] = entity
	f[FieldKey] = key
	return f
}

// ToSlice converts LogFields to a key-sorted slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for _, k := range slices.Sorted(maps.Keys(f)) {
		slice = append(slice, k, f[k])
	}
	return slice
}
