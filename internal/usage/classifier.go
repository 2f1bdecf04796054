// Package usage classifies how much of a budget has been spent and tracks
// which over-budget alerts have already been reported.
package usage

import (
	"budgetbook/internal/core"
)

// State is the bounded semantic state of a spent/budget ratio.
type State string

const (
	StateUnset   State = "unset"
	StateOK      State = "ok"
	StateWarning State = "warning"
	StateOver    State = "over"
)

const (
	// WarningThreshold is exclusive: exactly 80% is still ok.
	WarningThreshold = 80.0
	// OverThreshold is inclusive: exactly 100% is over.
	OverThreshold = 100.0
)

// UsagePercent returns spent/budget*100, or nil when the budget is unset
// (≤ 0) or either input is not finite. The result may exceed 100.
func UsagePercent(spent, budget float64) *float64 {
	if !core.IsFinite(spent) || !core.IsFinite(budget) || budget <= 0 {
		return nil
	}
	p := spent / budget * 100
	return &p
}

// Classify maps a usage percentage to its State.
func Classify(percent *float64) State {
	switch {
	case percent == nil:
		return StateUnset
	case *percent >= OverThreshold:
		return StateOver
	case *percent > WarningThreshold:
		return StateWarning
	default:
		return StateOK
	}
}

// ProgressWidth clamps the percentage to [0, 100] for a progress bar; 0 when
// unset.
func ProgressWidth(percent *float64) float64 {
	if percent == nil {
		return 0
	}
	return max(0, min(100, *percent))
}

// IsAlerting reports whether s deserves a user-facing alert.
func (s State) IsAlerting() bool {
	return s == StateWarning || s == StateOver
}
