// Package billing computes recurring subscription dates and prices.
//
// Cycle lengths are resolved through a small strategy registry: each billing
// cycle maps to a CycleResolver that turns the subscription's custom month
// count into a concrete cycle length. New cycles can be added with
// RegisterCycleResolver without touching the date math.
package billing

import (
	"errors"
	"fmt"
	"sync"

	"budgetbook/internal/core"
)

var ErrUnsupportedCycle = errors.New("unsupported billing cycle")

// CycleResolver returns the number of calendar months between two charges.
type CycleResolver interface {
	Months(customMonths int) int
}

// FixedCycle ignores the custom month count.
type FixedCycle int

func (f FixedCycle) Months(int) int { return int(f) }

// CustomCycle uses the subscription's own month count, never less than one.
type CustomCycle struct{}

func (CustomCycle) Months(customMonths int) int { return max(customMonths, 1) }

var (
	resolversMu    sync.RWMutex
	cycleResolvers = map[core.BillingCycle]CycleResolver{
		core.Monthly: FixedCycle(1),
		core.Yearly:  FixedCycle(12),
		core.Custom:  CustomCycle{},
	}
)

// GetCycleResolver returns the resolver registered for cycle.
func GetCycleResolver(cycle core.BillingCycle) (CycleResolver, error) {
	resolversMu.RLock()
	defer resolversMu.RUnlock()
	r, ok := cycleResolvers[cycle]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCycle, cycle)
	}
	return r, nil
}

// RegisterCycleResolver adds or replaces the resolver for cycle.
func RegisterCycleResolver(cycle core.BillingCycle, r CycleResolver) {
	resolversMu.Lock()
	defer resolversMu.Unlock()
	cycleResolvers[cycle] = r
}

// CycleMonths returns 1 for monthly, 12 for yearly and max(customMonths, 1)
// for custom cycles. Unknown cycles fall back to one month so date math always
// advances.
func CycleMonths(cycle core.BillingCycle, customMonths int) int {
	r, err := GetCycleResolver(cycle)
	if err != nil {
		return 1
	}
	return max(r.Months(customMonths), 1)
}

func subscriptionCycle(s core.Subscription) int {
	return CycleMonths(s.BillingCycle, s.CustomCycleMonths)
}

// chargeWindow walks charge dates forward from start, each one cycle after
// the previous, and returns the last charge on or before asOf together with
// the first charge strictly after it. A clamped day carries forward, so a
// 31st start becomes the 29th after a leap February and stays there. When
// start is after asOf both results are start.
func chargeWindow(start, asOf core.Date, cycle int) (last, next core.Date) {
	if start.Compare(asOf) > 0 {
		return start, start
	}
	d := start
	for {
		// Below the 29th no step clamps, so whole cycles can be skipped.
		if d.Day() <= 28 {
			elapsed := (asOf.Year()-d.Year())*12 + asOf.Month() - d.Month()
			if skip := elapsed/cycle - 1; skip > 0 {
				d = core.AddMonths(d, skip*cycle)
			}
		}
		n := core.AddMonths(d, cycle)
		if n.Compare(asOf) > 0 {
			return d, n
		}
		d = n
	}
}

// NextPaymentDate returns the first charge date strictly after asOf. ok is
// false when the billing start date is invalid.
func NextPaymentDate(s core.Subscription, asOf core.Date) (core.Date, bool) {
	start, ok := core.ParseDate(s.BillingStartDate)
	if !ok {
		return core.Date{}, false
	}
	_, next := chargeWindow(start, asOf, subscriptionCycle(s))
	return next, true
}

// CycleProgressPercent reports how far asOf is through the billing window
// that contains it, as an integer in [0, 100].
func CycleProgressPercent(s core.Subscription, asOf core.Date) int {
	start, ok := core.ParseDate(s.BillingStartDate)
	if !ok {
		return 0
	}
	cycle := subscriptionCycle(s)
	periodStart, _ := chargeWindow(start, asOf, cycle)
	periodEnd := core.AddMonths(periodStart, cycle)

	total := core.DaysBetween(periodStart, periodEnd)
	if total <= 0 {
		return 0
	}
	elapsed := core.DaysBetween(periodStart, asOf)
	return clampPercent(roundInt(float64(elapsed) / float64(total) * 100))
}

func clampPercent(p int) int {
	return max(0, min(100, p))
}
