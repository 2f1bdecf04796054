package filter

import (
	"cmp"
	"slices"

	"budgetbook/internal/billing"
	"budgetbook/internal/core"
)

type SubscriptionSortKey string

const (
	SubscriptionSortNextPayment  SubscriptionSortKey = "next_payment"
	SubscriptionSortMonthlyPrice SubscriptionSortKey = "monthly_price"
	SubscriptionSortName         SubscriptionSortKey = "name"
)

const (
	StatusActive = "active"
	StatusEnded  = "ended"
)

// SubscriptionFilter selects and orders subscriptions as of a given day.
// Currency and Cycle accept "all" or an exact value.
type SubscriptionFilter struct {
	Query     string
	Status    string
	Currency  string
	Cycle     string
	SortKey   SubscriptionSortKey
	Direction Direction
	AsOf      core.Date
}

func (f SubscriptionFilter) Match(s core.Subscription) bool {
	status := StatusEnded
	if billing.IsActive(s, f.AsOf) {
		status = StatusActive
	}
	return matchesQuery(f.Query, s.ServiceName, s.Category, s.AccountName, s.Memo) &&
		matchesEnum(f.Status, status) &&
		matchesEnum(f.Currency, string(s.Currency)) &&
		matchesEnum(f.Cycle, string(s.BillingCycle))
}

// Apply returns the matching subscriptions. The default order is the
// displayed next date ascending; subscriptions with no date sort last.
func (f SubscriptionFilter) Apply(subs []core.Subscription) []core.Subscription {
	out := make([]core.Subscription, 0, len(subs))
	for _, s := range subs {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, f.compare)
	return out
}

func (f SubscriptionFilter) compare(a, b core.Subscription) int {
	dir := f.Direction
	if dir != Desc {
		dir = Asc
	}

	var c int
	switch f.SortKey {
	case SubscriptionSortMonthlyPrice:
		c = dir.apply(cmp.Compare(billing.MonthlyEquivalent(a), billing.MonthlyEquivalent(b)))
	case SubscriptionSortName:
		c = dir.apply(cmp.Compare(a.ServiceName, b.ServiceName))
	default:
		c = f.compareNext(a, b, dir)
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func (f SubscriptionFilter) compareNext(a, b core.Subscription, dir Direction) int {
	na := billing.DisplayedNextPaymentDate(a, f.AsOf).Date
	nb := billing.DisplayedNextPaymentDate(b, f.AsOf).Date
	switch {
	case na != nil && nb != nil:
		return dir.apply(na.Compare(*nb))
	case na != nil:
		return -1
	case nb != nil:
		return 1
	default:
		return 0
	}
}
