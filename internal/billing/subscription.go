package billing

import (
	"math"

	"budgetbook/internal/core"
)

// Reason explains which date DisplayedNextPaymentDate picked.
type Reason string

const (
	ReasonNextPayment Reason = "next_payment"
	ReasonEndDate     Reason = "end_date"
	ReasonNone        Reason = "none"
)

// DisplayedDate is the date shown to the user as the subscription's next event.
type DisplayedDate struct {
	Date   *core.Date `json:"date"`
	Reason Reason     `json:"reason"`
}

// PriceField selects which subscription price a calculation reads.
type PriceField int

const (
	// DefaultPrice is the list price.
	DefaultPrice PriceField = iota
	// ActualPrice is what is actually charged before splitting.
	ActualPrice
)

// CurrencyTotal is the per-person spend of every subscription in one currency.
type CurrencyTotal struct {
	Currency core.Currency `json:"currency"`
	Monthly  float64       `json:"monthly"`
	Yearly   float64       `json:"yearly"`
	Count    int           `json:"count"`
}

// DisplayedNextPaymentDate prefers the end date when the subscription stops
// before (or on) its next computed charge.
func DisplayedNextPaymentDate(s core.Subscription, asOf core.Date) DisplayedDate {
	next, hasNext := NextPaymentDate(s, asOf)
	end, hasEnd := core.ParseDate(s.EndDate)

	switch {
	case hasEnd && (!hasNext || next.Compare(end) >= 0):
		return DisplayedDate{Date: &end, Reason: ReasonEndDate}
	case hasNext:
		return DisplayedDate{Date: &next, Reason: ReasonNextPayment}
	default:
		return DisplayedDate{Reason: ReasonNone}
	}
}

// IsActive reports whether the subscription has not ended as of asOf.
func IsActive(s core.Subscription, asOf core.Date) bool {
	end, ok := core.ParseDate(s.EndDate)
	return !ok || end.Compare(asOf) >= 0
}

// PerPersonPrice splits the selected price across participants.
func PerPersonPrice(s core.Subscription, field PriceField) float64 {
	price := s.ActualPrice
	if field == DefaultPrice {
		price = s.DefaultPrice
	}
	return core.RoundMoney(price / float64(max(s.ParticipantCount, 1)))
}

// DiscountPercent is the whole-number saving of the actual per-person price
// against the list per-person price. Never negative.
func DiscountPercent(s core.Subscription) int {
	def := PerPersonPrice(s, DefaultPrice)
	act := PerPersonPrice(s, ActualPrice)
	if def <= 0 || act >= def {
		return 0
	}
	return roundInt((def - act) / def * 100)
}

func MonthlyEquivalent(s core.Subscription) float64 {
	return core.RoundMoney(PerPersonPrice(s, ActualPrice) / float64(subscriptionCycle(s)))
}

func YearlyEquivalent(s core.Subscription) float64 {
	return core.RoundMoney(MonthlyEquivalent(s) * 12)
}

// SummarizeByCurrency totals monthly and yearly equivalents per currency.
// Every supported currency is present even without subscriptions.
func SummarizeByCurrency(subs []core.Subscription) map[core.Currency]CurrencyTotal {
	monthly := make(map[core.Currency]*core.Total)
	yearly := make(map[core.Currency]*core.Total)
	counts := make(map[core.Currency]int)
	for _, c := range core.Currencies() {
		monthly[c], yearly[c] = &core.Total{}, &core.Total{}
	}

	for _, s := range subs {
		if _, ok := monthly[s.Currency]; !ok {
			monthly[s.Currency], yearly[s.Currency] = &core.Total{}, &core.Total{}
		}
		monthly[s.Currency].Add(MonthlyEquivalent(s))
		yearly[s.Currency].Add(YearlyEquivalent(s))
		counts[s.Currency]++
	}

	out := make(map[core.Currency]CurrencyTotal, len(monthly))
	for c := range monthly {
		out[c] = CurrencyTotal{
			Currency: c,
			Monthly:  core.RoundMoney(monthly[c].Float64()),
			Yearly:   core.RoundMoney(yearly[c].Float64()),
			Count:    counts[c],
		}
	}
	return out
}

// SubscriptionView bundles every derived value a listing needs.
type SubscriptionView struct {
	Subscription      core.Subscription `json:"subscription"`
	CycleMonths       int               `json:"cycleMonths"`
	Next              DisplayedDate     `json:"next"`
	ProgressPercent   int               `json:"progressPercent"`
	PerPersonDefault  float64           `json:"perPersonDefault"`
	PerPersonActual   float64           `json:"perPersonActual"`
	DiscountPercent   int               `json:"discountPercent"`
	MonthlyEquivalent float64           `json:"monthlyEquivalent"`
	YearlyEquivalent  float64           `json:"yearlyEquivalent"`
	Active            bool              `json:"active"`
}

func BuildView(s core.Subscription, asOf core.Date) SubscriptionView {
	return SubscriptionView{
		Subscription:      s,
		CycleMonths:       subscriptionCycle(s),
		Next:              DisplayedNextPaymentDate(s, asOf),
		ProgressPercent:   CycleProgressPercent(s, asOf),
		PerPersonDefault:  PerPersonPrice(s, DefaultPrice),
		PerPersonActual:   PerPersonPrice(s, ActualPrice),
		DiscountPercent:   DiscountPercent(s),
		MonthlyEquivalent: MonthlyEquivalent(s),
		YearlyEquivalent:  YearlyEquivalent(s),
		Active:            IsActive(s, asOf),
	}
}

func roundInt(x float64) int {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return int(math.Round(x))
}
