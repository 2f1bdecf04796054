package core

import (
	"errors"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	KRW Currency = "KRW"
	USD Currency = "USD"
	JPY Currency = "JPY"
)

const (
	Monthly BillingCycle = "monthly"
	Yearly  BillingCycle = "yearly"
	Custom  BillingCycle = "custom"
)

type (
	TransactionType string

	Currency string

	BillingCycle string

	// Transaction is a single income or expense record. Records are never
	// mutated in place; an edit replaces the whole value.
	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type" validate:"required,oneof=income expense"`
		Amount      float64         `json:"amount" validate:"gte=0"`
		Category    string          `json:"category" validate:"required,max=50"`
		Description string          `json:"description" validate:"max=200"`
		Date        string          `json:"date" validate:"required,calendar_date"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	// MonthlyBudget holds the per-category budget for one month. There is at
	// most one budget per Month key.
	MonthlyBudget struct {
		Month      string             `json:"month" validate:"required,month_key"`
		Categories map[string]float64 `json:"categories" validate:"dive,keys,required,endkeys,gte=0"`
		UpdatedAt  time.Time          `json:"updatedAt"`
	}

	Subscription struct {
		ID               string       `json:"id"`
		ServiceName      string       `json:"serviceName" validate:"required,max=100"`
		Category         string       `json:"category" validate:"max=50"`
		DefaultPrice     float64      `json:"defaultPrice" validate:"gte=0"`
		ActualPrice      float64      `json:"actualPrice" validate:"gte=0"`
		ParticipantCount int          `json:"participantCount" validate:"gte=1"`
		Currency         Currency     `json:"currency" validate:"required,oneof=KRW USD JPY"`
		BillingCycle     BillingCycle `json:"billingCycle" validate:"required,oneof=monthly yearly custom"`
		// CustomCycleMonths is only read when BillingCycle is Custom.
		CustomCycleMonths int       `json:"customCycleMonths,omitempty" validate:"required_if=BillingCycle custom,gte=0"`
		BillingStartDate  string    `json:"billingStartDate" validate:"required,calendar_date"`
		EndDate           string    `json:"endDate,omitempty" validate:"omitempty,calendar_date"`
		AccountName       string    `json:"accountName" validate:"max=100"`
		Memo              string    `json:"memo" validate:"max=500"`
		CreatedAt         time.Time `json:"createdAt"`
		UpdatedAt         time.Time `json:"updatedAt"`
	}
)

var (
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrInvalidBudget       = errors.New("invalid monthly budget")
	ErrInvalidSubscription = errors.New("invalid subscription")
	ErrEndBeforeStart      = errors.New("end date must not be before billing start date")
)

// Currencies lists every supported currency in display order.
func Currencies() []Currency {
	return []Currency{KRW, USD, JPY}
}

func (c Currency) IsValid() bool {
	switch c {
	case KRW, USD, JPY:
		return true
	default:
		return false
	}
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// Total returns the sum of every category amount in the budget.
func (b MonthlyBudget) Total() float64 {
	var total Total
	for _, amount := range b.Categories {
		total.Add(amount)
	}
	return total.Float64()
}

// HasEndDate reports whether the subscription carries a valid end date.
func (s Subscription) HasEndDate() bool {
	_, ok := ParseDate(s.EndDate)
	return ok
}
