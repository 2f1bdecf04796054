// Package schema decodes stored subscription records of every known layout.
//
// Version 1 records predate cost sharing and multi-currency support; they
// carry a single price, a free-form cycle and legacy field names. Version 2
// is the current core.Subscription layout. Records without a version field
// are version 1.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"budgetbook/internal/core"
)

const (
	LegacyVersion  = 1
	CurrentVersion = 2
)

var (
	ErrMalformed          = errors.New("malformed subscription record")
	ErrUnsupportedVersion = errors.New("unsupported subscription record version")
)

// Record is either a CurrentShape or a LegacyShapeV1.
type Record interface {
	Version() int
	isRecord()
}

// CurrentShape is a version 2 record.
type CurrentShape struct {
	core.Subscription
}

func (CurrentShape) Version() int { return CurrentVersion }
func (CurrentShape) isRecord()    {}

// LegacyShapeV1 is a version 1 record.
type LegacyShapeV1 struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Members   int     `json:"members"`
	Currency  string  `json:"currency"`
	Cycle     string  `json:"cycle"`
	Months    int     `json:"months"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Account   string  `json:"account"`
	Memo      string  `json:"memo"`
}

func (LegacyShapeV1) Version() int { return LegacyVersion }
func (LegacyShapeV1) isRecord()    {}

type envelope struct {
	Version *int `json:"version"`
}

type currentEnvelope struct {
	Version int `json:"version"`
	core.Subscription
}

// Decode reads a stored record and reports which shape it has.
func Decode(data []byte) (Record, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	version := LegacyVersion
	if env.Version != nil {
		version = *env.Version
	}

	switch version {
	case LegacyVersion:
		var legacy LegacyShapeV1
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return legacy, nil
	case CurrentVersion:
		var cur currentEnvelope
		if err := json.Unmarshal(data, &cur); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return CurrentShape{Subscription: cur.Subscription}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
}

// Upgrade converts any record to the current subscription layout.
func Upgrade(r Record) core.Subscription {
	switch v := r.(type) {
	case CurrentShape:
		return v.Subscription
	case LegacyShapeV1:
		return upgradeV1(v)
	default:
		return core.Subscription{}
	}
}

func upgradeV1(v LegacyShapeV1) core.Subscription {
	cycle, custom := legacyCycle(v.Cycle, v.Months)
	currency := core.Currency(v.Currency)
	if !currency.IsValid() {
		currency = core.KRW
	}
	return core.Subscription{
		ID:                v.ID,
		ServiceName:       v.Name,
		Category:          v.Category,
		DefaultPrice:      v.Price,
		ActualPrice:       v.Price,
		ParticipantCount:  max(v.Members, 1),
		Currency:          currency,
		BillingCycle:      cycle,
		CustomCycleMonths: custom,
		BillingStartDate:  v.StartDate,
		EndDate:           v.EndDate,
		AccountName:       v.Account,
		Memo:              v.Memo,
	}
}

// legacyCycle maps the free-form v1 cycle. An explicit month count of 1 or
// 12 is folded into the fixed cycles.
func legacyCycle(cycle string, months int) (core.BillingCycle, int) {
	switch cycle {
	case "monthly", "month", "":
		if months <= 1 {
			return core.Monthly, 0
		}
	case "yearly", "annual", "year":
		return core.Yearly, 0
	}
	switch {
	case months == 12:
		return core.Yearly, 0
	case months > 1:
		return core.Custom, months
	default:
		return core.Monthly, 0
	}
}

// DecodeSubscription decodes and upgrades a stored record in one step.
func DecodeSubscription(data []byte) (core.Subscription, error) {
	r, err := Decode(data)
	if err != nil {
		return core.Subscription{}, err
	}
	return Upgrade(r), nil
}

// Encode always writes the current version.
func Encode(s core.Subscription) ([]byte, error) {
	return json.Marshal(currentEnvelope{Version: CurrentVersion, Subscription: s})
}
