package schema

import (
	"errors"
	"testing"

	"budgetbook/internal/core"
)

func TestDecodeLegacyWithoutVersion(t *testing.T) {
	data := []byte(`{"id":"s1","name":"Netflix","price":17000,"members":4,"cycle":"monthly","startDate":"2024-03-05","account":"card"}`)

	r, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if _, ok := r.(LegacyShapeV1); !ok {
		t.Fatalf("Decode() = %T, want LegacyShapeV1", r)
	}

	got := Upgrade(r)
	if got.ServiceName != "Netflix" || got.AccountName != "card" {
		t.Errorf("names not carried over: %+v", got)
	}
	if got.DefaultPrice != 17000 || got.ActualPrice != 17000 {
		t.Errorf("prices = %v/%v, want 17000/17000", got.DefaultPrice, got.ActualPrice)
	}
	if got.ParticipantCount != 4 || got.Currency != core.KRW || got.BillingCycle != core.Monthly {
		t.Errorf("unexpected upgrade %+v", got)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("upgraded record should validate: %v", err)
	}
}

func TestLegacyCycleMapping(t *testing.T) {
	tests := []struct {
		cycle      string
		months     int
		wantCycle  core.BillingCycle
		wantCustom int
	}{
		{"monthly", 0, core.Monthly, 0},
		{"", 0, core.Monthly, 0},
		{"annual", 0, core.Yearly, 0},
		{"custom", 12, core.Yearly, 0},
		{"custom", 3, core.Custom, 3},
		{"monthly", 6, core.Custom, 6},
		{"weird", 0, core.Monthly, 0},
	}
	for _, tt := range tests {
		t.Run(tt.cycle, func(t *testing.T) {
			c, m := legacyCycle(tt.cycle, tt.months)
			if c != tt.wantCycle || m != tt.wantCustom {
				t.Errorf("legacyCycle(%q, %d) = %s/%d, want %s/%d", tt.cycle, tt.months, c, m, tt.wantCycle, tt.wantCustom)
			}
		})
	}
}

func TestEncodeDecodeCurrent(t *testing.T) {
	sub := core.Subscription{
		ID:                "s2",
		ServiceName:       "Cloud",
		DefaultPrice:      30,
		ActualPrice:       20,
		ParticipantCount:  2,
		Currency:          core.USD,
		BillingCycle:      core.Custom,
		CustomCycleMonths: 6,
		BillingStartDate:  "2025-01-01",
		EndDate:           "2027-01-01",
	}
	data, err := Encode(sub)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	r, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if r.Version() != CurrentVersion {
		t.Fatalf("Version() = %d, want %d", r.Version(), CurrentVersion)
	}
	got := Upgrade(r)
	if got.ServiceName != sub.ServiceName || got.CustomCycleMonths != 6 || got.EndDate != sub.EndDate {
		t.Errorf("round trip lost data: %+v", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode([]byte(`{"version":7}`)); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
	if _, err := DecodeSubscription([]byte(`not json`)); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
	if _, err := Decode([]byte(`{"version":2,"participantCount":"two"}`)); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed for bad field type, got %v", err)
	}
}
