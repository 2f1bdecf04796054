package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		in   Date
		n    int
		want string
	}{
		{"leap february clamp", NewDate(2024, 1, 31), 1, "2024-02-29"},
		{"non-leap february clamp", NewDate(2023, 1, 31), 1, "2023-02-28"},
		{"plain month", NewDate(2026, 3, 15), 1, "2026-04-15"},
		{"year rollover", NewDate(2025, 12, 10), 1, "2026-01-10"},
		{"twelve months", NewDate(2024, 2, 29), 12, "2025-02-28"},
		{"thirty-one to thirty", NewDate(2026, 3, 31), 1, "2026-04-30"},
		{"negative", NewDate(2026, 3, 31), -1, "2026-02-28"},
		{"negative across year", NewDate(2026, 1, 15), -2, "2025-11-15"},
		{"zero", NewDate(2026, 5, 5), 0, "2026-05-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDate(AddMonths(tt.in, tt.n))
			if got != tt.want {
				t.Errorf("AddMonths(%s, %d) = %s, want %s", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2026-01-03", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2026-13-01", false},
		{"2026-1-3", false},
		{"2026-01-03T00:00:00Z", false},
		{" 2026-01-03", false},
		{"", false},
		{"abcd-ef-gh", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, ok := ParseDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && FormatDate(d) != tt.in {
				t.Errorf("round trip = %s, want %s", FormatDate(d), tt.in)
			}
		})
	}
}

func TestDateOfUsesLocalCalendarFields(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	// 00:30 in Seoul is still the previous day in UTC.
	ts := time.Date(2026, 3, 1, 0, 30, 0, 0, seoul)

	if got := FormatDate(DateOf(ts)); got != "2026-03-01" {
		t.Fatalf("DateOf = %s, want 2026-03-01", got)
	}
}

func TestInScope(t *testing.T) {
	tests := []struct {
		date, scope string
		want        bool
	}{
		{"2026-01-03", "2026", true},
		{"2026-01-03", "2026-01", true},
		{"2026-01-03", "2026-02", false},
		{"2026-01-03", "2025", false},
		{"2026-01-03", "", true},
		{"2026-01-03", "2026-1", false},
		{"2026-01-03", "20", false},
		{"bad", "2026", false},
		{"bad", "", false},
	}

	for _, tt := range tests {
		if got := InScope(tt.date, tt.scope); got != tt.want {
			t.Errorf("InScope(%q, %q) = %v, want %v", tt.date, tt.scope, got, tt.want)
		}
	}
}

func TestParseMonth(t *testing.T) {
	y, m, ok := ParseMonth("2026-02")
	if !ok || y != 2026 || m != 2 {
		t.Fatalf("ParseMonth = %d %d %v", y, m, ok)
	}
	for _, bad := range []string{"2026-13", "2026-00", "2026-2", "2026", ""} {
		if _, _, ok := ParseMonth(bad); ok {
			t.Errorf("ParseMonth(%q) expected not ok", bad)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(NewDate(2026, 1, 1), NewDate(2026, 2, 1)); got != 31 {
		t.Errorf("DaysBetween = %d, want 31", got)
	}
	if got := DaysBetween(NewDate(2026, 2, 1), NewDate(2026, 1, 1)); got != -31 {
		t.Errorf("DaysBetween = %d, want -31", got)
	}
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		Day  Date  `json:"day"`
		Next *Date `json:"next"`
	}
	next := NewDate(2024, 2, 29)
	b, err := json.Marshal(wrapper{Day: NewDate(2026, 1, 5), Next: &next})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b); got != `{"day":"2026-01-05","next":"2024-02-29"}` {
		t.Errorf("marshal = %s", got)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"day":"2025-12-31","next":null}`), &w); err != nil {
		t.Fatal(err)
	}
	if w.Day.String() != "2025-12-31" || w.Next != nil {
		t.Errorf("unmarshal = %+v", w)
	}
	if err := json.Unmarshal([]byte(`{"day":"2025-02-30"}`), &w); err == nil {
		t.Error("expected error for impossible date")
	}
}
