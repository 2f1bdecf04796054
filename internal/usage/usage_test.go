package usage

import (
	"math"
	"testing"
	"time"

	"budgetbook/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(v float64) *float64 { return &v }

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want State
	}{
		{"unset", nil, StateUnset},
		{"zero", pct(0), StateOK},
		{"exactly eighty", pct(80), StateOK},
		{"just over eighty", pct(80.0001), StateWarning},
		{"ninety nine", pct(99.99), StateWarning},
		{"exactly hundred", pct(100), StateOver},
		{"way over", pct(250), StateOver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestUsagePercent(t *testing.T) {
	p := UsagePercent(50, 200)
	require.NotNil(t, p)
	assert.Equal(t, 25.0, *p)

	over := UsagePercent(300, 200)
	require.NotNil(t, over)
	assert.Equal(t, 150.0, *over)

	assert.Nil(t, UsagePercent(10, 0))
	assert.Nil(t, UsagePercent(10, -5))
	assert.Nil(t, UsagePercent(math.NaN(), 100))
	assert.Nil(t, UsagePercent(10, math.Inf(1)))
}

func TestProgressWidth(t *testing.T) {
	assert.Equal(t, 0.0, ProgressWidth(nil))
	assert.Equal(t, 42.5, ProgressWidth(pct(42.5)))
	assert.Equal(t, 100.0, ProgressWidth(pct(180)))
	assert.Equal(t, 0.0, ProgressWidth(pct(-3)))
}

func TestTrackerReportsOncePerState(t *testing.T) {
	tr := NewTracker(NewMemoryAlertStore())
	subject := BudgetSubject("2026-01", "Food")

	assert.False(t, tr.Observe(subject, StateOK))
	assert.False(t, tr.Observe(subject, StateUnset))
	assert.True(t, tr.Observe(subject, StateWarning))
	assert.False(t, tr.Observe(subject, StateWarning))
	assert.True(t, tr.Observe(subject, StateOver))
	assert.False(t, tr.Observe(subject, StateOver))
}

func TestTrackersDoNotShareState(t *testing.T) {
	a := NewTracker(NewMemoryAlertStore())
	b := NewTracker(nil)

	assert.True(t, a.Observe("x", StateOver))
	assert.True(t, b.Observe("x", StateOver))
}

func TestCacheAlertStoreForgetsAfterTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	lru := cache.NewLRUCache[struct{}](100, time.Hour).WithClock(func() time.Time { return now })
	tr := NewTracker(NewCacheAlertStore(lru))

	require.True(t, tr.Observe("s", StateWarning))
	require.False(t, tr.Observe("s", StateWarning))

	now = now.Add(2 * time.Hour)
	assert.True(t, tr.Observe("s", StateWarning))
}
