package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBillingInterval_ToProviderInterval(t *testing.T) {
	tests := []struct {
		name      string
		interval  BillingInterval
		count     int
		wantUnit  string
		wantCount int64
	}{
		{name: "year", interval: BillingIntervalYear, count: 5, wantUnit: "year", wantCount: 1},
		{name: "semiannual", interval: BillingIntervalSemiannual, count: 1, wantUnit: "month", wantCount: 6},
		{name: "quarter", interval: BillingIntervalQuarter, count: 1, wantUnit: "month", wantCount: 3},
		{name: "month with count", interval: BillingIntervalMonth, count: 2, wantUnit: "month", wantCount: 2},
		{name: "month defaults count", interval: BillingIntervalMonth, count: 0, wantUnit: "month", wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, count := tt.interval.ToProviderInterval(tt.count)
			assert.Equal(t, tt.wantUnit, unit)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestBillingInterval_Valid(t *testing.T) {
	assert.True(t, BillingIntervalMonth.Valid())
	assert.True(t, BillingIntervalYear.Valid())
	assert.False(t, BillingInterval("weekly").Valid())
	assert.False(t, BillingInterval("").Valid())
}

func TestSubscriptionStatus_IsTerminal(t *testing.T) {
	assert.True(t, SubscriptionStatusCanceled.IsTerminal())
	assert.False(t, SubscriptionStatusActive.IsTerminal())
	assert.False(t, SubscriptionStatusPaused.IsTerminal())
	assert.False(t, SubscriptionStatusPastDue.IsTerminal())
}
