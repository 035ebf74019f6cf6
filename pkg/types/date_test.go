package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 10, 30, 0, 0, time.UTC)
}

func TestCalculatePeriodEnd(t *testing.T) {
	tests := []struct {
		name          string
		start         time.Time
		interval      BillingInterval
		intervalCount int
		want          time.Time
		wantErr       bool
	}{
		{name: "quarter", start: d(2024, time.January, 15), interval: BillingIntervalQuarter, want: d(2024, time.April, 15)},
		{name: "semiannual", start: d(2024, time.January, 15), interval: BillingIntervalSemiannual, want: d(2024, time.July, 15)},
		{name: "year", start: d(2024, time.January, 15), interval: BillingIntervalYear, want: d(2025, time.January, 15)},
		{name: "single month", start: d(2024, time.January, 15), interval: BillingIntervalMonth, intervalCount: 1, want: d(2024, time.February, 15)},
		{name: "three months clamps to shorter month", start: d(2024, time.January, 31), interval: BillingIntervalMonth, intervalCount: 3, want: d(2024, time.April, 30)},
		{name: "quarter across year boundary", start: d(2024, time.November, 20), interval: BillingIntervalQuarter, want: d(2025, time.February, 20)},
		{name: "zero count defaults to one", start: d(2024, time.January, 15), interval: BillingIntervalMonth, intervalCount: 0, want: d(2024, time.February, 15)},
		{name: "unknown interval", start: d(2024, time.January, 15), interval: BillingInterval("weekly"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculatePeriodEnd(tt.start, tt.interval, tt.intervalCount)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddClampedDate(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		years  int
		months int
		want   time.Time
	}{
		{name: "jan 31 plus one month", start: d(2024, time.January, 31), months: 1, want: d(2024, time.February, 29)},
		{name: "jan 31 plus one month non-leap", start: d(2023, time.January, 31), months: 1, want: d(2023, time.February, 28)},
		{name: "mid-month untouched", start: d(2024, time.March, 10), months: 2, want: d(2024, time.May, 10)},
		{name: "december rollover", start: d(2024, time.December, 5), months: 1, want: d(2025, time.January, 5)},
		{name: "plus a year", start: d(2024, time.February, 29), years: 1, want: d(2025, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddClampedDate(tt.start, tt.years, tt.months, 0))
		})
	}
}
