package types

import (
	"fmt"
	"time"
)

// CalculatePeriodEnd returns the end of a billing period that starts at start.
// month adds intervalCount months; quarter adds 3 months; semiannual adds 6
// months; year adds 1 year. Month arithmetic clamps to the last valid day of
// the target month, so Jan 31 + 3 months lands on Apr 30.
func CalculatePeriodEnd(start time.Time, interval BillingInterval, intervalCount int) (time.Time, error) {
	if intervalCount <= 0 {
		intervalCount = 1
	}
	switch interval {
	case BillingIntervalMonth:
		return AddClampedDate(start, 0, intervalCount, 0), nil
	case BillingIntervalQuarter:
		return AddClampedDate(start, 0, 3, 0), nil
	case BillingIntervalSemiannual:
		return AddClampedDate(start, 0, 6, 0), nil
	case BillingIntervalYear:
		return AddClampedDate(start, 1, 0, 0), nil
	default:
		return start, fmt.Errorf("invalid billing interval: %s", interval)
	}
}

// AddClampedDate adds years/months/days to t without the normalization
// time.AddDate performs (which would roll Jan 31 + 1 month over to Mar 2/3).
// Day-of-month is clamped to the last valid day of the target month.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNextMonth.Add(-24 * time.Hour).Day()

	newD := d + days
	if newD > lastDay {
		newD = lastDay
	}

	return time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location())
}
