package types

// SubscriptionStatus is the lifecycle state of a patient billing agreement.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPaused   SubscriptionStatus = "paused"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// IsTerminal reports whether no further lifecycle transition is allowed.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusCanceled
}

// BillingSyncStatus tracks whether the local row and the billing provider agree.
// Rows stuck in failed are picked up by the reconciliation sweep.
type BillingSyncStatus string

const (
	BillingSyncPending   BillingSyncStatus = "pending"
	BillingSyncConfirmed BillingSyncStatus = "confirmed"
	BillingSyncFailed    BillingSyncStatus = "failed"
)

// BillingInterval is the plan billing cadence.
type BillingInterval string

const (
	BillingIntervalMonth      BillingInterval = "month"
	BillingIntervalQuarter    BillingInterval = "quarter"
	BillingIntervalSemiannual BillingInterval = "semiannual"
	BillingIntervalYear       BillingInterval = "year"
)

func (i BillingInterval) Valid() bool {
	switch i {
	case BillingIntervalMonth, BillingIntervalQuarter, BillingIntervalSemiannual, BillingIntervalYear:
		return true
	}
	return false
}

// ToProviderInterval maps a billing interval to the provider's (unit, count)
// pair: year -> {year,1}; semiannual -> {month,6}; quarter -> {month,3};
// month -> {month, intervalCount}.
func (i BillingInterval) ToProviderInterval(intervalCount int) (string, int64) {
	switch i {
	case BillingIntervalYear:
		return "year", 1
	case BillingIntervalSemiannual:
		return "month", 6
	case BillingIntervalQuarter:
		return "month", 3
	default:
		if intervalCount <= 0 {
			intervalCount = 1
		}
		return "month", int64(intervalCount)
	}
}

// SubscriptionActionType labels an audit entry for a lifecycle transition.
type SubscriptionActionType string

const (
	SubscriptionActionCreated   SubscriptionActionType = "created"
	SubscriptionActionPaused    SubscriptionActionType = "paused"
	SubscriptionActionResumed   SubscriptionActionType = "resumed"
	SubscriptionActionCancelled SubscriptionActionType = "cancelled"
)

// CancellationMode distinguishes a soft period-end cancel from a hard cancel.
type CancellationMode string

const (
	CancellationModeAtPeriodEnd CancellationMode = "at_period_end"
	CancellationModeImmediate   CancellationMode = "immediate"
)
