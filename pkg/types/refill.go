package types

// RefillStatus is the checkpoint state of a refill queue item.
type RefillStatus string

const (
	RefillStatusScheduled       RefillStatus = "scheduled"
	RefillStatusPendingPayment  RefillStatus = "pending_payment"
	RefillStatusPendingAdmin    RefillStatus = "pending_admin"
	RefillStatusApproved        RefillStatus = "approved"
	RefillStatusPendingProvider RefillStatus = "pending_provider"
	RefillStatusOnHold          RefillStatus = "on_hold"
	RefillStatusCancelled       RefillStatus = "cancelled"
	RefillStatusDispensed       RefillStatus = "dispensed"
)

// ActiveRefillStatuses are the states that count against the one-active-item
// invariant: a subscription may only hold one item in any of these at a time.
func ActiveRefillStatuses() []RefillStatus {
	return []RefillStatus{
		RefillStatusScheduled,
		RefillStatusPendingPayment,
		RefillStatusPendingAdmin,
		RefillStatusApproved,
		RefillStatusPendingProvider,
	}
}

// IsActive reports whether the status counts as a live, in-progress item.
func (s RefillStatus) IsActive() bool {
	switch s {
	case RefillStatusScheduled, RefillStatusPendingPayment, RefillStatusPendingAdmin,
		RefillStatusApproved, RefillStatusPendingProvider:
		return true
	}
	return false
}

// IsTerminal reports whether the item can never progress again.
func (s RefillStatus) IsTerminal() bool {
	return s == RefillStatusCancelled || s == RefillStatusDispensed
}

// refillSuccessors is the forward edge set of the checkpoint state machine.
// ON_HOLD and CANCELLED are additionally reachable from any active state via
// administrative override and are handled separately.
var refillSuccessors = map[RefillStatus][]RefillStatus{
	RefillStatusScheduled:       {RefillStatusPendingPayment},
	RefillStatusPendingPayment:  {RefillStatusPendingAdmin, RefillStatusApproved},
	RefillStatusPendingAdmin:    {RefillStatusApproved},
	RefillStatusApproved:        {RefillStatusPendingProvider},
	RefillStatusPendingProvider: {RefillStatusDispensed},
	RefillStatusOnHold:          {RefillStatusScheduled, RefillStatusPendingAdmin},
}

// CanAdvanceTo reports whether moving from s to next is a legal forward step.
// Administrative overrides (hold/cancel from any active state) bypass this.
func (s RefillStatus) CanAdvanceTo(next RefillStatus) bool {
	for _, v := range refillSuccessors[s] {
		if v == next {
			return true
		}
	}
	return false
}
