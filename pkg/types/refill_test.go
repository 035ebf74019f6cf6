package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefillStatus_IsActive(t *testing.T) {
	for _, s := range ActiveRefillStatuses() {
		assert.True(t, s.IsActive(), "%s should be active", s)
	}
	assert.False(t, RefillStatusOnHold.IsActive())
	assert.False(t, RefillStatusCancelled.IsActive())
	assert.False(t, RefillStatusDispensed.IsActive())
}

func TestRefillStatus_IsTerminal(t *testing.T) {
	assert.True(t, RefillStatusCancelled.IsTerminal())
	assert.True(t, RefillStatusDispensed.IsTerminal())
	assert.False(t, RefillStatusOnHold.IsTerminal())
	assert.False(t, RefillStatusScheduled.IsTerminal())
}

func TestRefillStatus_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		from RefillStatus
		to   RefillStatus
		want bool
	}{
		{RefillStatusScheduled, RefillStatusPendingPayment, true},
		{RefillStatusPendingPayment, RefillStatusPendingAdmin, true},
		{RefillStatusPendingPayment, RefillStatusApproved, true},
		{RefillStatusPendingAdmin, RefillStatusApproved, true},
		{RefillStatusApproved, RefillStatusPendingProvider, true},
		{RefillStatusPendingProvider, RefillStatusDispensed, true},
		{RefillStatusOnHold, RefillStatusScheduled, true},
		{RefillStatusOnHold, RefillStatusPendingAdmin, true},

		// no skipping checkpoints
		{RefillStatusScheduled, RefillStatusApproved, false},
		{RefillStatusScheduled, RefillStatusDispensed, false},
		{RefillStatusPendingAdmin, RefillStatusDispensed, false},
		// terminal states have no successors
		{RefillStatusDispensed, RefillStatusScheduled, false},
		{RefillStatusCancelled, RefillStatusScheduled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanAdvanceTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
