package refillqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/glowclinic/refillhub/internal/models"
	cfgpkg "github.com/glowclinic/refillhub/pkg/config"
	"github.com/glowclinic/refillhub/pkg/types"
)

func TestStatusAfterPayment(t *testing.T) {
	cfg := &cfgpkg.Config{Clinics: []*cfgpkg.ClinicBillingAccount{
		{ClinicID: "gated", RequireAdminApproval: true},
		{ClinicID: "ungated", RequireAdminApproval: false},
	}}
	s := &Service{cfg: cfg}

	assert.Equal(t, types.RefillStatusPendingAdmin, s.statusAfterPayment("gated"))
	assert.Equal(t, types.RefillStatusApproved, s.statusAfterPayment("ungated"))
	// unknown clinics stay behind the admin gate
	assert.Equal(t, types.RefillStatusPendingAdmin, s.statusAfterPayment("unknown"))
}

func TestRefillQueueItem_Due(t *testing.T) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		item *models.RefillQueueItem
		want bool
	}{
		{name: "scheduled and past due", item: &models.RefillQueueItem{Status: types.RefillStatusScheduled, NextRefillDate: past}, want: true},
		{name: "scheduled exactly now", item: &models.RefillQueueItem{Status: types.RefillStatusScheduled, NextRefillDate: now}, want: true},
		{name: "scheduled in future", item: &models.RefillQueueItem{Status: types.RefillStatusScheduled, NextRefillDate: future}, want: false},
		{name: "past due but on hold", item: &models.RefillQueueItem{Status: types.RefillStatusOnHold, NextRefillDate: past}, want: false},
		{name: "past due but dispensed", item: &models.RefillQueueItem{Status: types.RefillStatusDispensed, NextRefillDate: past}, want: false},
		{name: "nil item", item: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.Due(now))
		})
	}
}
