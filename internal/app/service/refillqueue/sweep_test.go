package refillqueue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/glowclinic/refillhub/internal/models"
	"github.com/glowclinic/refillhub/internal/platform/billing"
	cfgpkg "github.com/glowclinic/refillhub/pkg/config"
	"github.com/glowclinic/refillhub/pkg/types"
)

// stubChargeGateway fails charges per subscription id and records successes.
type stubChargeGateway struct {
	failFor map[string]bool
	charges []string
}

func (g *stubChargeGateway) ChargeSavedPaymentMethod(_ context.Context, req *billing.ChargeRequest) (string, error) {
	if g.failFor[req.SubscriptionID] {
		return "", fmt.Errorf("%w: charge saved payment method (card_declined)", billing.ErrRemoteGateway)
	}
	g.charges = append(g.charges, req.RefillItemID)
	return "pi_" + req.RefillItemID, nil
}

func (g *stubChargeGateway) CreateSubscription(_ context.Context, _ *billing.CreateSubscriptionRequest) (string, error) {
	panic("not used")
}

func (g *stubChargeGateway) PauseCollection(_ context.Context, _, _ string, _ *time.Time) error {
	panic("not used")
}

func (g *stubChargeGateway) ResumeCollection(_ context.Context, _, _ string) error {
	panic("not used")
}

func (g *stubChargeGateway) CancelAtPeriodEnd(_ context.Context, _, _ string) error {
	panic("not used")
}

func (g *stubChargeGateway) CancelNow(_ context.Context, _, _ string) error {
	panic("not used")
}

func newQueueService(t *testing.T, gw billing.Gateway) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Subscription{}, &models.RefillQueueItem{}))

	cfg := &cfgpkg.Config{Clinics: []*cfgpkg.ClinicBillingAccount{
		{ClinicID: "clinic-1", SecretKey: "sk_test", RequireAdminApproval: true},
	}}
	return &Service{cfg: cfg, log: zap.NewNop().Sugar(), db: db, gateway: gw}
}

func seedSubscription(t *testing.T, db *gorm.DB, id string) *models.Subscription {
	t.Helper()
	now := time.Now()
	sub := &models.Subscription{
		ID:                 id,
		ClinicID:           "clinic-1",
		PatientID:          "patient-" + id,
		PlanID:             "plan-glp1",
		PlanName:           "GLP-1 Monthly",
		AmountMinor:        29900,
		Currency:           "usd",
		Interval:           types.BillingIntervalMonth,
		IntervalCount:      1,
		Status:             types.SubscriptionStatusActive,
		StartDate:          now,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
		VialCount:          3,
		RefillIntervalDays: 30,
		MedicationName:     "Semaglutide",
		BillingCustomerRef: "cus_" + id,
		PaymentMethodRef:   "pm_" + id,
		BillingSyncStatus:  types.BillingSyncConfirmed,
	}
	sub.SetExtra(&models.SubscriptionExtra{})
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func seedItem(t *testing.T, db *gorm.DB, id, subID string, status types.RefillStatus, due time.Time) *models.RefillQueueItem {
	t.Helper()
	item := &models.RefillQueueItem{
		ID:                 id,
		ClinicID:           "clinic-1",
		PatientID:          "patient-" + subID,
		SubscriptionID:     subID,
		Status:             status,
		VialCount:          3,
		RefillIntervalDays: 30,
		NextRefillDate:     due,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func reloadItem(t *testing.T, db *gorm.DB, id string) *models.RefillQueueItem {
	t.Helper()
	var item models.RefillQueueItem
	require.NoError(t, db.Where("id = ?", id).First(&item).Error)
	return &item
}

func TestTriggerRefill_SingleActiveItemPerSubscription(t *testing.T) {
	ctx := context.Background()
	s := newQueueService(t, &stubChargeGateway{})
	seedSubscription(t, s.db, "sub-1")

	require.NoError(t, s.TriggerRefillForSubscriptionPayment(ctx, "sub-1"))
	// second trigger must not create a second item
	require.NoError(t, s.TriggerRefillForSubscriptionPayment(ctx, "sub-1"))

	var count int64
	require.NoError(t, s.db.Model(&models.RefillQueueItem{}).
		Where("subscription_id = ?", "sub-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// first cycle is due immediately and the purchase carried the payment
	var item models.RefillQueueItem
	require.NoError(t, s.db.Where("subscription_id = ?", "sub-1").First(&item).Error)
	assert.Equal(t, types.RefillStatusPendingAdmin, item.Status)
	assert.True(t, item.PaymentVerified)
}

func TestSweepDue_IsolatesChargeFailures(t *testing.T) {
	ctx := context.Background()
	gw := &stubChargeGateway{failFor: map[string]bool{"sub-bad": true}}
	s := newQueueService(t, gw)

	yesterday := time.Now().Add(-24 * time.Hour)
	seedSubscription(t, s.db, "sub-ok")
	seedSubscription(t, s.db, "sub-bad")
	seedItem(t, s.db, "item-ok", "sub-ok", types.RefillStatusScheduled, yesterday)
	seedItem(t, s.db, "item-bad", "sub-bad", types.RefillStatusScheduled, yesterday)

	res, err := s.sweepDue(ctx, "", time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Processed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "item-bad")

	ok := reloadItem(t, s.db, "item-ok")
	assert.Equal(t, types.RefillStatusPendingAdmin, ok.Status)
	assert.True(t, ok.PaymentVerified)

	bad := reloadItem(t, s.db, "item-bad")
	assert.Equal(t, types.RefillStatusPendingPayment, bad.Status)
	assert.False(t, bad.PaymentVerified)
}

func TestSweepDue_RetriesFailedChargeOnNextRun(t *testing.T) {
	ctx := context.Background()
	gw := &stubChargeGateway{failFor: map[string]bool{"sub-1": true}}
	s := newQueueService(t, gw)

	seedSubscription(t, s.db, "sub-1")
	seedItem(t, s.db, "item-1", "sub-1", types.RefillStatusScheduled, time.Now().Add(-time.Hour))

	res, err := s.sweepDue(ctx, "", time.Now())
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, types.RefillStatusPendingPayment, reloadItem(t, s.db, "item-1").Status)

	// the decline was transient; the next sweep picks the item up again
	gw.failFor = nil
	res, err = s.sweepDue(ctx, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Empty(t, res.Errors)

	item := reloadItem(t, s.db, "item-1")
	assert.Equal(t, types.RefillStatusPendingAdmin, item.Status)
	assert.True(t, item.PaymentVerified)
	assert.Equal(t, []string{"item-1"}, gw.charges)
}

func TestSweepDue_SkipsInactiveSubscriptions(t *testing.T) {
	ctx := context.Background()
	s := newQueueService(t, &stubChargeGateway{})

	sub := seedSubscription(t, s.db, "sub-1")
	sub.Status = types.SubscriptionStatusPaused
	require.NoError(t, s.db.Save(sub).Error)
	seedItem(t, s.db, "item-1", "sub-1", types.RefillStatusScheduled, time.Now().Add(-time.Hour))

	res, err := s.sweepDue(ctx, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)
	require.Len(t, res.Errors, 1)
	// the item is untouched, not charged
	assert.Equal(t, types.RefillStatusScheduled, reloadItem(t, s.db, "item-1").Status)
}

func TestReleaseHold(t *testing.T) {
	ctx := context.Background()
	s := newQueueService(t, &stubChargeGateway{})
	seedSubscription(t, s.db, "sub-1")

	t.Run("paid item returns to the admin gate", func(t *testing.T) {
		item := seedItem(t, s.db, "item-paid", "sub-1", types.RefillStatusOnHold, time.Now())
		item.PaymentVerified = true
		require.NoError(t, s.db.Save(item).Error)

		got, err := s.ReleaseHold(ctx, &AdminDecisionRequest{ClinicID: "clinic-1", ItemID: "item-paid"})
		require.NoError(t, err)
		assert.Equal(t, types.RefillStatusPendingAdmin, got.Status)

		// clean up for the following subtests
		require.NoError(t, s.db.Delete(&models.RefillQueueItem{}, "id = ?", "item-paid").Error)
	})

	t.Run("unpaid item returns to scheduled", func(t *testing.T) {
		seedItem(t, s.db, "item-unpaid", "sub-1", types.RefillStatusOnHold, time.Now())

		got, err := s.ReleaseHold(ctx, &AdminDecisionRequest{ClinicID: "clinic-1", ItemID: "item-unpaid"})
		require.NoError(t, err)
		assert.Equal(t, types.RefillStatusScheduled, got.Status)
	})

	t.Run("refused while another item is in flight", func(t *testing.T) {
		// item-unpaid is active again after the previous release
		seedItem(t, s.db, "item-held", "sub-1", types.RefillStatusOnHold, time.Now())

		_, err := s.ReleaseHold(ctx, &AdminDecisionRequest{ClinicID: "clinic-1", ItemID: "item-held"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("only held items can be released", func(t *testing.T) {
		_, err := s.ReleaseHold(ctx, &AdminDecisionRequest{ClinicID: "clinic-1", ItemID: "item-unpaid"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCancelItem_AllowsHeldItems(t *testing.T) {
	ctx := context.Background()
	s := newQueueService(t, &stubChargeGateway{})
	seedSubscription(t, s.db, "sub-1")
	seedItem(t, s.db, "item-1", "sub-1", types.RefillStatusOnHold, time.Now())

	// a held item cannot be held again
	_, err := s.HoldItem(ctx, &AdminDecisionRequest{ClinicID: "clinic-1", ItemID: "item-1"})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := s.CancelItem(ctx, &AdminDecisionRequest{ClinicID: "clinic-1", ItemID: "item-1", Notes: "patient moved away"})
	require.NoError(t, err)
	assert.Equal(t, types.RefillStatusCancelled, got.Status)

	// cancelled is terminal
	_, err = s.HoldItem(ctx, &AdminDecisionRequest{ClinicID: "clinic-1", ItemID: "item-1"})
	assert.ErrorIs(t, err, ErrValidation)
}
