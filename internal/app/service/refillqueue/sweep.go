package refillqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/glowclinic/refillhub/internal/models"
	"github.com/glowclinic/refillhub/internal/platform/billing"
	"github.com/glowclinic/refillhub/pkg/logctx"
	"github.com/glowclinic/refillhub/pkg/types"
)

const sweepLockKey = "refillqueue:process-due"

// ProcessDueRefills is the periodic batch sweep. Cron fires it on every
// instance; a session-scoped advisory lock lets exactly one run while the
// others return skipped.
func (s *Service) ProcessDueRefills(ctx context.Context, clinicID string) (*SweepResult, error) {
	lockKey := sweepLockKey
	if clinicID != "" {
		lockKey = fmt.Sprintf("%s:%s", sweepLockKey, clinicID)
	}
	release, acquired, err := s.locker.TryAcquire(ctx, lockKey)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !acquired {
		return &SweepResult{Skipped: true, Reason: "sweep already running"}, nil
	}
	defer release()

	return s.sweepDue(ctx, clinicID, time.Now())
}

// sweepDue charges and advances every due item. Items whose previous charge
// failed sit in pending_payment and are selected again alongside the
// scheduled ones. Items are processed independently so one failed charge
// never blocks the rest of the batch.
func (s *Service) sweepDue(ctx context.Context, clinicID string, now time.Time) (*SweepResult, error) {
	sweepRuns.Inc()

	q := s.db.WithContext(ctx).
		Where("status IN ? AND next_refill_date <= ?",
			[]types.RefillStatus{types.RefillStatusScheduled, types.RefillStatusPendingPayment}, now)
	if clinicID != "" {
		q = q.Where("clinic_id = ?", clinicID)
	}
	var due []*models.RefillQueueItem
	if err := q.Order("next_refill_date asc").Find(&due).Error; err != nil {
		return nil, fmt.Errorf("failed to load due refill items: %w", err)
	}

	result := &SweepResult{Errors: []string{}}
	for _, item := range due {
		if err := s.processDueItem(ctx, item, now); err != nil {
			chargeFailures.Inc()
			result.Errors = append(result.Errors, fmt.Sprintf("item %s: %v", item.ID, err))
			continue
		}
		result.Processed++
		itemsProcessed.Inc()
	}

	logctx.FromCtx(ctx, s.log).Infow("refill sweep finished",
		"clinic_id", clinicID, "due", len(due),
		"processed", result.Processed, "errors", len(result.Errors))
	return result, nil
}

// processDueItem charges one item's subscription and advances it past the
// payment checkpoint.
func (s *Service) processDueItem(ctx context.Context, item *models.RefillQueueItem, now time.Time) error {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).Where("id = ?", item.SubscriptionID).First(&sub).Error; err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub.Status != types.SubscriptionStatusActive {
		return fmt.Errorf("%w: subscription is %s", ErrValidation, sub.Status)
	}
	if sub.PaymentMethodRef == "" {
		return fmt.Errorf("%w: no saved payment method", ErrValidation)
	}

	// First attempt only; a retried item is already pending_payment.
	if item.Status.CanAdvanceTo(types.RefillStatusPendingPayment) {
		item.Status = types.RefillStatusPendingPayment
		if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
			return fmt.Errorf("failed to mark item pending payment: %w", err)
		}
	}

	chargeRef, err := s.gateway.ChargeSavedPaymentMethod(ctx, &billing.ChargeRequest{
		ClinicID:         sub.ClinicID,
		CustomerRef:      sub.BillingCustomerRef,
		PaymentMethodRef: sub.PaymentMethodRef,
		AmountMinor:      sub.AmountMinor,
		Currency:         sub.Currency,
		SubscriptionID:   sub.ID,
		RefillItemID:     item.ID,
	})
	if err != nil {
		// Leave the item in pending-payment; the next sweep retries with the
		// same idempotency key.
		return err
	}

	item.Status = s.statusAfterPayment(sub.ClinicID)
	item.PaymentVerified = true
	item.PaymentVerifiedAt = &now
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("failed to advance item past payment: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("refill charge captured",
		"item_id", item.ID, "subscription_id", sub.ID,
		"charge_ref", chargeRef, "status", item.Status)
	return nil
}
