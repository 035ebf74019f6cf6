package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/glowclinic/refillhub/internal/app/service/patienttag"
	"github.com/glowclinic/refillhub/internal/models"
	"github.com/glowclinic/refillhub/internal/platform/billing"
	platformdb "github.com/glowclinic/refillhub/internal/platform/db"
	cfgpkg "github.com/glowclinic/refillhub/pkg/config"
	"github.com/glowclinic/refillhub/pkg/logctx"
	"github.com/glowclinic/refillhub/pkg/tool"
	"github.com/glowclinic/refillhub/pkg/types"
)

const reconcileLockKey = "subscription:reconcile-billing-sync"

type Service struct {
	cfg       *cfgpkg.Config
	log       *zap.SugaredLogger
	db        *gorm.DB
	gateway   billing.Gateway
	scheduler RefillScheduler
	tags      *patienttag.Service
	locker    *platformdb.AdvisoryLocker
}

func NewService(
	cfg *cfgpkg.Config,
	log *zap.SugaredLogger,
	gdb *gorm.DB,
	gateway billing.Gateway,
	scheduler RefillScheduler,
	tags *patienttag.Service,
	locker *platformdb.AdvisoryLocker,
) Manager {
	return &Service{cfg: cfg, log: log, db: gdb, gateway: gateway, scheduler: scheduler, tags: tags, locker: locker}
}

// CreateSubscription writes the local row first, then attempts the remote
// create. A remote failure does not roll the row back: the enrollment is
// kept with billing_sync_status=failed and picked up by reconciliation.
func (s *Service) CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*CreateSubscriptionResult, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	periodEnd, err := types.CalculatePeriodEnd(now, req.Interval, req.IntervalCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	sub := &models.Subscription{
		ID:                 tool.GenerateUUIDV7(),
		ClinicID:           req.ClinicID,
		PatientID:          req.PatientID,
		PlanID:             req.PlanID,
		PlanName:           req.PlanName,
		AmountMinor:        req.AmountMinor,
		Currency:           req.Currency,
		Interval:           req.Interval,
		IntervalCount:      req.IntervalCount,
		Status:             types.SubscriptionStatusActive,
		StartDate:          now,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   periodEnd,
		NextBillingDate:    &periodEnd,
		VialCount:          req.VialCount,
		RefillIntervalDays: req.RefillIntervalDays,
		MedicationName:     req.MedicationName,
		MedicationStrength: req.MedicationStrength,
		MedicationForm:     req.MedicationForm,
		BillingCustomerRef: req.BillingCustomerRef,
		PaymentMethodRef:   req.PaymentMethodRef,
		BillingSyncStatus:  types.BillingSyncPending,
	}
	sub.SetExtra(&models.SubscriptionExtra{})

	txCtx, cancel := s.writeCtx(ctx)
	defer cancel()
	if err := s.db.WithContext(txCtx).Create(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.logAction(ctx, &models.SubscriptionAction{
		ClinicID:       sub.ClinicID,
		SubscriptionID: sub.ID,
		ActionType:     types.SubscriptionActionCreated,
		Reason:         "plan purchase",
	})

	if err := s.scheduler.TriggerRefillForSubscriptionPayment(ctx, sub.ID); err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to schedule initial refill: %v", err)
	}
	if err := s.tags.Tag(ctx, sub.ClinicID, sub.PatientID, models.TagActiveSubscription); err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to tag patient: %v", err)
	}

	result := &CreateSubscriptionResult{Subscription: sub, BillingSynced: true}
	if err := s.syncRemoteCreate(ctx, sub); err != nil {
		// Deliberate: the enrollment survives, degraded, for follow-up.
		result.BillingSynced = false
		result.SyncError = err.Error()
	}
	return result, nil
}

// syncRemoteCreate performs the remote leg of a create and records the
// outcome on the row.
func (s *Service) syncRemoteCreate(ctx context.Context, sub *models.Subscription) error {
	remoteID, err := s.gateway.CreateSubscription(ctx, &billing.CreateSubscriptionRequest{
		ClinicID:         sub.ClinicID,
		CustomerRef:      sub.BillingCustomerRef,
		PaymentMethodRef: sub.PaymentMethodRef,
		PlanID:           sub.PlanID,
		PlanName:         sub.PlanName,
		AmountMinor:      sub.AmountMinor,
		Currency:         sub.Currency,
		Interval:         sub.Interval,
		IntervalCount:    sub.IntervalCount,
		SubscriptionID:   sub.ID,
	})

	txCtx, cancel := s.writeCtx(ctx)
	defer cancel()

	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("remote subscription create failed",
			"subscription_id", sub.ID, "err", err)
		sub.BillingSyncStatus = types.BillingSyncFailed
		extra := sub.GetExtra()
		extra.SyncError = err.Error()
		sub.SetExtra(extra)
		if uerr := s.db.WithContext(txCtx).Save(sub).Error; uerr != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to record sync failure: %v", uerr)
		}
		return err
	}

	sub.BillingProviderSubscriptionID = &remoteID
	sub.BillingSyncStatus = types.BillingSyncConfirmed
	extra := sub.GetExtra()
	extra.SyncError = ""
	sub.SetExtra(extra)
	if uerr := s.db.WithContext(txCtx).Save(sub).Error; uerr != nil {
		return fmt.Errorf("failed to store remote subscription id: %w", uerr)
	}
	return nil
}

// PauseSubscription pauses billing remote-first: the local row only moves to
// paused after the provider confirmed, so a failure cannot leave a locally
// paused but still billing agreement.
func (s *Service) PauseSubscription(ctx context.Context, req *PauseSubscriptionRequest) (*models.Subscription, error) {
	sub, err := s.loadSubscription(ctx, req.ClinicID, req.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if err := validatePauseTransition(sub.Status); err != nil {
		return nil, err
	}
	remoteID, err := requireRemoteLink(sub)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.PauseCollection(ctx, sub.ClinicID, remoteID, req.ResumeAt); err != nil {
		return nil, err
	}

	now := time.Now()
	sub.Status = types.SubscriptionStatusPaused
	sub.PausedAt = &now
	sub.ResumeAt = req.ResumeAt

	txCtx, cancel := s.writeCtx(ctx)
	defer cancel()
	if err := s.db.WithContext(txCtx).Save(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to persist pause: %w", err)
	}

	s.logAction(ctx, &models.SubscriptionAction{
		ClinicID:       sub.ClinicID,
		SubscriptionID: sub.ID,
		ActionType:     types.SubscriptionActionPaused,
		Reason:         req.Reason,
		PausedUntil:    req.ResumeAt,
	})

	if err := s.scheduler.HoldActiveItems(ctx, sub.ID, "subscription paused"); err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to hold refill items: %v", err)
	}
	return sub, nil
}

// ResumeSubscription is the inverse of pause. Period bounds restart from now.
func (s *Service) ResumeSubscription(ctx context.Context, req *ResumeSubscriptionRequest) (*models.Subscription, error) {
	sub, err := s.loadSubscription(ctx, req.ClinicID, req.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if err := validateResumeTransition(sub.Status); err != nil {
		return nil, err
	}
	remoteID, err := requireRemoteLink(sub)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.ResumeCollection(ctx, sub.ClinicID, remoteID); err != nil {
		return nil, err
	}

	now := time.Now()
	periodEnd, err := types.CalculatePeriodEnd(now, sub.Interval, sub.IntervalCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	sub.Status = types.SubscriptionStatusActive
	sub.CurrentPeriodStart = now
	sub.CurrentPeriodEnd = periodEnd
	sub.NextBillingDate = &periodEnd
	sub.PausedAt = nil
	sub.ResumeAt = nil

	txCtx, cancel := s.writeCtx(ctx)
	defer cancel()
	if err := s.db.WithContext(txCtx).Save(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to persist resume: %w", err)
	}

	s.logAction(ctx, &models.SubscriptionAction{
		ClinicID:       sub.ClinicID,
		SubscriptionID: sub.ID,
		ActionType:     types.SubscriptionActionResumed,
		Reason:         req.Reason,
	})

	// The active-item invariant makes this a no-op when an item survived the
	// pause.
	if err := s.scheduler.TriggerRefillForSubscriptionPayment(ctx, sub.ID); err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to schedule refill on resume: %v", err)
	}
	return sub, nil
}

// CancelSubscription handles both modes. Soft cancel leaves the local status
// untouched and lets billing and refills run out the period; hard cancel
// terminates everything now.
func (s *Service) CancelSubscription(ctx context.Context, req *CancelSubscriptionRequest) (*models.Subscription, error) {
	sub, err := s.loadSubscription(ctx, req.ClinicID, req.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if err := validateCancelTransition(sub.Status); err != nil {
		return nil, err
	}
	remoteID, err := requireRemoteLink(sub)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	extra := sub.GetExtra()
	extra.CancellationReason = req.Reason

	if req.CancelAtPeriodEnd {
		if err := s.gateway.CancelAtPeriodEnd(ctx, sub.ClinicID, remoteID); err != nil {
			return nil, err
		}
		extra.CancellationMode = types.CancellationModeAtPeriodEnd
		sub.CanceledAt = &now
	} else {
		if err := s.gateway.CancelNow(ctx, sub.ClinicID, remoteID); err != nil {
			return nil, err
		}
		extra.CancellationMode = types.CancellationModeImmediate
		sub.Status = types.SubscriptionStatusCanceled
		if sub.CanceledAt == nil {
			sub.CanceledAt = &now
		}
		sub.EndedAt = &now
	}
	sub.SetExtra(extra)

	txCtx, cancel := s.writeCtx(ctx)
	defer cancel()
	if err := s.db.WithContext(txCtx).Save(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to persist cancel: %w", err)
	}

	s.logAction(ctx, &models.SubscriptionAction{
		ClinicID:           sub.ClinicID,
		SubscriptionID:     sub.ID,
		ActionType:         types.SubscriptionActionCancelled,
		Reason:             req.Reason,
		CancellationReason: req.Reason,
	})

	if !req.CancelAtPeriodEnd {
		if err := s.scheduler.CancelActiveItems(ctx, sub.ID, "subscription cancelled"); err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to cancel refill items: %v", err)
		}
		s.tags.UntagUnlessOtherActive(ctx, sub.ClinicID, sub.PatientID, sub.ID)
	}
	return sub, nil
}

// ListActions returns the audit trail for a subscription, newest first.
func (s *Service) ListActions(ctx context.Context, clinicID, subscriptionID string) ([]*models.SubscriptionAction, error) {
	var actions []*models.SubscriptionAction
	err := s.db.WithContext(ctx).
		Where("clinic_id = ? AND subscription_id = ?", clinicID, subscriptionID).
		Order("created_at desc").
		Find(&actions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription actions: %w", err)
	}
	return actions, nil
}

// ReconcileBillingSync retries the remote create for rows left in
// billing_sync_status=failed. Guarded by an advisory lock so concurrent cron
// firings across instances do not double-create remote subscriptions.
func (s *Service) ReconcileBillingSync(ctx context.Context, clinicID string) (*ReconcileResult, error) {
	lockKey := reconcileLockKey
	if clinicID != "" {
		lockKey = fmt.Sprintf("%s:%s", reconcileLockKey, clinicID)
	}
	release, acquired, err := s.locker.TryAcquire(ctx, lockKey)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire reconcile lock: %w", err)
	}
	if !acquired {
		return &ReconcileResult{Skipped: true, Reason: "reconciliation already running"}, nil
	}
	defer release()

	q := s.db.WithContext(ctx).
		Where("billing_sync_status = ? AND status <> ?", types.BillingSyncFailed, types.SubscriptionStatusCanceled)
	if clinicID != "" {
		q = q.Where("clinic_id = ?", clinicID)
	}
	var rows []*models.Subscription
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load unsynced subscriptions: %w", err)
	}

	result := &ReconcileResult{Errors: []string{}}
	for _, sub := range rows {
		if err := s.syncRemoteCreate(ctx, sub); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("subscription %s: %v", sub.ID, err))
			continue
		}
		result.Processed++
	}
	logctx.FromCtx(ctx, s.log).Infow("billing sync reconciliation finished",
		"processed", result.Processed, "errors", len(result.Errors))
	return result, nil
}

func (s *Service) loadSubscription(ctx context.Context, clinicID, subscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, subscriptionID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

// logAction appends the audit row. Best-effort: a failed audit write is
// logged and never fails the transition that already committed.
func (s *Service) logAction(ctx context.Context, action *models.SubscriptionAction) {
	action.ID = tool.GenerateUUIDV7()
	if err := s.db.WithContext(ctx).Create(action).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to save subscription action: %v", err)
	}
}

// writeCtx bounds multi-statement local writes; on timeout the local write
// aborts while any committed remote change stays authoritative.
func (s *Service) writeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.Database.WriteTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func validateCreateRequest(req *CreateSubscriptionRequest) error {
	switch {
	case req == nil:
		return fmt.Errorf("%w: nil request", ErrValidation)
	case req.ClinicID == "" || req.PatientID == "":
		return fmt.Errorf("%w: clinic_id and patient_id are required", ErrValidation)
	case req.PlanID == "":
		return fmt.Errorf("%w: plan_id is required", ErrValidation)
	case req.AmountMinor <= 0:
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	case req.Currency == "":
		return fmt.Errorf("%w: currency is required", ErrValidation)
	case !req.Interval.Valid():
		return fmt.Errorf("%w: invalid billing interval %q", ErrValidation, req.Interval)
	case req.VialCount <= 0:
		return fmt.Errorf("%w: vial_count must be positive", ErrValidation)
	case req.RefillIntervalDays <= 0:
		return fmt.Errorf("%w: refill_interval_days must be positive", ErrValidation)
	case req.BillingCustomerRef == "":
		return fmt.Errorf("%w: billing_customer_ref is required", ErrValidation)
	}
	return nil
}

func validatePauseTransition(status types.SubscriptionStatus) error {
	if status != types.SubscriptionStatusActive {
		return fmt.Errorf("%w: only an active subscription can be paused, current status is %s", ErrValidation, status)
	}
	return nil
}

func validateResumeTransition(status types.SubscriptionStatus) error {
	if status != types.SubscriptionStatusPaused {
		return fmt.Errorf("%w: only a paused subscription can be resumed, current status is %s", ErrValidation, status)
	}
	return nil
}

func validateCancelTransition(status types.SubscriptionStatus) error {
	if status.IsTerminal() {
		return fmt.Errorf("%w: subscription is already canceled", ErrValidation)
	}
	return nil
}

func requireRemoteLink(sub *models.Subscription) (string, error) {
	if sub.BillingProviderSubscriptionID == nil || *sub.BillingProviderSubscriptionID == "" {
		return "", fmt.Errorf("%w: subscription has no confirmed billing provider link", ErrValidation)
	}
	return *sub.BillingProviderSubscriptionID, nil
}
