package refillqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/glowclinic/refillhub/internal/models"
	"github.com/glowclinic/refillhub/internal/platform/billing"
	platformdb "github.com/glowclinic/refillhub/internal/platform/db"
	"github.com/glowclinic/refillhub/internal/platform/pharmacy"
	cfgpkg "github.com/glowclinic/refillhub/pkg/config"
	"github.com/glowclinic/refillhub/pkg/logctx"
	"github.com/glowclinic/refillhub/pkg/tool"
	"github.com/glowclinic/refillhub/pkg/types"
)

type Service struct {
	cfg      *cfgpkg.Config
	log      *zap.SugaredLogger
	db       *gorm.DB
	gateway  billing.Gateway
	pharmacy pharmacy.Client
	locker   *platformdb.AdvisoryLocker
}

func NewService(
	cfg *cfgpkg.Config,
	log *zap.SugaredLogger,
	gdb *gorm.DB,
	gateway billing.Gateway,
	pharmacyClient pharmacy.Client,
	locker *platformdb.AdvisoryLocker,
) Engine {
	return &Service{cfg: cfg, log: log, db: gdb, gateway: gateway, pharmacy: pharmacyClient, locker: locker}
}

// TriggerRefillForSubscriptionPayment creates the next refill item for the
// subscription unless one is already in flight. When the refill date has
// already arrived (fresh purchase, resume past the due date) the item skips
// straight past payment; otherwise it waits in scheduled for the sweep.
func (s *Service) TriggerRefillForSubscriptionPayment(ctx context.Context, subscriptionID string) error {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).Where("id = ?", subscriptionID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: subscription %s", ErrNotFound, subscriptionID)
		}
		return fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub.Status == types.SubscriptionStatusCanceled {
		return fmt.Errorf("%w: subscription is canceled", ErrValidation)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One active item per subscription, checked before insert.
		var active int64
		err := tx.Model(&models.RefillQueueItem{}).
			Where("subscription_id = ? AND status IN ?", sub.ID, types.ActiveRefillStatuses()).
			Count(&active).Error
		if err != nil {
			return fmt.Errorf("failed to check active refill items: %w", err)
		}
		if active > 0 {
			logctx.FromCtx(ctx, s.log).Infow("refill item already in flight, skipping",
				"subscription_id", sub.ID)
			return nil
		}

		now := time.Now()
		item := s.newItemForSubscription(&sub, now)
		if !item.NextRefillDate.After(now) {
			// Payment already captured with the triggering event.
			item.Status = s.statusAfterPayment(sub.ClinicID)
			item.PaymentVerified = true
			item.PaymentVerifiedAt = &now
		}

		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("failed to create refill item: %w", err)
		}
		logctx.FromCtx(ctx, s.log).Infow("refill item scheduled",
			"subscription_id", sub.ID, "item_id", item.ID,
			"status", item.Status, "next_refill_date", item.NextRefillDate)
		return nil
	})
}

// newItemForSubscription builds the next cycle's item. The refill date is the
// last dispensation plus the refill interval, or now for the first cycle.
func (s *Service) newItemForSubscription(sub *models.Subscription, now time.Time) *models.RefillQueueItem {
	next := now
	var last models.RefillQueueItem
	err := s.db.Where("subscription_id = ? AND last_refill_date IS NOT NULL", sub.ID).
		Order("last_refill_date desc").
		First(&last).Error
	if err == nil && last.LastRefillDate != nil {
		next = last.LastRefillDate.AddDate(0, 0, sub.RefillIntervalDays)
	}

	return &models.RefillQueueItem{
		ID:                 tool.GenerateUUIDV7(),
		ClinicID:           sub.ClinicID,
		PatientID:          sub.PatientID,
		SubscriptionID:     sub.ID,
		Status:             types.RefillStatusScheduled,
		VialCount:          sub.VialCount,
		RefillIntervalDays: sub.RefillIntervalDays,
		NextRefillDate:     next,
		MedicationName:     sub.MedicationName,
		MedicationStrength: sub.MedicationStrength,
		MedicationForm:     sub.MedicationForm,
	}
}

// statusAfterPayment is the checkpoint a paid item lands on: the admin gate
// when the clinic has one, approved otherwise.
func (s *Service) statusAfterPayment(clinicID string) types.RefillStatus {
	if s.cfg.RequiresAdminApproval(clinicID) {
		return types.RefillStatusPendingAdmin
	}
	return types.RefillStatusApproved
}

// AdminApprove moves a pending-admin item to approved with the reviewer's
// notes.
func (s *Service) AdminApprove(ctx context.Context, req *AdminDecisionRequest) (*models.RefillQueueItem, error) {
	item, err := s.loadItem(ctx, req.ClinicID, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Status != types.RefillStatusPendingAdmin {
		return nil, fmt.Errorf("%w: item is %s, expected %s", ErrValidation, item.Status, types.RefillStatusPendingAdmin)
	}

	now := time.Now()
	item.Status = types.RefillStatusApproved
	item.AdminApproved = true
	item.AdminApprovedAt = &now
	item.AdminNotes = req.Notes
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, fmt.Errorf("failed to approve refill item: %w", err)
	}
	return item, nil
}

// HoldItem parks any active item.
func (s *Service) HoldItem(ctx context.Context, req *AdminDecisionRequest) (*models.RefillQueueItem, error) {
	return s.overrideItem(ctx, req, types.RefillStatusOnHold)
}

// CancelItem force-cancels any active or held item.
func (s *Service) CancelItem(ctx context.Context, req *AdminDecisionRequest) (*models.RefillQueueItem, error) {
	return s.overrideItem(ctx, req, types.RefillStatusCancelled)
}

func (s *Service) overrideItem(ctx context.Context, req *AdminDecisionRequest, to types.RefillStatus) (*models.RefillQueueItem, error) {
	item, err := s.loadItem(ctx, req.ClinicID, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Status.IsTerminal() || item.Status == to {
		return nil, fmt.Errorf("%w: item is %s and cannot be moved to %s", ErrValidation, item.Status, to)
	}

	item.Status = to
	if req.Notes != "" {
		item.AdminNotes = req.Notes
	}
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, fmt.Errorf("failed to update refill item: %w", err)
	}
	return item, nil
}

// ReleaseHold reinstates a held item: back to the admin gate when payment was
// already captured, back to scheduled otherwise. Refused while the
// subscription has another live item, which keeps one item in flight per
// subscription.
func (s *Service) ReleaseHold(ctx context.Context, req *AdminDecisionRequest) (*models.RefillQueueItem, error) {
	item, err := s.loadItem(ctx, req.ClinicID, req.ItemID)
	if err != nil {
		return nil, err
	}

	to := types.RefillStatusScheduled
	if item.PaymentVerified {
		to = types.RefillStatusPendingAdmin
	}
	if !item.Status.CanAdvanceTo(to) {
		return nil, fmt.Errorf("%w: item is %s and cannot be released to %s", ErrValidation, item.Status, to)
	}

	var active int64
	err = s.db.WithContext(ctx).Model(&models.RefillQueueItem{}).
		Where("subscription_id = ? AND id <> ? AND status IN ?",
			item.SubscriptionID, item.ID, types.ActiveRefillStatuses()).
		Count(&active).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check active refill items: %w", err)
	}
	if active > 0 {
		return nil, fmt.Errorf("%w: subscription already has an item in flight", ErrValidation)
	}

	item.Status = to
	if req.Notes != "" {
		item.AdminNotes = req.Notes
	}
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, fmt.Errorf("failed to release refill item: %w", err)
	}
	return item, nil
}

// PrescribeAndDispatch runs the provider checkpoint: the approved item is
// queued for the provider, handed to the pharmacy, and on success marked
// dispensed with the fulfillment order linked back. The next cycle's item is
// scheduled right after.
func (s *Service) PrescribeAndDispatch(ctx context.Context, req *PrescribeRequest) (*models.RefillQueueItem, error) {
	item, err := s.loadItem(ctx, req.ClinicID, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.Status.CanAdvanceTo(types.RefillStatusPendingProvider) {
		return nil, fmt.Errorf("%w: item is %s, expected %s", ErrValidation, item.Status, types.RefillStatusApproved)
	}

	now := time.Now()
	item.Status = types.RefillStatusPendingProvider
	item.ProviderQueuedAt = &now
	item.PrescribedAt = &now
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, fmt.Errorf("failed to queue refill item for provider: %w", err)
	}

	orderID, err := s.pharmacy.SubmitOrder(ctx, &pharmacy.HandoffRequest{
		ClinicID:           item.ClinicID,
		PatientID:          item.PatientID,
		MedicationName:     item.MedicationName,
		MedicationStrength: item.MedicationStrength,
		MedicationForm:     item.MedicationForm,
		VialCount:          item.VialCount,
	})
	if err != nil {
		// Item stays pending-provider for a retry; the order was not placed.
		return nil, err
	}

	dispensedAt := time.Now()
	item.OrderID = &orderID
	item.Status = types.RefillStatusDispensed
	item.LastRefillDate = &dispensedAt
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, fmt.Errorf("failed to mark refill item dispensed: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("refill dispensed",
		"item_id", item.ID, "subscription_id", item.SubscriptionID, "order_id", orderID)
	itemsDispensed.Inc()

	// Queue the next cycle; the fresh dispensation makes it a future-dated
	// scheduled item.
	if err := s.TriggerRefillForSubscriptionPayment(ctx, item.SubscriptionID); err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to schedule next refill cycle: %v", err)
	}
	return item, nil
}

// HoldActiveItems moves every active item of the subscription to on-hold,
// used when the subscription pauses.
func (s *Service) HoldActiveItems(ctx context.Context, subscriptionID, note string) error {
	return s.overrideItems(ctx, subscriptionID, types.ActiveRefillStatuses(), types.RefillStatusOnHold, note)
}

// CancelActiveItems terminates every non-terminal item of the subscription,
// held ones included, used on immediate cancel.
func (s *Service) CancelActiveItems(ctx context.Context, subscriptionID, note string) error {
	statuses := append(types.ActiveRefillStatuses(), types.RefillStatusOnHold)
	return s.overrideItems(ctx, subscriptionID, statuses, types.RefillStatusCancelled, note)
}

func (s *Service) overrideItems(ctx context.Context, subscriptionID string, from []types.RefillStatus, to types.RefillStatus, note string) error {
	err := s.db.WithContext(ctx).Model(&models.RefillQueueItem{}).
		Where("subscription_id = ? AND status IN ?", subscriptionID, from).
		Updates(map[string]interface{}{"status": to, "admin_notes": note}).Error
	if err != nil {
		return fmt.Errorf("failed to move refill items to %s: %w", to, err)
	}
	return nil
}

func (s *Service) loadItem(ctx context.Context, clinicID, itemID string) (*models.RefillQueueItem, error) {
	var item models.RefillQueueItem
	err := s.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, itemID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load refill item: %w", err)
	}
	return &item, nil
}
