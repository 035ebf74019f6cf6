package patienttag

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/glowclinic/refillhub/internal/models"
	"github.com/glowclinic/refillhub/pkg/logctx"
	"github.com/glowclinic/refillhub/pkg/tool"
	"github.com/glowclinic/refillhub/pkg/types"
)

// Service maintains labels on patient profiles. Tag writes are best-effort
// from the lifecycle flow and never fail the caller.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Tag adds a tag to a patient profile, ignoring duplicates.
func (s *Service) Tag(ctx context.Context, clinicID, patientID, tag string) error {
	row := &models.PatientTag{
		ID:        tool.GenerateUUIDV7(),
		ClinicID:  clinicID,
		PatientID: patientID,
		Tag:       tag,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to tag patient: %w", err)
	}
	return nil
}

// Untag removes a tag from a patient profile. Missing tags are not an error.
func (s *Service) Untag(ctx context.Context, clinicID, patientID, tag string) error {
	err := s.db.WithContext(ctx).
		Where("clinic_id = ? AND patient_id = ? AND tag = ?", clinicID, patientID, tag).
		Delete(&models.PatientTag{}).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to untag patient: %w", err)
	}
	return nil
}

// UntagUnlessOtherActive drops the active-subscription tag only when the
// patient holds no other active subscription in the clinic.
func (s *Service) UntagUnlessOtherActive(ctx context.Context, clinicID, patientID, excludeSubscriptionID string) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("clinic_id = ? AND patient_id = ? AND status = ? AND id <> ?",
			clinicID, patientID, types.SubscriptionStatusActive, excludeSubscriptionID).
		Count(&count).Error
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to count active subscriptions for untag: %v", err)
		return
	}
	if count > 0 {
		return
	}
	if err := s.Untag(ctx, clinicID, patientID, models.TagActiveSubscription); err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to remove active-subscription tag: %v", err)
	}
}
