package refillqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"

	"github.com/glowclinic/refillhub/internal/models"
	"github.com/glowclinic/refillhub/pkg/types"
)

// filtersAnd combines admin-supplied CommonFilters into one expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// GetAdminRefillQueue is the read-only projection behind the admin queue
// page: clinic-scoped, filterable by patient, status set and due-date bounds.
func (s *Service) GetAdminRefillQueue(ctx context.Context, req *QueueQuery) (*QueueResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrValidation)
	}
	if req.ClinicID == "" {
		return nil, fmt.Errorf("%w: clinic_id is required", ErrValidation)
	}
	if req.Size <= 0 {
		req.Size = 20
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.RefillQueueItem{}).
		Where("clinic_id = ?", req.ClinicID)
	if req.PatientID != "" {
		tx = tx.Where("patient_id = ?", req.PatientID)
	}
	if len(req.Statuses) > 0 {
		tx = tx.Where("status IN ?", req.Statuses)
	}
	if req.DueAfter != nil {
		tx = tx.Where("next_refill_date >= ?", *req.DueAfter)
	}
	if req.DueBefore != nil {
		tx = tx.Where("next_refill_date <= ?", *req.DueBefore)
	}
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count refill items: %w", err)
	}

	var rows []*models.RefillQueueItem
	q := tx.Order("next_refill_date asc").Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list refill items: %w", err)
	}

	return &QueueResult{Items: rows, Total: total}, nil
}

type statusCount struct {
	Status types.RefillStatus `gorm:"column:status"`
	Count  int64              `gorm:"column:count"`
}

// GetRefillQueueStats aggregates item counts per status plus how many
// scheduled items are already due.
func (s *Service) GetRefillQueueStats(ctx context.Context, clinicID string) (*QueueStats, error) {
	if clinicID == "" {
		return nil, fmt.Errorf("%w: clinic_id is required", ErrValidation)
	}

	var counts []statusCount
	err := s.db.WithContext(ctx).Model(&models.RefillQueueItem{}).
		Select("status, count(*) as count").
		Where("clinic_id = ?", clinicID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate refill stats: %w", err)
	}

	// The due backlog is what the next sweep would pick up, including items
	// waiting on a charge retry.
	var dueNow int64
	err = s.db.WithContext(ctx).Model(&models.RefillQueueItem{}).
		Where("clinic_id = ? AND status IN ? AND next_refill_date <= ?",
			clinicID, []types.RefillStatus{types.RefillStatusScheduled, types.RefillStatusPendingPayment}, time.Now()).
		Count(&dueNow).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count due refill items: %w", err)
	}

	stats := &QueueStats{
		ClinicID: clinicID,
		ByStatus: lo.SliceToMap(counts, func(c statusCount) (types.RefillStatus, int64) {
			return c.Status, c.Count
		}),
		Total:  lo.SumBy(counts, func(c statusCount) int64 { return c.Count }),
		DueNow: dueNow,
	}
	return stats, nil
}

// guard: Service must keep satisfying Engine.
var _ Engine = (*Service)(nil)
