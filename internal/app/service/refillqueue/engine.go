package refillqueue

import (
	"context"
	"errors"
	"time"

	"github.com/glowclinic/refillhub/internal/models"
	"github.com/glowclinic/refillhub/pkg/types"
)

var (
	// ErrValidation marks precondition failures on queue operations.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing or out-of-tenant queue item.
	ErrNotFound = errors.New("refill queue item not found")
)

// SweepResult is what a batch sweep returns: processed count plus per-item
// failures, or skipped when another instance held the lock.
type SweepResult struct {
	Processed int      `json:"processed"`
	Errors    []string `json:"errors"`
	Skipped   bool     `json:"skipped,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

// QueueQuery filters the admin refill queue projection.
type QueueQuery struct {
	ClinicID  string                `json:"clinic_id"`
	PatientID string                `json:"patient_id"`
	Statuses  []types.RefillStatus  `json:"statuses"`
	DueAfter  *time.Time            `json:"due_after"`
	DueBefore *time.Time            `json:"due_before"`
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
}

type QueueResult struct {
	Items []*models.RefillQueueItem `json:"items"`
	Total int64                     `json:"total"`
}

// QueueStats aggregates item counts per status for a clinic.
type QueueStats struct {
	ClinicID string                       `json:"clinic_id"`
	ByStatus map[types.RefillStatus]int64 `json:"by_status"`
	Total    int64                        `json:"total"`
	DueNow   int64                        `json:"due_now"`
}

type AdminDecisionRequest struct {
	ClinicID string `json:"clinic_id"`
	ItemID   string `json:"item_id"`
	Notes    string `json:"notes"`
}

type PrescribeRequest struct {
	ClinicID string `json:"clinic_id"`
	ItemID   string `json:"item_id"`
}

// Engine derives and advances refill work items from subscription events and
// elapsed time. It is invoked synchronously on lifecycle events and
// periodically via the batch sweep.
type Engine interface {
	// TriggerRefillForSubscriptionPayment schedules the next refill item for
	// a subscription. Idempotent: a subscription with an active item is left
	// untouched.
	TriggerRefillForSubscriptionPayment(ctx context.Context, subscriptionID string) error
	// ProcessDueRefills charges and advances every scheduled item whose
	// refill date elapsed, isolating per-item failures.
	ProcessDueRefills(ctx context.Context, clinicID string) (*SweepResult, error)
	// GetAdminRefillQueue is the filtered admin projection.
	GetAdminRefillQueue(ctx context.Context, req *QueueQuery) (*QueueResult, error)
	// GetRefillQueueStats returns status-count aggregates for a clinic.
	GetRefillQueueStats(ctx context.Context, clinicID string) (*QueueStats, error)
	// AdminApprove moves a pending-admin item to approved.
	AdminApprove(ctx context.Context, req *AdminDecisionRequest) (*models.RefillQueueItem, error)
	// HoldItem moves any active item to on-hold.
	HoldItem(ctx context.Context, req *AdminDecisionRequest) (*models.RefillQueueItem, error)
	// CancelItem force-cancels any active or held item.
	CancelItem(ctx context.Context, req *AdminDecisionRequest) (*models.RefillQueueItem, error)
	// ReleaseHold reinstates a held item into the flow.
	ReleaseHold(ctx context.Context, req *AdminDecisionRequest) (*models.RefillQueueItem, error)
	// PrescribeAndDispatch performs the provider approval and pharmacy
	// handoff for an approved item, then schedules the next cycle.
	PrescribeAndDispatch(ctx context.Context, req *PrescribeRequest) (*models.RefillQueueItem, error)
	// HoldActiveItems parks every active item of a subscription (pause).
	HoldActiveItems(ctx context.Context, subscriptionID, note string) error
	// CancelActiveItems terminates every active item of a subscription
	// (immediate cancel).
	CancelActiveItems(ctx context.Context, subscriptionID, note string) error
}
