package models

import (
	"time"

	"github.com/glowclinic/refillhub/pkg/types"
)

// SubscriptionAction is the append-only audit record of a lifecycle
// transition. Exactly one row is written per successful transition, on a
// best-effort basis; rows are immutable once written.
type SubscriptionAction struct {
	ID             string                       `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ClinicID       string                       `gorm:"column:clinic_id;type:varchar(64);not null;index" json:"clinic_id"`
	SubscriptionID string                       `gorm:"column:subscription_id;type:uuid;not null;index:idx_action_sub_created,priority:1" json:"subscription_id"`
	ActionType     types.SubscriptionActionType `gorm:"column:action_type;type:varchar(32);not null" json:"action_type"`
	Reason         string                       `gorm:"column:reason;type:text" json:"reason"`
	PausedUntil    *time.Time                   `gorm:"column:paused_until;default:null" json:"paused_until"`

	// Plan change fields, populated when a future plan-change flow lands.
	PreviousPlanID *string `gorm:"column:previous_plan_id;type:varchar(64);default:null" json:"previous_plan_id"`
	NewPlanID      *string `gorm:"column:new_plan_id;type:varchar(64);default:null" json:"new_plan_id"`
	PreviousAmount *int64  `gorm:"column:previous_amount;type:bigint;default:null" json:"previous_amount"`
	NewAmount      *int64  `gorm:"column:new_amount;type:bigint;default:null" json:"new_amount"`

	CancellationReason string `gorm:"column:cancellation_reason;type:text" json:"cancellation_reason"`

	CreatedAt time.Time `gorm:"column:created_at;index:idx_action_sub_created,priority:2,sort:desc" json:"created_at"`
}

func (SubscriptionAction) TableName() string {
	return "subscription_action"
}
