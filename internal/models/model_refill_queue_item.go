package models

import (
	"time"

	"github.com/glowclinic/refillhub/pkg/types"
)

// RefillQueueItem is one scheduled dispensation cycle progressing through the
// payment, admin and clinical checkpoints. At most one item in an active
// status exists per subscription at any time.
type RefillQueueItem struct {
	ID             string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ClinicID       string `gorm:"column:clinic_id;type:varchar(64);not null;index" json:"clinic_id"`
	PatientID      string `gorm:"column:patient_id;type:varchar(64);not null;index" json:"patient_id"`
	SubscriptionID string `gorm:"column:subscription_id;type:uuid;not null;index" json:"subscription_id"`

	Status types.RefillStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`

	VialCount          int        `gorm:"column:vial_count;type:int;not null" json:"vial_count"`
	RefillIntervalDays int        `gorm:"column:refill_interval_days;type:int;not null" json:"refill_interval_days"`
	NextRefillDate     time.Time  `gorm:"column:next_refill_date;not null;index" json:"next_refill_date"`
	LastRefillDate     *time.Time `gorm:"column:last_refill_date;default:null" json:"last_refill_date"`

	PaymentVerified   bool       `gorm:"column:payment_verified;not null;default:false" json:"payment_verified"`
	PaymentVerifiedAt *time.Time `gorm:"column:payment_verified_at;default:null" json:"payment_verified_at"`
	AdminApproved     bool       `gorm:"column:admin_approved;not null;default:false" json:"admin_approved"`
	AdminApprovedAt   *time.Time `gorm:"column:admin_approved_at;default:null" json:"admin_approved_at"`
	AdminNotes        string     `gorm:"column:admin_notes;type:text" json:"admin_notes"`
	ProviderQueuedAt  *time.Time `gorm:"column:provider_queued_at;default:null" json:"provider_queued_at"`
	PrescribedAt      *time.Time `gorm:"column:prescribed_at;default:null" json:"prescribed_at"`

	// OrderID is the pharmacy fulfillment order reference, set at handoff.
	OrderID *string `gorm:"column:order_id;type:varchar(128);default:null" json:"order_id"`

	RequestedEarly bool   `gorm:"column:requested_early;not null;default:false" json:"requested_early"`
	PatientNotes   string `gorm:"column:patient_notes;type:text" json:"patient_notes"`

	MedicationName     string `gorm:"column:medication_name;type:varchar(128)" json:"medication_name"`
	MedicationStrength string `gorm:"column:medication_strength;type:varchar(64)" json:"medication_strength"`
	MedicationForm     string `gorm:"column:medication_form;type:varchar(64)" json:"medication_form"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RefillQueueItem) TableName() string {
	return "refill_queue_item"
}

// Due reports whether a scheduled item's refill date has elapsed at now.
func (i *RefillQueueItem) Due(now time.Time) bool {
	return i != nil && i.Status == types.RefillStatusScheduled && !i.NextRefillDate.After(now)
}
