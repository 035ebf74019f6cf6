package models

import (
	"time"

	"github.com/glowclinic/refillhub/pkg/types"

	"gorm.io/datatypes"
)

// SubscriptionExtra is the closed set of auxiliary subscription data kept in
// the jsonb column: billing sync error detail and cancellation context.
type SubscriptionExtra struct {
	// SyncError holds the sanitized message from the last failed billing
	// provider call, cleared when reconciliation succeeds.
	SyncError string `json:"sync_error,omitempty"`
	// CancellationMode records whether the cancel was immediate or scheduled
	// for period end.
	CancellationMode types.CancellationMode `json:"cancellation_mode,omitempty"`
	// CancellationReason is the operator-supplied reason.
	CancellationReason string `json:"cancellation_reason,omitempty"`
}

// Subscription is a recurring billing + refill agreement between a patient
// and a clinic. Rows are never deleted; a canceled subscription stays for
// audit reads. Mutated only by the subscription lifecycle service.
type Subscription struct {
	ID        string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ClinicID  string `gorm:"column:clinic_id;type:varchar(64);not null;index:idx_sub_clinic_patient,priority:1" json:"clinic_id"`
	PatientID string `gorm:"column:patient_id;type:varchar(64);not null;index:idx_sub_clinic_patient,priority:2" json:"patient_id"`

	PlanID   string `gorm:"column:plan_id;type:varchar(64);not null" json:"plan_id"`
	PlanName string `gorm:"column:plan_name;type:varchar(128);not null" json:"plan_name"`
	// AmountMinor is the recurring charge in minor currency units.
	AmountMinor   int64                 `gorm:"column:amount_minor;type:bigint;not null" json:"amount_minor"`
	Currency      string                `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Interval      types.BillingInterval `gorm:"column:interval;type:varchar(16);not null" json:"interval"`
	IntervalCount int                   `gorm:"column:interval_count;type:int;not null;default:1" json:"interval_count"`

	Status types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`

	StartDate          time.Time  `gorm:"column:start_date;not null" json:"start_date"`
	CurrentPeriodStart time.Time  `gorm:"column:current_period_start;not null" json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `gorm:"column:current_period_end;not null" json:"current_period_end"`
	NextBillingDate    *time.Time `gorm:"column:next_billing_date;default:null" json:"next_billing_date"`
	PausedAt           *time.Time `gorm:"column:paused_at;default:null" json:"paused_at"`
	ResumeAt           *time.Time `gorm:"column:resume_at;default:null" json:"resume_at"`
	CanceledAt         *time.Time `gorm:"column:canceled_at;default:null" json:"canceled_at"`
	EndedAt            *time.Time `gorm:"column:ended_at;default:null" json:"ended_at"`

	VialCount          int `gorm:"column:vial_count;type:int;not null" json:"vial_count"`
	RefillIntervalDays int `gorm:"column:refill_interval_days;type:int;not null" json:"refill_interval_days"`

	MedicationName     string `gorm:"column:medication_name;type:varchar(128)" json:"medication_name"`
	MedicationStrength string `gorm:"column:medication_strength;type:varchar(64)" json:"medication_strength"`
	MedicationForm     string `gorm:"column:medication_form;type:varchar(64)" json:"medication_form"`

	// BillingCustomerRef and PaymentMethodRef identify the patient and saved
	// payment instrument at the billing provider.
	BillingCustomerRef string `gorm:"column:billing_customer_ref;type:varchar(128)" json:"billing_customer_ref"`
	PaymentMethodRef   string `gorm:"column:payment_method_ref;type:varchar(128)" json:"payment_method_ref"`
	// BillingProviderSubscriptionID is set once after the remote leg confirms
	// and never cleared.
	BillingProviderSubscriptionID *string                 `gorm:"column:billing_provider_subscription_id;type:varchar(128);default:null" json:"billing_provider_subscription_id"`
	BillingSyncStatus             types.BillingSyncStatus `gorm:"column:billing_sync_status;type:varchar(16);not null;default:'pending';index" json:"billing_sync_status"`

	Extra     datatypes.JSONType[*SubscriptionExtra] `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time                              `json:"created_at"`
	UpdatedAt time.Time                              `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// GetExtra never returns nil.
func (s *Subscription) GetExtra() *SubscriptionExtra {
	if s == nil || s.Extra.Data() == nil {
		return &SubscriptionExtra{}
	}
	return s.Extra.Data()
}

// SetExtra replaces the jsonb payload.
func (s *Subscription) SetExtra(e *SubscriptionExtra) {
	s.Extra = datatypes.NewJSONType(e)
}
