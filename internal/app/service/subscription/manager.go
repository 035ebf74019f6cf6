package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/glowclinic/refillhub/internal/models"
	"github.com/glowclinic/refillhub/pkg/types"
)

var (
	// ErrValidation marks precondition failures: bad input, illegal state
	// transitions, double-cancel. Nothing was mutated.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing or out-of-tenant subscription.
	ErrNotFound = errors.New("subscription not found")
)

type CreateSubscriptionRequest struct {
	ClinicID  string `json:"clinic_id"`
	PatientID string `json:"patient_id"`

	PlanID        string                `json:"plan_id"`
	PlanName      string                `json:"plan_name"`
	AmountMinor   int64                 `json:"amount_minor"`
	Currency      string                `json:"currency"`
	Interval      types.BillingInterval `json:"interval"`
	IntervalCount int                   `json:"interval_count"`

	VialCount          int `json:"vial_count"`
	RefillIntervalDays int `json:"refill_interval_days"`

	MedicationName     string `json:"medication_name"`
	MedicationStrength string `json:"medication_strength"`
	MedicationForm     string `json:"medication_form"`

	BillingCustomerRef string `json:"billing_customer_ref"`
	// PaymentMethodRef is an optional saved payment method at the provider.
	PaymentMethodRef string `json:"payment_method_ref"`
}

// CreateSubscriptionResult reports the local row plus the outcome of the
// remote billing leg. BillingSynced=false means the enrollment exists
// locally but needs reconciliation.
type CreateSubscriptionResult struct {
	Subscription  *models.Subscription `json:"subscription"`
	BillingSynced bool                 `json:"billing_synced"`
	SyncError     string               `json:"sync_error,omitempty"`
}

type PauseSubscriptionRequest struct {
	ClinicID       string     `json:"clinic_id"`
	SubscriptionID string     `json:"subscription_id"`
	Reason         string     `json:"reason"`
	ResumeAt       *time.Time `json:"resume_at"`
}

type ResumeSubscriptionRequest struct {
	ClinicID       string `json:"clinic_id"`
	SubscriptionID string `json:"subscription_id"`
	Reason         string `json:"reason"`
}

type CancelSubscriptionRequest struct {
	ClinicID       string `json:"clinic_id"`
	SubscriptionID string `json:"subscription_id"`
	Reason         string `json:"reason"`
	// CancelAtPeriodEnd selects the soft mode: the remote subscription is
	// flagged to end when the period elapses and local status is untouched.
	CancelAtPeriodEnd bool `json:"cancel_at_period_end"`
}

// ReconcileResult summarizes a billing-sync reconciliation sweep.
type ReconcileResult struct {
	Processed int      `json:"processed"`
	Errors    []string `json:"errors"`
	Skipped   bool     `json:"skipped,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

// Manager orchestrates the subscription lifecycle: it is the only writer of
// Subscription rows and keeps them consistent with the billing provider.
type Manager interface {
	CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*CreateSubscriptionResult, error)
	PauseSubscription(ctx context.Context, req *PauseSubscriptionRequest) (*models.Subscription, error)
	ResumeSubscription(ctx context.Context, req *ResumeSubscriptionRequest) (*models.Subscription, error)
	CancelSubscription(ctx context.Context, req *CancelSubscriptionRequest) (*models.Subscription, error)
	// ListActions returns the audit trail, newest first.
	ListActions(ctx context.Context, clinicID, subscriptionID string) ([]*models.SubscriptionAction, error)
	// ReconcileBillingSync retries the remote leg for rows whose create never
	// reached the provider.
	ReconcileBillingSync(ctx context.Context, clinicID string) (*ReconcileResult, error)
}

// RefillScheduler is the queue engine capability the lifecycle manager
// depends on, injected at construction to keep the packages decoupled.
type RefillScheduler interface {
	// TriggerRefillForSubscriptionPayment schedules one refill item for the
	// subscription if no active item exists. Idempotent.
	TriggerRefillForSubscriptionPayment(ctx context.Context, subscriptionID string) error
	// HoldActiveItems moves every active item of the subscription to on-hold.
	HoldActiveItems(ctx context.Context, subscriptionID, note string) error
	// CancelActiveItems force-cancels every active item of the subscription.
	CancelActiveItems(ctx context.Context, subscriptionID, note string) error
}
