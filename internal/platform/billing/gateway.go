package billing

import (
	"context"
	"errors"
	"time"

	"github.com/glowclinic/refillhub/pkg/types"
)

// ErrRemoteGateway marks any failure talking to the billing provider.
// Callers decide whether the failure aborts the operation (pause/resume/
// cancel) or degrades it (create).
var ErrRemoteGateway = errors.New("billing provider request failed")

// CreateSubscriptionRequest carries everything needed to open a recurring
// billing agreement at the provider, scoped to one clinic's account.
type CreateSubscriptionRequest struct {
	ClinicID         string
	CustomerRef      string
	PaymentMethodRef string
	PlanID           string
	PlanName         string
	AmountMinor      int64
	Currency         string
	Interval         types.BillingInterval
	IntervalCount    int
	SubscriptionID   string
}

// ChargeRequest is an off-session charge against a saved payment method,
// used by the refill sweep.
type ChargeRequest struct {
	ClinicID         string
	CustomerRef      string
	PaymentMethodRef string
	AmountMinor      int64
	Currency         string
	SubscriptionID   string
	RefillItemID     string
}

// Gateway wraps the external billing provider's subscription operations.
// Every call resolves the correct provider account from the clinic id.
type Gateway interface {
	// CreateSubscription opens a remote subscription and returns its id.
	CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (string, error)
	// PauseCollection stops billing on the remote subscription; resumeAt, if
	// set, schedules automatic resumption.
	PauseCollection(ctx context.Context, clinicID, remoteID string, resumeAt *time.Time) error
	// ResumeCollection clears a pause.
	ResumeCollection(ctx context.Context, clinicID, remoteID string) error
	// CancelAtPeriodEnd flags the remote subscription to end when the current
	// period elapses; billing continues until then.
	CancelAtPeriodEnd(ctx context.Context, clinicID, remoteID string) error
	// CancelNow cancels the remote subscription immediately.
	CancelNow(ctx context.Context, clinicID, remoteID string) error
	// ChargeSavedPaymentMethod confirms an off-session charge and returns the
	// provider's charge reference.
	ChargeSavedPaymentMethod(ctx context.Context, req *ChargeRequest) (string, error)
}
