package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	cfgpkg "github.com/glowclinic/refillhub/pkg/config"
	"github.com/glowclinic/refillhub/pkg/logctx"
)

// StripeGateway implements Gateway against Stripe. Each clinic bills through
// its own Stripe account, so clients are constructed per clinic from the
// configured secret keys and cached.
type StripeGateway struct {
	cfg *cfgpkg.Config
	log *zap.SugaredLogger

	mu      sync.Mutex
	clients map[string]*stripe.Client
}

func NewStripeGateway(cfg *cfgpkg.Config, log *zap.SugaredLogger) Gateway {
	return &StripeGateway{cfg: cfg, log: log, clients: make(map[string]*stripe.Client)}
}

func (g *StripeGateway) clientFor(clinicID string) (*stripe.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[clinicID]; ok {
		return c, nil
	}
	acct, err := g.cfg.GetClinicBillingAccount(clinicID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteGateway, err)
	}
	c := stripe.NewClient(acct.SecretKey, nil)
	g.clients[clinicID] = c
	return c, nil
}

func (g *StripeGateway) CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (string, error) {
	sc, err := g.clientFor(req.ClinicID)
	if err != nil {
		return "", err
	}

	unit, count := req.Interval.ToProviderInterval(req.IntervalCount)
	params := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(req.CustomerRef),
		Items: []*stripe.SubscriptionCreateItemParams{
			{
				PriceData: &stripe.SubscriptionCreateItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					Product:    stripe.String(req.PlanID),
					UnitAmount: stripe.Int64(req.AmountMinor),
					Recurring: &stripe.SubscriptionCreateItemPriceDataRecurringParams{
						Interval:      stripe.String(unit),
						IntervalCount: stripe.Int64(count),
					},
				},
			},
		},
		Metadata: map[string]string{
			"clinic_id":       req.ClinicID,
			"subscription_id": req.SubscriptionID,
			"plan_id":         req.PlanID,
		},
	}
	if req.PaymentMethodRef != "" {
		params.DefaultPaymentMethod = stripe.String(req.PaymentMethodRef)
	}

	sub, err := sc.V1Subscriptions.Create(ctx, params)
	if err != nil {
		return "", g.wrapErr(ctx, "create subscription", err)
	}
	logctx.FromCtx(ctx, g.log).Infow("remote subscription created",
		"clinic_id", req.ClinicID, "remote_id", sub.ID)
	return sub.ID, nil
}

func (g *StripeGateway) PauseCollection(ctx context.Context, clinicID, remoteID string, resumeAt *time.Time) error {
	sc, err := g.clientFor(clinicID)
	if err != nil {
		return err
	}

	pause := &stripe.SubscriptionUpdatePauseCollectionParams{
		Behavior: stripe.String("void"),
	}
	if resumeAt != nil {
		pause.ResumesAt = stripe.Int64(resumeAt.Unix())
	}
	_, err = sc.V1Subscriptions.Update(ctx, remoteID, &stripe.SubscriptionUpdateParams{PauseCollection: pause})
	if err != nil {
		return g.wrapErr(ctx, "pause collection", err)
	}
	return nil
}

func (g *StripeGateway) ResumeCollection(ctx context.Context, clinicID, remoteID string) error {
	sc, err := g.clientFor(clinicID)
	if err != nil {
		return err
	}

	// Unsetting pause_collection requires the empty-string extra, the struct
	// field cannot express "clear".
	params := &stripe.SubscriptionUpdateParams{}
	params.AddExtra("pause_collection", "")
	_, err = sc.V1Subscriptions.Update(ctx, remoteID, params)
	if err != nil {
		return g.wrapErr(ctx, "resume collection", err)
	}
	return nil
}

func (g *StripeGateway) CancelAtPeriodEnd(ctx context.Context, clinicID, remoteID string) error {
	sc, err := g.clientFor(clinicID)
	if err != nil {
		return err
	}

	_, err = sc.V1Subscriptions.Update(ctx, remoteID, &stripe.SubscriptionUpdateParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		return g.wrapErr(ctx, "cancel at period end", err)
	}
	return nil
}

func (g *StripeGateway) CancelNow(ctx context.Context, clinicID, remoteID string) error {
	sc, err := g.clientFor(clinicID)
	if err != nil {
		return err
	}

	_, err = sc.V1Subscriptions.Cancel(ctx, remoteID, &stripe.SubscriptionCancelParams{})
	if err != nil {
		return g.wrapErr(ctx, "cancel subscription", err)
	}
	return nil
}

func (g *StripeGateway) ChargeSavedPaymentMethod(ctx context.Context, req *ChargeRequest) (string, error) {
	sc, err := g.clientFor(req.ClinicID)
	if err != nil {
		return "", err
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:        stripe.Int64(req.AmountMinor),
		Currency:      stripe.String(req.Currency),
		Customer:      stripe.String(req.CustomerRef),
		PaymentMethod: stripe.String(req.PaymentMethodRef),
		OffSession:    stripe.Bool(true),
		Confirm:       stripe.Bool(true),
		Metadata: map[string]string{
			"clinic_id":       req.ClinicID,
			"subscription_id": req.SubscriptionID,
			"refill_item_id":  req.RefillItemID,
		},
	}
	// Re-running the sweep for the same item must not double-charge.
	params.SetIdempotencyKey(fmt.Sprintf("refill-charge-%s", req.RefillItemID))

	pi, err := sc.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return "", g.wrapErr(ctx, "charge saved payment method", err)
	}
	return pi.ID, nil
}

// wrapErr logs the full provider error and returns a sanitized one; raw
// Stripe errors can carry payment-instrument detail and never leave this
// package.
func (g *StripeGateway) wrapErr(ctx context.Context, op string, err error) error {
	if stripeErr, ok := err.(*stripe.Error); ok {
		logctx.FromCtx(ctx, g.log).Errorw("stripe call failed",
			"op", op, "code", stripeErr.Code, "type", stripeErr.Type, "request_id", stripeErr.RequestID)
		return fmt.Errorf("%w: %s (%s)", ErrRemoteGateway, op, stripeErr.Code)
	}
	logctx.FromCtx(ctx, g.log).Errorw("stripe call failed", "op", op, "err", err)
	return fmt.Errorf("%w: %s", ErrRemoteGateway, op)
}

// guard: StripeGateway must keep satisfying Gateway.
var _ Gateway = (*StripeGateway)(nil)
