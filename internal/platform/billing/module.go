package billing

import "go.uber.org/fx"

// Module exposes the Stripe-backed billing gateway via Fx.
var Module = fx.Options(
	fx.Provide(NewStripeGateway),
)
