package refillqueue

import (
	"go.uber.org/fx"

	"github.com/glowclinic/refillhub/internal/app/service/subscription"
)

// Module exposes the refill queue engine via Fx, also bound to the
// scheduler capability the lifecycle manager consumes.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(func(e Engine) subscription.RefillScheduler { return e }),
)
