package pharmacy

import "go.uber.org/fx"

// Module exposes the pharmacy handoff client via Fx.
var Module = fx.Options(
	fx.Provide(NewClient),
)
