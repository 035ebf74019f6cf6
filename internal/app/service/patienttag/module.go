package patienttag

import "go.uber.org/fx"

// Module exposes the patient tagging service via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
