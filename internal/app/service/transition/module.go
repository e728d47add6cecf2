package transition

import "go.uber.org/fx"

// Module exposes the transition engine via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
