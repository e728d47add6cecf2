package aggregation

import "go.uber.org/fx"

// Module exposes the aggregation engine via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
