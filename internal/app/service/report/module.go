package report

import "go.uber.org/fx"

// Module exposes the report driver via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
