package crawl

import (
	"context"

	"go.uber.org/fx"
)

// seedOnStart makes the configured hubs exist before anything crawls them.
func seedOnStart(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return s.SeedHubs(ctx) },
	})
}

// Module exposes the crawl driver via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Invoke(seedOnStart),
)
