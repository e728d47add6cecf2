package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/hubreport/internal/app/api/server"
	"github.com/fatflowers/hubreport/internal/app/service/aggregation"
	"github.com/fatflowers/hubreport/internal/app/service/crawl"
	"github.com/fatflowers/hubreport/internal/app/service/crawl_log"
	"github.com/fatflowers/hubreport/internal/app/service/report"
	"github.com/fatflowers/hubreport/internal/app/service/statistics"
	"github.com/fatflowers/hubreport/internal/app/service/transition"
	"github.com/fatflowers/hubreport/internal/platform/cache"
	"github.com/fatflowers/hubreport/internal/platform/cobot"
	"github.com/fatflowers/hubreport/internal/platform/db"
	"github.com/fatflowers/hubreport/internal/platform/otel"
	"github.com/fatflowers/hubreport/pkg/config"
	"github.com/fatflowers/hubreport/pkg/logger"
	"github.com/fatflowers/hubreport/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// Core is everything but the HTTP server: storage, the Cobot source and the
// two engines with their drivers. Batch commands run on Core alone.
var Core = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	otel.Module,
	metrics.Module,
	cobot.Module,
	transition.Module,
	aggregation.Module,
	crawl_log.Module,
	crawl.Module,
	report.Module,
)

var Module = fx.Options(
	Core,
	statistics.Module,
	cache.Module,
	server.Module,
)
