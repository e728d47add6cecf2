package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fatflowers/hubreport/docs"
	"github.com/fatflowers/hubreport/internal/app/api/handlers"
	"github.com/fatflowers/hubreport/internal/app/service/crawl"
	"github.com/fatflowers/hubreport/internal/app/service/report"
	"github.com/fatflowers/hubreport/internal/app/service/statistics"
	"github.com/fatflowers/hubreport/internal/platform/cache"
	cfgpkg "github.com/fatflowers/hubreport/pkg/config"

	mw "github.com/fatflowers/hubreport/internal/app/api/middleware"

	metrics "github.com/fatflowers/hubreport/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newEngine(cfg *cfgpkg.Config) *gin.Engine {
	if cfg.Env == cfgpkg.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

// routeDeps bundles what registerRoutes needs beyond the engine.
type routeDeps struct {
	cfg     *cfgpkg.Config
	log     *zap.SugaredLogger
	db      *gorm.DB
	crawler *crawl.Service
	reports *report.Service
	stats   *statistics.Service
	cache   *cache.ResponseCache
}

func newRouteDeps(cfg *cfgpkg.Config, log *zap.SugaredLogger, db *gorm.DB, crawler *crawl.Service, reports *report.Service, stats *statistics.Service, rc *cache.ResponseCache) *routeDeps {
	return &routeDeps{cfg: cfg, log: log, db: db, crawler: crawler, reports: reports, stats: stats, cache: rc}
}

func registerRoutes(lc fx.Lifecycle, r *gin.Engine, d *routeDeps) error {
	// Prometheus metrics
	if d.cfg.MetricsAddr != "" {
		p, err := metrics.NewPrometheus(metrics.NewPrometheusOptions{Logger: d.log})
		if err != nil {
			return fmt.Errorf("failed to register http metrics: %w", err)
		}
		p.Use(r, d.cfg.MetricsAddr)
		lc.Append(fx.Hook{OnStop: p.Shutdown})

		d.log.Infow("metrics started", "addr", d.cfg.MetricsAddr)
	}
	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(d.log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub, d.db)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Reporting API for dashboards
	handlers.RegisterReportRoutes(pub.Group("/api"), d.stats, d.cache, d.log)

	// Admin APIs behind the bearer token check
	admin := r.Group("/api/v1/admin")
	admin.Use(mw.RequestLoggerMiddleware(d.log), mw.AccessLogMiddleware(), mw.AdminAuthMiddleware(d.cfg.Admin.JWTSecret, d.log))
	handlers.RegisterAdminRoutes(admin, d.crawler, d.reports, d.stats, d.cache, d.log)
	return nil
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine, shutdowner fx.Shutdowner) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine, newRouteDeps),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
