package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/hubreport/pkg/config"
)

// Setup installs a global tracer provider exporting to cfg.Endpoint over OTLP/HTTP.
// With no endpoint it registers nothing and returns a no-op shutdown; spans
// then go to the default no-op provider.
func Setup(ctx context.Context, cfg cfgpkg.OtelConfig) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if cfg.Endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return noop, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

func register(lc fx.Lifecycle, cfg *cfgpkg.Config, log *zap.SugaredLogger) {
	shutdown := func(context.Context) error { return nil }
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			fn, err := Setup(ctx, cfg.Otel)
			if err != nil {
				return err
			}
			shutdown = fn
			if cfg.Otel.Endpoint != "" {
				log.Infow("tracing enabled", "endpoint", cfg.Otel.Endpoint, "service", cfg.Otel.ServiceName)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error { return shutdown(ctx) },
	})
}

var Module = fx.Options(
	fx.Invoke(register),
)
