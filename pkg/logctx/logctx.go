package logctx

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FromGin returns a request-scoped logger from gin.Context if present,
// otherwise returns the provided base logger.
func FromGin(c *gin.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return base
	}
	if l, ok := c.Get("logger"); ok {
		if lg, ok := l.(*zap.SugaredLogger); ok && lg != nil {
			return lg
		}
	}
	return FromCtx(c.Request.Context(), base)
}

// FromCtx returns a logger from context if set, otherwise attempts to enrich
// base with trace_id/run_id from context values.
func FromCtx(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return base
	}
	if lg, ok := ctx.Value("logger").(*zap.SugaredLogger); ok && lg != nil {
		return lg
	}
	var fields []interface{}
	if tid, ok := ctx.Value("traceID").(string); ok && tid != "" {
		fields = append(fields, "trace_id", tid)
	}
	if rid, ok := ctx.Value("runID").(string); ok && rid != "" {
		fields = append(fields, "run_id", rid)
	}
	if len(fields) > 0 {
		return base.With(fields...)
	}
	return base
}

// With stores l as the logger for everything downstream of ctx.
func With(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, "logger", l)
}

// WithRun tags ctx with a batch run id and attaches a logger carrying it.
func WithRun(ctx context.Context, base *zap.SugaredLogger, runID string, fields ...interface{}) context.Context {
	l := FromCtx(ctx, base).With(append([]interface{}{"run_id", runID}, fields...)...)
	return With(context.WithValue(ctx, "runID", runID), l)
}

// TraceID returns the request trace id or batch run id carried by ctx.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if tid, ok := ctx.Value("traceID").(string); ok && tid != "" {
		return tid
	}
	rid, _ := ctx.Value("runID").(string)
	return rid
}
