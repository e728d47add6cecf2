package logctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRun_AttachesRunID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core).Sugar()

	ctx := WithRun(context.Background(), base, "run-1", "hub", "berlin")
	FromCtx(ctx, base).Infow("hello")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "run-1", fields["run_id"])
		assert.Equal(t, "berlin", fields["hub"])
	}
	assert.Equal(t, "run-1", TraceID(ctx))
}

func TestFromCtx_FallsBackToBase(t *testing.T) {
	base := zap.NewNop().Sugar()
	assert.Same(t, base, FromCtx(context.Background(), base))
	assert.Equal(t, "", TraceID(context.Background()))

	ctx := context.WithValue(context.Background(), "traceID", "t-1")
	assert.Equal(t, "t-1", TraceID(ctx))
}
