package gormlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestShortCaller(t *testing.T) {
	assert.Equal(t, "internal/platform/db/db.go:38", shortCaller("/Users/alex/repo/internal/platform/db/db.go:38"))
	assert.Equal(t, "pkg/x/y.go:12", shortCaller(`C:\repo\project\pkg\x\y.go:12`))
	assert.Equal(t, "b/c/d.go:1", shortCaller("/a/b/c/d.go:1"))
	assert.Equal(t, "", shortCaller(""))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, ParseLevel("silent"))
	assert.Equal(t, gormlogger.Error, ParseLevel("ERROR"))
	assert.Equal(t, gormlogger.Info, ParseLevel(" info "))
	assert.Equal(t, gormlogger.Warn, ParseLevel("warn"))
	assert.Equal(t, gormlogger.Warn, ParseLevel("bogus"))
}

func TestTrace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := New(zap.New(core).Sugar(), gormlogger.Warn, 10*time.Millisecond)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 0, logs.Len(), "fast queries are not logged at warn")

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "not-found is ignored")

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	msgs := []string{}
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{"gorm_slow", "gorm_trace"}, msgs)

	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Equal(t, 2, logs.Len())
}
