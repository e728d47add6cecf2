// Package cache keeps rendered GET responses of the reporting API in Redis.
// A cache without a Redis address is a no-op, so callers never branch on it.
package cache

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/hubreport/pkg/config"
	"github.com/fatflowers/hubreport/pkg/logctx"
)

const (
	keyPrefix = "hubreport:resp:"
	// skipKey marks a request whose response must not be stored.
	skipKey = "cache.skip"
)

type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

// New connects to Redis when cfg.Redis.Addr is set. An unreachable Redis is
// logged and yields the disabled cache; responses are then always rendered.
func New(cfg *cfgpkg.Config, log *zap.SugaredLogger) (*ResponseCache, error) {
	if cfg.Redis.Addr == "" {
		log.Infow("redis not configured, response cache disabled")
		return &ResponseCache{log: log}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		log.Warnw("redis unreachable, response cache disabled", "addr", cfg.Redis.Addr, "err", err)
		return &ResponseCache{log: log}, nil
	}
	log.Infow("connected to redis", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.ReportTTL)
	return NewWithClient(client, cfg.Redis.ReportTTL, log), nil
}

func NewWithClient(client *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *ResponseCache {
	return &ResponseCache{client: client, ttl: ttl, log: log}
}

func (c *ResponseCache) Enabled() bool { return c != nil && c.client != nil }

// Key is the request path plus its query with keys and values sorted, so
// parameter order does not split cache entries.
func Key(u *url.URL) string {
	q := u.Query()
	for k := range q {
		slices.Sort(q[k])
	}
	return keyPrefix + u.Path + "?" + q.Encode()
}

// NoStore keeps the current response out of the cache; handlers call it for
// error responses sent with HTTP 200.
func NoStore(c *gin.Context) { c.Set(skipKey, true) }

type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware serves cached GET responses and stores successful ones.
func (c *ResponseCache) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !c.Enabled() || ctx.Request.Method != http.MethodGet {
			ctx.Next()
			return
		}
		log := logctx.FromGin(ctx, c.log)
		key := Key(ctx.Request.URL)

		hit, err := c.client.HGetAll(ctx.Request.Context(), key).Result()
		if err != nil {
			log.Warnw("response cache read failed", "key", key, "err", err)
		} else if body, ok := hit["body"]; ok {
			status, _ := strconv.Atoi(hit["status"])
			if status == 0 {
				status = http.StatusOK
			}
			ctx.Header("X-Cache", "HIT")
			ctx.Data(status, hit["content_type"], []byte(body))
			ctx.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: ctx.Writer, body: &bytes.Buffer{}}
		ctx.Writer = w
		ctx.Header("X-Cache", "MISS")
		ctx.Next()

		if ctx.GetBool(skipKey) || w.Status() != http.StatusOK || len(ctx.Errors) > 0 {
			return
		}
		pipe := c.client.TxPipeline()
		pipe.HSet(ctx.Request.Context(), key,
			"status", w.Status(),
			"content_type", w.Header().Get("Content-Type"),
			"body", w.body.String(),
		)
		if c.ttl > 0 {
			pipe.Expire(ctx.Request.Context(), key, c.ttl)
		}
		if _, err := pipe.Exec(ctx.Request.Context()); err != nil {
			log.Warnw("response cache write failed", "key", key, "err", err)
		}
	}
}

// Flush drops every cached response. It runs after aggregation rewrites reports.
func (c *ResponseCache) Flush(ctx context.Context) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	var keys []string
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan cached responses: %w", err)
	}
	for chunk := range slices.Chunk(keys, 500) {
		if err := c.client.Del(ctx, chunk...).Err(); err != nil {
			return 0, fmt.Errorf("failed to flush cached responses: %w", err)
		}
	}
	logctx.FromCtx(ctx, c.log).Infow("response cache flushed", "keys", len(keys))
	return len(keys), nil
}

func (c *ResponseCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func registerClose(lc fx.Lifecycle, c *ResponseCache) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return c.Close() },
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerClose),
)
