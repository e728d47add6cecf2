package crawl_log

import (
	"context"
	"fmt"

	"github.com/fatflowers/hubreport/internal/models"
	"github.com/fatflowers/hubreport/pkg/logctx"
	"github.com/fatflowers/hubreport/pkg/tool"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save persists one crawl attempt. Batch processes exit right after a run, so
// the write is synchronous; a failure is logged and does not fail the crawl.
func (s *Service) Save(ctx context.Context, entry *models.CrawlLog) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = tool.GenerateUUIDV7()
	}
	if entry.TraceID == "" {
		entry.TraceID = logctx.TraceID(ctx)
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to save crawl log: %v", err)
	}
}

// Latest returns the most recent attempts for a hub, newest first.
func (s *Service) Latest(ctx context.Context, hubID string, limit int) ([]*models.CrawlLog, error) {
	var out []*models.CrawlLog
	err := s.db.WithContext(ctx).
		Where("hub_id = ?", hubID).
		Order("crawl_date DESC").Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl logs: %w", err)
	}
	return out, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
