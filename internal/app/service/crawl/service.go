// Package crawl drives the transition engine over hubs and dates: fetch the
// day's snapshots, apply them, record the attempt.
package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/hubreport/internal/app/service/crawl_log"
	"github.com/fatflowers/hubreport/internal/app/service/store"
	"github.com/fatflowers/hubreport/internal/app/service/transition"
	"github.com/fatflowers/hubreport/internal/models"
	"github.com/fatflowers/hubreport/internal/platform/cobot"
	"github.com/fatflowers/hubreport/pkg/config"
	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/logctx"
	"github.com/fatflowers/hubreport/pkg/metrics"
	"github.com/fatflowers/hubreport/pkg/tool"
	"github.com/fatflowers/hubreport/pkg/types"
)

// Step is the outcome of one hub and date.
type Step struct {
	Hub    string                `json:"hub"`
	Date   string                `json:"date"`
	Status types.CrawlStatus     `json:"status"`
	Reason string                `json:"reason,omitempty"`
	Result *transition.RunResult `json:"result,omitempty"`
}

// Summary totals a crawl run. Step counters count hub and date pairs; the
// snapshot counters add up the transition results of processed steps.
type Summary struct {
	RunID              string `json:"run_id"`
	Processed          int    `json:"processed"`
	Skipped            int    `json:"skipped"`
	Failed             int    `json:"failed"`
	SnapshotsProcessed int    `json:"snapshots_processed"`
	SnapshotsSkipped   int    `json:"snapshots_skipped"`
	SnapshotsFailed    int    `json:"snapshots_failed"`
	Steps              []Step `json:"steps"`
}

func (s *Summary) add(step Step) {
	s.Steps = append(s.Steps, step)
	switch step.Status {
	case types.CrawlStatusProcessed:
		s.Processed++
	case types.CrawlStatusSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
	if step.Result != nil {
		s.SnapshotsProcessed += step.Result.Processed
		s.SnapshotsSkipped += step.Result.Skipped
		s.SnapshotsFailed += step.Result.Failed
	}
}

type Service struct {
	cfg     *config.Config
	db      *gorm.DB
	log     *zap.SugaredLogger
	source  cobot.Source
	engine  *transition.Service
	logs    *crawl_log.Service
	metrics *metrics.Batch
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, source cobot.Source, engine *transition.Service, logs *crawl_log.Service, m *metrics.Batch) *Service {
	return &Service{cfg: cfg, db: db, log: log, source: source, engine: engine, logs: logs, metrics: m}
}

// SeedHubs creates the hubs listed in configuration, with their locations.
func (s *Service) SeedHubs(ctx context.Context) error {
	for _, h := range s.cfg.Hubs {
		if _, _, err := s.CreateHub(ctx, h.Name, h.Location); err != nil {
			return err
		}
	}
	return nil
}

// CreateHub creates a hub, or returns the existing hub with that name.
func (s *Service) CreateHub(ctx context.Context, name, location string) (*models.Hub, bool, error) {
	var hub *models.Hub
	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locationID *string
		if location != "" {
			loc, err := store.CreateOrGetLocation(ctx, tx, location)
			if err != nil {
				return err
			}
			locationID = &loc.ID
		}
		var err error
		hub, created, err = store.CreateOrGetHub(ctx, tx, name, locationID)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create hub %s: %w", name, err)
	}
	if created {
		logctx.FromCtx(ctx, s.log).Infow("hub created", "hub", name, "location", location)
	}
	return hub, created, nil
}

// History returns the latest crawl attempts recorded for the named hub.
func (s *Service) History(ctx context.Context, hubName string, limit int) ([]*models.CrawlLog, error) {
	hub, err := store.FindHubByName(ctx, s.db, hubName)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.logs.Latest(ctx, hub.ID, limit)
}

// ProcessDay crawls date for the named hub, or for every hub when hubName is empty.
func (s *Service) ProcessDay(ctx context.Context, date time.Time, hubName string) (*Summary, error) {
	return s.ProcessRange(ctx, date, date, hubName)
}

// ProcessRange crawls every date in [from, to] in order. A hub and date that
// cannot be fetched or applied is recorded and the run moves on; only an
// unknown hub, a bad range or a canceled context end it early.
func (s *Service) ProcessRange(ctx context.Context, from, to time.Time, hubName string) (*Summary, error) {
	days, err := dateutil.Days(from, to)
	if err != nil {
		return nil, err
	}
	hubs, err := store.FindHubs(ctx, s.db, lo.Compact([]string{hubName})...)
	if err != nil {
		return nil, err
	}

	sum := &Summary{RunID: tool.GenerateUUIDV7()}
	ctx = logctx.WithRun(ctx, s.log, sum.RunID, "job", "crawl")
	log := logctx.FromCtx(ctx, s.log)
	log.Infow("crawl started", "from", dateutil.FormatDate(days[0]), "to", dateutil.FormatDate(days[len(days)-1]),
		"hubs", lo.Map(hubs, func(h *models.Hub, _ int) string { return h.Name }))

	for _, day := range days {
		for _, hub := range hubs {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			sum.add(s.processHub(ctx, hub, day))
		}
	}
	log.Infow("crawl finished", "processed", sum.Processed, "skipped", sum.Skipped, "failed", sum.Failed,
		"snapshots_processed", sum.SnapshotsProcessed, "snapshots_skipped", sum.SnapshotsSkipped, "snapshots_failed", sum.SnapshotsFailed)
	return sum, nil
}

func (s *Service) processHub(ctx context.Context, hub *models.Hub, date time.Time) Step {
	start := time.Now()
	log := logctx.FromCtx(ctx, s.log).With("hub", hub.Name, "date", dateutil.FormatDate(date))
	step := Step{Hub: hub.Name, Date: dateutil.FormatDate(date)}

	snapshots, err := s.source.Fetch(ctx, hub.Name, date)
	switch {
	case err != nil && ctx.Err() != nil:
		step.Status, step.Reason = types.CrawlStatusFailed, err.Error()
	case err != nil:
		if !errors.Is(err, cobot.ErrNoData) {
			log.Warnw("unexpected fetch error", "err", err)
		}
		step.Status, step.Reason = types.CrawlStatusSkipped, err.Error()
	default:
		res, err := s.engine.Apply(ctx, hub, date, snapshots)
		step.Result = res
		switch {
		case err != nil:
			step.Status, step.Reason = types.CrawlStatusFailed, err.Error()
		case res.Failed > 0 && res.Processed == 0:
			step.Status, step.Reason = types.CrawlStatusFailed, fmt.Sprintf("all %d applicable snapshots failed", res.Failed)
		default:
			step.Status = types.CrawlStatusProcessed
		}
	}

	if step.Status == types.CrawlStatusProcessed {
		log.Infow("hub crawled", "status", step.Status)
	} else {
		log.Warnw("hub not crawled", "status", step.Status, "reason", step.Reason)
	}
	s.record(ctx, hub, date, step)

	var processed, skipped, failed int
	if step.Result != nil {
		processed, skipped, failed = step.Result.Processed, step.Result.Skipped, step.Result.Failed
	}
	s.metrics.CrawlStep(hub.Name, step.Status, processed, skipped, failed, time.Since(start))
	return step
}

func (s *Service) record(ctx context.Context, hub *models.Hub, date time.Time, step Step) {
	entry := &models.CrawlLog{
		HubID:     hub.ID,
		CrawlDate: date,
		Status:    step.Status,
		Reason:    step.Reason,
	}
	if step.Result != nil {
		entry.Processed, entry.Skipped, entry.Failed = step.Result.Processed, step.Result.Skipped, step.Result.Failed
		if raw, err := json.Marshal(step.Result); err == nil {
			entry.Result = raw
		}
	}
	// a canceled run still leaves its trace
	s.logs.Save(context.WithoutCancel(ctx), entry)
}
