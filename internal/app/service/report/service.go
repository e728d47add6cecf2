// Package report drives the aggregation engine over months and hub plans.
package report

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/fatflowers/hubreport/internal/app/service/aggregation"
	"github.com/fatflowers/hubreport/internal/app/service/store"
	"github.com/fatflowers/hubreport/internal/models"
	"github.com/fatflowers/hubreport/pkg/config"
	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/logctx"
	"github.com/fatflowers/hubreport/pkg/metrics"
	"github.com/fatflowers/hubreport/pkg/tool"
)

// Failure is one hub plan and month that could not be aggregated.
type Failure struct {
	Hub   string `json:"hub"`
	Plan  string `json:"plan"`
	Month string `json:"month"`
	Err   string `json:"error"`
}

// Summary totals a report run over hub plan and month pairs.
type Summary struct {
	RunID         string    `json:"run_id"`
	Months        []string  `json:"months"`
	Aggregated    int       `json:"aggregated"`
	NotApplicable int       `json:"not_applicable"`
	Failed        int       `json:"failed"`
	Failures      []Failure `json:"failures,omitempty"`

	mu sync.Mutex
}

func (s *Summary) add(hp *models.HubPlan, month time.Time, res *aggregation.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err != nil:
		s.Failed++
		s.Failures = append(s.Failures, Failure{Hub: hp.Hub.Name, Plan: hp.Plan.Name, Month: dateutil.FormatMonth(month), Err: err.Error()})
	case res.Status == aggregation.StatusNotApplicable:
		s.NotApplicable++
	default:
		s.Aggregated++
	}
}

type Service struct {
	cfg     *config.Config
	db      *gorm.DB
	log     *zap.SugaredLogger
	engine  *aggregation.Service
	metrics *metrics.Batch
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, engine *aggregation.Service, m *metrics.Batch) *Service {
	return &Service{cfg: cfg, db: db, log: log, engine: engine, metrics: m}
}

// AggregateMonth recomputes the month containing month for the hub plans of
// hubName, or of every hub when hubName is empty.
func (s *Service) AggregateMonth(ctx context.Context, month time.Time, hubName string) (*Summary, error) {
	return s.AggregateRange(ctx, month, month, hubName)
}

// AggregateRange recomputes every month touched by [from, to]. Hub plan and
// month pairs are independent and run in parallel up to report.concurrency.
// Failed pairs are counted; only a bad range, an unknown hub or a canceled
// context return an error.
func (s *Service) AggregateRange(ctx context.Context, from, to time.Time, hubName string) (*Summary, error) {
	months, err := dateutil.Months(from, to)
	if err != nil {
		return nil, err
	}
	var filter store.HubPlanFilter
	if hubName != "" {
		hub, err := store.FindHubByName(ctx, s.db, hubName)
		if err != nil {
			return nil, err
		}
		filter.HubID = hub.ID
	}
	hubPlans, err := store.FindHubPlans(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		RunID:  tool.GenerateUUIDV7(),
		Months: lo.Map(months, func(m time.Time, _ int) string { return dateutil.FormatMonth(m) }),
	}
	ctx = logctx.WithRun(ctx, s.log, sum.RunID, "job", "report")
	log := logctx.FromCtx(ctx, s.log)
	log.Infow("report started", "months", sum.Months, "hub_plans", len(hubPlans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Report.Concurrency)
	for _, month := range months {
		for _, hp := range hubPlans {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				start := time.Now()
				res, err := s.engine.AggregateHubPlanMonth(gctx, hp.ID, month)
				if err != nil && gctx.Err() != nil {
					return gctx.Err()
				}
				if err != nil {
					log.Errorw("aggregation failed", "hub", hp.Hub.Name, "plan", hp.Plan.Name, "month", dateutil.FormatMonth(month), "err", err)
				}
				sum.add(hp, month, res, err)
				status := "failed"
				if err == nil {
					status = string(res.Status)
				}
				s.metrics.Aggregation(status, time.Since(start))
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}
	log.Infow("report finished", "aggregated", sum.Aggregated, "not_applicable", sum.NotApplicable, "failed", sum.Failed)
	return sum, nil
}
