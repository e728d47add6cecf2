// Package aggregation recomputes monthly cohort counters for one hub plan
// from the membership ledger.
package aggregation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/hubreport/internal/app/service/store"
	"github.com/fatflowers/hubreport/internal/models"
	"github.com/fatflowers/hubreport/pkg/config"
	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/logctx"
	"github.com/fatflowers/hubreport/pkg/types"
)

type Status string

const (
	StatusAggregated    Status = "aggregated"
	StatusNotApplicable Status = "not_applicable"
)

// Result tells an aggregated report apart from a hub plan that is not reported on.
type Result struct {
	Status    Status               `json:"status"`
	HubPlanID string               `json:"hub_plan_id"`
	Month     string               `json:"month"`
	Counts    Counts               `json:"counts"`
	Report    *models.MemberReport `json:"report,omitempty"`
	Reason    string               `json:"reason,omitempty"`
}

type Service struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, log: log}
}

// AggregateHubPlanMonth resets and recounts the report of hubPlanID for the
// month containing month. The reset and the recount commit together under a
// row lock on the report, so the result depends only on the ledger.
func (s *Service) AggregateHubPlanMonth(ctx context.Context, hubPlanID string, month time.Time) (*Result, error) {
	ctx, span := otel.Tracer("aggregation").Start(ctx, "aggregation.AggregateHubPlanMonth")
	defer span.End()
	w := dateutil.MonthWindow(month)
	span.SetAttributes(attribute.String("hub_plan_id", hubPlanID), attribute.String("month", dateutil.FormatMonth(w.Start)))

	res := &Result{HubPlanID: hubPlanID, Month: dateutil.FormatMonth(w.Start)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hp, err := store.GetHubPlan(ctx, tx, hubPlanID)
		if err != nil {
			return err
		}
		if hp.Plan.Type == types.PlanTypeIgnore && !s.cfg.Report.IncludeIgnoredPlans {
			res.Status = StatusNotApplicable
			res.Reason = fmt.Sprintf("plan %q is of type %s", hp.Plan.Name, hp.Plan.Type)
			return nil
		}

		rm, err := store.CreateOrGetReportMonth(ctx, tx, w.Start)
		if err != nil {
			return err
		}
		report, err := store.CreateOrGetMemberReport(ctx, tx, hp.ID, rm.ID)
		if err != nil {
			return err
		}
		if report, err = store.Lock[models.MemberReport](ctx, tx, report.ID); err != nil {
			return err
		}
		report.Reset()

		entries, err := store.IntervalsTouching(ctx, tx, hp.ID, w)
		if err != nil {
			return err
		}
		counts := Tally(entries, w)
		counts.apply(report, hp.Plan.Price)
		if err := store.Update(ctx, tx, report, counterFields(report)); err != nil {
			return err
		}

		res.Status = StatusAggregated
		res.Counts = counts
		res.Report = report
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to aggregate hub plan %s for %s: %w", hubPlanID, res.Month, err)
	}

	log := logctx.FromCtx(ctx, s.log)
	if res.Status == StatusNotApplicable {
		log.Debugw("hub plan not aggregated", "hub_plan_id", hubPlanID, "month", res.Month, "reason", res.Reason)
	} else {
		log.Debugw("hub plan aggregated", "hub_plan_id", hubPlanID, "month", res.Month,
			"new", res.Counts.New, "retain", res.Counts.Retain, "leave", res.Counts.Leave)
	}
	span.SetAttributes(attribute.String("status", string(res.Status)))
	return res, nil
}

// counterFields lists all six counters so zero values are written too.
func counterFields(r *models.MemberReport) map[string]any {
	return map[string]any{
		"new_count":      r.NewCount,
		"new_revenue":    r.NewRevenue,
		"retain_count":   r.RetainCount,
		"retain_revenue": r.RetainRevenue,
		"leave_count":    r.LeaveCount,
		"leave_revenue":  r.LeaveRevenue,
	}
}
