package statistics

import (
	"context"
	"fmt"

	"github.com/fatflowers/hubreport/internal/app/service/store"
	"github.com/fatflowers/hubreport/internal/models"
	"github.com/fatflowers/hubreport/pkg/logctx"
	"github.com/fatflowers/hubreport/pkg/types"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

// membershipPlanColumns are the membership_plan columns admins may filter and sort on.
var membershipPlanColumns = []string{"id", "membership_id", "hub_plan_id", "start_date", "end_date", "created_at", "updated_at"}

type ListMembershipPlansRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ListMembershipPlansResponse struct {
	Items []*models.MembershipPlan `json:"items"`
	Total int64                    `json:"total"`
}

func (r *ListMembershipPlansRequest) Validate() error {
	for _, f := range r.Filters {
		if f == nil {
			return fmt.Errorf("nil filter")
		}
		if err := f.Validate(membershipPlanColumns); err != nil {
			return err
		}
	}
	if r.SortBy != "" && !lo.Contains(membershipPlanColumns, r.SortBy) {
		return fmt.Errorf("sort on field %q is not supported", r.SortBy)
	}
	if r.SortOrder != "" && r.SortOrder != "asc" && r.SortOrder != "desc" {
		return fmt.Errorf("sort order must be asc or desc, got %q", r.SortOrder)
	}
	return nil
}

// ListMembershipPlans pages through ledger intervals. Size defaults to 10.
func (s *Service) ListMembershipPlans(ctx context.Context, req *ListMembershipPlansRequest) (*ListMembershipPlansResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.MembershipPlan{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(req.Filters)}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count membership plans: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	} else {
		q = q.Order("start_date").Order("id")
	}

	var rows []*models.MembershipPlan
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list membership plans: %w", err)
	}
	return &ListMembershipPlansResponse{Items: rows, Total: total}, nil
}

// SetPlanType reclassifies a plan. Stored reports keep their counters until
// the next aggregation run.
func (s *Service) SetPlanType(ctx context.Context, planID, planType string) (*models.Plan, error) {
	t, err := types.ParsePlanType(planType)
	if err != nil {
		return nil, err
	}
	plan, err := store.Get[models.Plan](ctx, s.db, store.Key{"id": planID})
	if err != nil {
		return nil, err
	}
	if plan.Type == t {
		return plan, nil
	}
	if err := store.Update(ctx, s.db, plan, map[string]any{"type": t}); err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("plan type changed", "plan", plan.Name, "from", plan.Type, "to", t)
	plan.Type = t
	return plan, nil
}
