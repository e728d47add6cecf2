package statistics

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fatflowers/hubreport/internal/app/service/store"
	"github.com/fatflowers/hubreport/internal/models"
	"github.com/fatflowers/hubreport/pkg/config"
	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/types"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrHubNotFound = errors.New("no such hub found")

// Service answers the read side of the reporting API from persisted rows only.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time
}

func New(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, log: log, now: time.Now}
}

// planTypes is the plan type filter of a report query. Ignore plans are left
// out unless report.include_ignored_plans is set.
func (s *Service) planTypes(requested string) ([]types.PlanType, error) {
	includeIgnored := s.cfg.Report.IncludeIgnoredPlans
	if requested == "" {
		if includeIgnored {
			return nil, nil
		}
		return lo.Without(types.PlanTypes, types.PlanTypeIgnore), nil
	}
	t, err := types.ParsePlanType(requested)
	if err != nil {
		return nil, err
	}
	if t == types.PlanTypeIgnore && !includeIgnored {
		return []types.PlanType{}, nil
	}
	return []types.PlanType{t}, nil
}

// ReportQuery filters member reports. Empty fields match everything; From and
// To are YYYY-MM and inclusive.
type ReportQuery struct {
	HubName  string `form:"hub_name" json:"hub_name"`
	PlanType string `form:"plan_type" json:"plan_type"`
	From     string `form:"from" json:"from"`
	To       string `form:"to" json:"to"`
}

type ReportItem struct {
	Month         string          `json:"month"`
	Hub           string          `json:"hub"`
	Plan          string          `json:"plan"`
	PlanType      types.PlanType  `json:"plan_type"`
	Price         decimal.Decimal `json:"price"`
	NewCount      int64           `json:"new_count"`
	NewRevenue    decimal.Decimal `json:"new_revenue"`
	RetainCount   int64           `json:"retain_count"`
	RetainRevenue decimal.Decimal `json:"retain_revenue"`
	LeaveCount    int64           `json:"leave_count"`
	LeaveRevenue  decimal.Decimal `json:"leave_revenue"`
}

func (s *Service) hubID(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	hub, err := store.FindHubByName(ctx, s.db, name)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("%w: %q", ErrHubNotFound, name)
	}
	if err != nil {
		return "", err
	}
	return hub.ID, nil
}

func parseMonthBound(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	m, err := dateutil.ParseMonth(s)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListReports returns the stored counters ordered by month, hub and plan.
func (s *Service) ListReports(ctx context.Context, q ReportQuery) ([]*ReportItem, error) {
	hubID, err := s.hubID(ctx, q.HubName)
	if err != nil {
		return nil, err
	}
	planTypes, err := s.planTypes(q.PlanType)
	if err != nil {
		return nil, err
	}
	if planTypes != nil && len(planTypes) == 0 {
		return []*ReportItem{}, nil
	}
	filter := store.HubPlanFilter{HubID: hubID, PlanTypes: planTypes}
	from, err := parseMonthBound(q.From)
	if err != nil {
		return nil, err
	}
	to, err := parseMonthBound(q.To)
	if err != nil {
		return nil, err
	}

	hubPlans, err := store.FindHubPlans(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	if len(hubPlans) == 0 {
		return []*ReportItem{}, nil
	}
	byID := lo.KeyBy(hubPlans, func(hp *models.HubPlan) string { return hp.ID })

	months := s.db.WithContext(ctx).Model(&models.ReportMonth{}).Select("id")
	if from != nil {
		months = months.Where("date >= ?", *from)
	}
	if to != nil {
		months = months.Where("date <= ?", *to)
	}
	var reports []*models.MemberReport
	err = s.db.WithContext(ctx).
		Preload("ReportMonth").
		Where("hub_plan_id IN ?", lo.Keys(byID)).
		Where("report_month_id IN (?)", months).
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list member reports: %w", err)
	}

	items := lo.Map(reports, func(r *models.MemberReport, _ int) *ReportItem {
		hp := byID[r.HubPlanID]
		return &ReportItem{
			Month:         dateutil.FormatMonth(r.ReportMonth.Date),
			Hub:           hp.Hub.Name,
			Plan:          hp.Plan.Name,
			PlanType:      hp.Plan.Type,
			Price:         hp.Plan.Price,
			NewCount:      r.NewCount,
			NewRevenue:    r.NewRevenue,
			RetainCount:   r.RetainCount,
			RetainRevenue: r.RetainRevenue,
			LeaveCount:    r.LeaveCount,
			LeaveRevenue:  r.LeaveRevenue,
		}
	})
	slices.SortFunc(items, func(a, b *ReportItem) int {
		return strings.Compare(a.Month+"\x00"+a.Hub+"\x00"+a.Plan, b.Month+"\x00"+b.Hub+"\x00"+b.Plan)
	})
	return items, nil
}

// CardFigure is one headline number. Percentages are 0 when their base is 0.
type CardFigure struct {
	Count       *int64           `json:"count,omitempty"`
	Percent     *decimal.Decimal `json:"percent,omitempty"`
	BasePercent *decimal.Decimal `json:"base_percent,omitempty"`
	Duration    int              `json:"duration"`
}

type Card struct {
	CardNo             int         `json:"card_no"`
	TotalActiveMembers *int64      `json:"total_active_members,omitempty"`
	NewMembers         *CardFigure `json:"new_members,omitempty"`
	LeaveMembers       *CardFigure `json:"leave_members,omitempty"`
}

// Cards computes the dashboard figures for one hub, or all hubs when hubName is empty:
//   - card 1: members active today and new members over 30 days as a percent of them
//   - card 2: reserved, always empty
//   - card 3: new members over 7 days against members active 7 days ago
//   - card 4: members leaving over 7 days against the same base
func (s *Service) Cards(ctx context.Context, hubName string) ([]*Card, error) {
	hubID, err := s.hubID(ctx, hubName)
	if err != nil {
		return nil, err
	}
	today := dateutil.Truncate(s.now())
	weekAgo := today.AddDate(0, 0, -7)

	activeNow, err := s.countActive(ctx, hubID, today)
	if err != nil {
		return nil, err
	}
	newMonth, err := s.countConfirmed(ctx, hubID, today.AddDate(0, 0, -30), today)
	if err != nil {
		return nil, err
	}
	activeWeekAgo, err := s.countActive(ctx, hubID, weekAgo)
	if err != nil {
		return nil, err
	}
	newWeek, err := s.countConfirmed(ctx, hubID, weekAgo, today)
	if err != nil {
		return nil, err
	}
	leaveWeek, err := s.countCanceled(ctx, hubID, weekAgo, today)
	if err != nil {
		return nil, err
	}

	return []*Card{
		{
			CardNo:             1,
			TotalActiveMembers: lo.ToPtr(activeNow),
			NewMembers:         &CardFigure{Percent: lo.ToPtr(percent(newMonth, activeNow, 1)), Duration: 30},
		},
		{CardNo: 2},
		{
			CardNo:     3,
			NewMembers: &CardFigure{Count: lo.ToPtr(newWeek), BasePercent: lo.ToPtr(percent(newWeek, activeWeekAgo, 2)), Duration: 7},
		},
		{
			CardNo:       4,
			LeaveMembers: &CardFigure{Count: lo.ToPtr(leaveWeek), BasePercent: lo.ToPtr(percent(leaveWeek, activeWeekAgo, 2)), Duration: 7},
		},
	}, nil
}

func percent(n, base int64, places int32) decimal.Decimal {
	if base == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(n).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(base)).Round(places)
}

func (s *Service) memberships(ctx context.Context, hubID string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Membership{})
	if hubID != "" {
		q = q.Where("hub_id = ?", hubID)
	}
	return q
}

// countActive counts memberships confirmed by day and not canceled before it.
func (s *Service) countActive(ctx context.Context, hubID string, day time.Time) (int64, error) {
	var n int64
	err := s.memberships(ctx, hubID).
		Where("confirmed_at <= ?", day).
		Where("canceled_to IS NULL OR canceled_to >= ?", day).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active members: %w", err)
	}
	return n, nil
}

func (s *Service) countConfirmed(ctx context.Context, hubID string, from, to time.Time) (int64, error) {
	var n int64
	err := s.memberships(ctx, hubID).
		Where("confirmed_at >= ? AND confirmed_at <= ?", from, to).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count new members: %w", err)
	}
	return n, nil
}

func (s *Service) countCanceled(ctx context.Context, hubID string, from, to time.Time) (int64, error) {
	var n int64
	err := s.memberships(ctx, hubID).
		Where("canceled_to >= ? AND canceled_to <= ?", from, to).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count leaving members: %w", err)
	}
	return n, nil
}
