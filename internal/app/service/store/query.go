package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fatflowers/hubreport/internal/models"
	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/types"
)

// ErrLedgerCorrupted means a membership has more than one open interval.
var ErrLedgerCorrupted = errors.New("ledger corrupted: more than one open membership plan")

func CreateOrGetLocation(ctx context.Context, tx *gorm.DB, name string) (*models.Location, error) {
	l, _, err := CreateOrGet(ctx, tx, Key{"name": name}, &models.Location{Name: name})
	return l, err
}

func CreateOrGetHub(ctx context.Context, tx *gorm.DB, name string, locationID *string) (*models.Hub, bool, error) {
	return CreateOrGet(ctx, tx, Key{"name": name}, &models.Hub{Name: name, LocationID: locationID})
}

func CreateOrGetUser(ctx context.Context, tx *gorm.DB, externalID, name, email string) (*models.User, error) {
	u, _, err := CreateOrGet(ctx, tx, Key{"external_id": externalID}, &models.User{ExternalID: externalID, Name: name, Email: email})
	return u, err
}

// CreateOrGetPlan keeps the price and type of the first sighting.
func CreateOrGetPlan(ctx context.Context, tx *gorm.DB, name string, price decimal.Decimal, planType types.PlanType) (*models.Plan, bool, error) {
	return CreateOrGet(ctx, tx, Key{"name": name}, &models.Plan{Name: name, Price: price, Type: planType})
}

func CreateOrGetHubPlan(ctx context.Context, tx *gorm.DB, hubID, planID string) (*models.HubPlan, error) {
	hp, _, err := CreateOrGet(ctx, tx, Key{"hub_id": hubID, "plan_id": planID}, &models.HubPlan{HubID: hubID, PlanID: planID})
	return hp, err
}

func CreateOrGetMembership(ctx context.Context, tx *gorm.DB, externalID, hubID string, confirmedAt time.Time) (*models.Membership, bool, error) {
	return CreateOrGet(ctx, tx, Key{"external_id": externalID}, &models.Membership{ExternalID: externalID, HubID: hubID, ConfirmedAt: confirmedAt})
}

// CreateOrGetReportMonth normalizes month to its first day.
func CreateOrGetReportMonth(ctx context.Context, tx *gorm.DB, month time.Time) (*models.ReportMonth, error) {
	first := dateutil.MonthWindow(month).Start
	rm, _, err := CreateOrGet(ctx, tx, Key{"date": first}, &models.ReportMonth{Date: first})
	return rm, err
}

func CreateOrGetMemberReport(ctx context.Context, tx *gorm.DB, hubPlanID, reportMonthID string) (*models.MemberReport, error) {
	r, _, err := CreateOrGet(ctx, tx, Key{"hub_plan_id": hubPlanID, "report_month_id": reportMonthID}, &models.MemberReport{HubPlanID: hubPlanID, ReportMonthID: reportMonthID})
	return r, err
}

func FindHubByName(ctx context.Context, tx *gorm.DB, name string) (*models.Hub, error) {
	return Get[models.Hub](ctx, tx, Key{"name": name})
}

// FindHubs returns the named hubs ordered by name, or every hub when names is empty.
// A name with no hub is an ErrNotFound error.
func FindHubs(ctx context.Context, tx *gorm.DB, names ...string) ([]*models.Hub, error) {
	q := tx.WithContext(ctx).Order("name")
	if len(names) > 0 {
		q = q.Where("name IN ?", names)
	}
	var hubs []*models.Hub
	if err := q.Find(&hubs).Error; err != nil {
		return nil, fmt.Errorf("failed to find hubs: %w", err)
	}
	if len(names) > 0 && len(hubs) != len(names) {
		return nil, fmt.Errorf("hub %v: %w", names, ErrNotFound)
	}
	return hubs, nil
}

// HubPlanFilter narrows FindHubPlans. Zero values match everything.
type HubPlanFilter struct {
	HubID     string
	PlanTypes []types.PlanType
}

// FindHubPlans returns hub plans with Hub and Plan preloaded.
func FindHubPlans(ctx context.Context, tx *gorm.DB, f HubPlanFilter) ([]*models.HubPlan, error) {
	q := tx.WithContext(ctx).Preload("Hub").Preload("Plan").Order("hub_id").Order("plan_id")
	if f.HubID != "" {
		q = q.Where("hub_id = ?", f.HubID)
	}
	if len(f.PlanTypes) > 0 {
		q = q.Where("plan_id IN (?)", tx.WithContext(ctx).Model(&models.Plan{}).Select("id").Where("type IN ?", f.PlanTypes))
	}
	var out []*models.HubPlan
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to find hub plans: %w", err)
	}
	return out, nil
}

// GetHubPlan loads one hub plan with its Hub and Plan.
func GetHubPlan(ctx context.Context, tx *gorm.DB, id string) (*models.HubPlan, error) {
	var hp models.HubPlan
	if err := tx.WithContext(ctx).Preload("Hub").Preload("Plan").Where("id = ?", id).Take(&hp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %s: %w", KindHubPlan, id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get hub plan: %w", err)
	}
	return &hp, nil
}

// ListEntries returns a membership's intervals in timeline order.
func ListEntries(ctx context.Context, tx *gorm.DB, membershipID string) ([]*models.MembershipPlan, error) {
	var out []*models.MembershipPlan
	err := tx.WithContext(ctx).
		Where("membership_id = ?", membershipID).
		Order("start_date").Order("created_at").Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list membership plans: %w", err)
	}
	return out, nil
}

// OpenEntries returns every interval of the membership with no end date.
// A healthy ledger yields zero or one. The rows are read FOR UPDATE.
func OpenEntries(ctx context.Context, tx *gorm.DB, membershipID string) ([]*models.MembershipPlan, error) {
	var out []*models.MembershipPlan
	err := forUpdate(ctx, tx).
		Where("membership_id = ? AND end_date IS NULL", membershipID).
		Order("start_date").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find open membership plans: %w", err)
	}
	return out, nil
}

// CurrentOpenEntry returns the membership's open interval, nil when there is
// none, and ErrLedgerCorrupted when there is more than one. It never caches.
func CurrentOpenEntry(ctx context.Context, tx *gorm.DB, membershipID string) (*models.MembershipPlan, error) {
	open, err := OpenEntries(ctx, tx, membershipID)
	if err != nil {
		return nil, err
	}
	switch len(open) {
	case 0:
		return nil, nil
	case 1:
		return open[0], nil
	default:
		return nil, fmt.Errorf("membership %s has %d open entries: %w", membershipID, len(open), ErrLedgerCorrupted)
	}
}

// LatestEntry returns the interval with the greatest start date, or nil. The
// row is read FOR UPDATE.
func LatestEntry(ctx context.Context, tx *gorm.DB, membershipID string) (*models.MembershipPlan, error) {
	var mp models.MembershipPlan
	err := forUpdate(ctx, tx).
		Where("membership_id = ?", membershipID).
		Order("start_date DESC").Order("created_at DESC").Order("id DESC").
		Take(&mp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest membership plan: %w", err)
	}
	return &mp, nil
}

// IntervalsTouching returns the hub plan's intervals that intersect w:
// start <= w.End and (end IS NULL or end >= w.Start).
func IntervalsTouching(ctx context.Context, tx *gorm.DB, hubPlanID string, w dateutil.Window) ([]*models.MembershipPlan, error) {
	var out []*models.MembershipPlan
	err := tx.WithContext(ctx).
		Where("hub_plan_id = ?", hubPlanID).
		Where("start_date <= ?", w.End).
		Where("end_date IS NULL OR end_date >= ?", w.Start).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load intervals of hub plan %s: %w", hubPlanID, err)
	}
	return out, nil
}
