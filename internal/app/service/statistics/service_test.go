package statistics

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/hubreport/internal/app/service/store"
	"github.com/fatflowers/hubreport/internal/models"
	"github.com/fatflowers/hubreport/internal/platform/db/dbtest"
	"github.com/fatflowers/hubreport/pkg/config"
	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/types"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := dateutil.ParseDate(s)
	require.NoError(t, err)
	return d
}

type fixture struct {
	db     *gorm.DB
	cfg    *config.Config
	svc    *Service
	berlin *models.Hub
	munich *models.Hub
	desk   *models.Plan
	flex   *models.Plan
	hp     map[string]*models.HubPlan
}

// newFixture stores two hubs with a Desk (Full-Time, 250) and a Flex
// (Part-Time, 100) plan each.
func newFixture(t *testing.T) *fixture {
	ctx := context.Background()
	db := dbtest.New(t)
	cfg := &config.Config{}
	f := &fixture{db: db, cfg: cfg, svc: New(cfg, db, zap.NewNop().Sugar()), hp: map[string]*models.HubPlan{}}

	var err error
	f.berlin, _, err = store.CreateOrGetHub(ctx, db, "berlin", nil)
	require.NoError(t, err)
	f.munich, _, err = store.CreateOrGetHub(ctx, db, "munich", nil)
	require.NoError(t, err)
	f.desk, _, err = store.CreateOrGetPlan(ctx, db, "Desk", decimal.NewFromInt(250), types.PlanTypeFullTime)
	require.NoError(t, err)
	f.flex, _, err = store.CreateOrGetPlan(ctx, db, "Flex", decimal.NewFromInt(100), types.PlanTypePartTime)
	require.NoError(t, err)
	for _, h := range []*models.Hub{f.berlin, f.munich} {
		for _, p := range []*models.Plan{f.desk, f.flex} {
			hp, err := store.CreateOrGetHubPlan(ctx, db, h.ID, p.ID)
			require.NoError(t, err)
			f.hp[h.Name+"/"+p.Name] = hp
		}
	}
	return f
}

func (f *fixture) report(t *testing.T, hubPlan, month string, newCount, retainCount, leaveCount int64) {
	t.Helper()
	ctx := context.Background()
	m, err := dateutil.ParseMonth(month)
	require.NoError(t, err)
	rm, err := store.CreateOrGetReportMonth(ctx, f.db, m)
	require.NoError(t, err)
	hp := f.hp[hubPlan]
	require.NotNil(t, hp, hubPlan)
	r, err := store.CreateOrGetMemberReport(ctx, f.db, hp.ID, rm.ID)
	require.NoError(t, err)
	price := f.desk.Price
	if hp.PlanID == f.flex.ID {
		price = f.flex.Price
	}
	require.NoError(t, store.Update(ctx, f.db, r, map[string]any{
		"new_count":      newCount,
		"new_revenue":    price.Mul(decimal.NewFromInt(newCount)),
		"retain_count":   retainCount,
		"retain_revenue": price.Mul(decimal.NewFromInt(retainCount)),
		"leave_count":    leaveCount,
		"leave_revenue":  price.Mul(decimal.NewFromInt(leaveCount)),
	}))
}

func reportKeys(items []*ReportItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Month+" "+it.Hub+" "+it.Plan)
	}
	return out
}

func TestListReports(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.report(t, "munich/Desk", "2016-01", 1, 0, 0)
	f.report(t, "berlin/Flex", "2016-02", 0, 3, 1)
	f.report(t, "berlin/Desk", "2016-01", 2, 0, 0)
	f.report(t, "berlin/Desk", "2016-02", 1, 2, 0)

	items, err := f.svc.ListReports(ctx, ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2016-01 berlin Desk",
		"2016-01 munich Desk",
		"2016-02 berlin Desk",
		"2016-02 berlin Flex",
	}, reportKeys(items))

	flex := items[3]
	assert.Equal(t, types.PlanTypePartTime, flex.PlanType)
	assert.True(t, flex.Price.Equal(decimal.NewFromInt(100)))
	assert.EqualValues(t, 3, flex.RetainCount)
	assert.True(t, flex.RetainRevenue.Equal(decimal.NewFromInt(300)), flex.RetainRevenue.String())
	assert.True(t, flex.LeaveRevenue.Equal(decimal.NewFromInt(100)))

	items, err = f.svc.ListReports(ctx, ReportQuery{HubName: "berlin", PlanType: "Full-Time"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2016-01 berlin Desk", "2016-02 berlin Desk"}, reportKeys(items))

	items, err = f.svc.ListReports(ctx, ReportQuery{From: "2016-02", To: "2016-02"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2016-02 berlin Desk", "2016-02 berlin Flex"}, reportKeys(items))

	items, err = f.svc.ListReports(ctx, ReportQuery{To: "2016-01"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = f.svc.ListReports(ctx, ReportQuery{PlanType: "Ignore"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListReports_LeavesOutIgnoredPlans(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.report(t, "berlin/Desk", "2016-01", 2, 0, 0)
	f.report(t, "berlin/Flex", "2016-01", 1, 0, 0)
	_, err := f.svc.SetPlanType(ctx, f.flex.ID, "Ignore")
	require.NoError(t, err)

	items, err := f.svc.ListReports(ctx, ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2016-01 berlin Desk"}, reportKeys(items))

	items, err = f.svc.ListReports(ctx, ReportQuery{PlanType: "Ignore"})
	require.NoError(t, err)
	assert.Empty(t, items)

	f.cfg.Report.IncludeIgnoredPlans = true
	items, err = f.svc.ListReports(ctx, ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2016-01 berlin Desk", "2016-01 berlin Flex"}, reportKeys(items))

	items, err = f.svc.ListReports(ctx, ReportQuery{PlanType: "Ignore"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2016-01 berlin Flex"}, reportKeys(items))
}

func TestListReports_InvalidQuery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ListReports(ctx, ReportQuery{HubName: "paris"})
	assert.ErrorIs(t, err, ErrHubNotFound)

	_, err = f.svc.ListReports(ctx, ReportQuery{PlanType: "Weekend"})
	assert.ErrorIs(t, err, types.ErrUnknownPlanType)

	_, err = f.svc.ListReports(ctx, ReportQuery{From: "2016-13"})
	assert.ErrorIs(t, err, dateutil.ErrInvalidDate)

	_, err = f.svc.ListReports(ctx, ReportQuery{From: "2016-01", To: "Feb 2016"})
	assert.ErrorIs(t, err, dateutil.ErrInvalidDate)
}

func TestCards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.now = func() time.Time { return time.Date(2016, 3, 31, 15, 4, 5, 0, time.UTC) }
	_, _, err := store.CreateOrGetHub(ctx, f.db, "paris", nil)
	require.NoError(t, err)

	canceled := day(t, "2016-03-27")
	members := []*models.Membership{
		{ExternalID: "m1", HubID: f.berlin.ID, ConfirmedAt: day(t, "2016-01-01")},
		{ExternalID: "m2", HubID: f.berlin.ID, ConfirmedAt: day(t, "2016-03-28")},
		{ExternalID: "m3", HubID: f.berlin.ID, ConfirmedAt: day(t, "2016-02-01"), CanceledTo: &canceled},
		{ExternalID: "m4", HubID: f.munich.ID, ConfirmedAt: day(t, "2016-03-10")},
	}
	require.NoError(t, f.db.Create(&members).Error)

	cards, err := f.svc.Cards(ctx, "berlin")
	require.NoError(t, err)
	require.Len(t, cards, 4)
	assert.Equal(t, 1, cards[0].CardNo)
	assert.EqualValues(t, 2, *cards[0].TotalActiveMembers)
	assert.Equal(t, "50", cards[0].NewMembers.Percent.String())
	assert.Equal(t, 30, cards[0].NewMembers.Duration)
	assert.Equal(t, &Card{CardNo: 2}, cards[1])
	assert.EqualValues(t, 1, *cards[2].NewMembers.Count)
	assert.Equal(t, "50", cards[2].NewMembers.BasePercent.String())
	assert.EqualValues(t, 1, *cards[3].LeaveMembers.Count)
	assert.Equal(t, "50", cards[3].LeaveMembers.BasePercent.String())
	assert.Equal(t, 7, cards[3].LeaveMembers.Duration)

	cards, err = f.svc.Cards(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, *cards[0].TotalActiveMembers)
	assert.Equal(t, "66.7", cards[0].NewMembers.Percent.String())
	assert.Equal(t, "33.33", cards[2].NewMembers.BasePercent.String())
	assert.Equal(t, "33.33", cards[3].LeaveMembers.BasePercent.String())

	cards, err = f.svc.Cards(ctx, "paris")
	require.NoError(t, err)
	assert.Zero(t, *cards[0].TotalActiveMembers)
	assert.True(t, cards[0].NewMembers.Percent.IsZero(), "empty base yields zero")
	assert.True(t, cards[3].LeaveMembers.BasePercent.IsZero())

	_, err = f.svc.Cards(ctx, "rome")
	assert.ErrorIs(t, err, ErrHubNotFound)
}

func TestExportXLSX(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.report(t, "berlin/Desk", "2016-01", 2, 0, 0)
	f.report(t, "munich/Flex", "2016-01", 0, 1, 1)

	data, err := f.svc.ExportXLSX(ctx, ReportQuery{})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = book.Close() }()

	rows, err := book.GetRows(book.GetSheetName(book.GetActiveSheetIndex()))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "month", rows[0][0])
	assert.Equal(t, "leave_revenue", rows[0][10])
	assert.Equal(t, []string{"2016-01", "berlin", "Desk", "Full-Time", "250", "2", "500", "0", "0", "0", "0"}, rows[1])
	assert.Equal(t, "munich", rows[2][1])

	_, err = f.svc.ExportXLSX(ctx, ReportQuery{HubName: "paris"})
	assert.ErrorIs(t, err, ErrHubNotFound)
}

func TestListMembershipPlans(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := &models.Membership{ExternalID: "m1", HubID: f.berlin.ID, ConfirmedAt: day(t, "2016-01-01")}
	require.NoError(t, f.db.Create(m).Error)

	end1, end2 := day(t, "2016-02-01"), day(t, "2016-03-01")
	entries := []*models.MembershipPlan{
		{MembershipID: m.ID, HubPlanID: f.hp["berlin/Desk"].ID, StartDate: day(t, "2016-01-01"), EndDate: &end1},
		{MembershipID: m.ID, HubPlanID: f.hp["berlin/Flex"].ID, StartDate: end1, EndDate: &end2},
		{MembershipID: m.ID, HubPlanID: f.hp["berlin/Desk"].ID, StartDate: end2},
	}
	require.NoError(t, f.db.Create(&entries).Error)

	res, err := f.svc.ListMembershipPlans(ctx, &ListMembershipPlansRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	require.Len(t, res.Items, 3)
	assert.Equal(t, entries[0].ID, res.Items[0].ID)

	res, err = f.svc.ListMembershipPlans(ctx, &ListMembershipPlansRequest{
		Filters: []*types.CommonFilter{{Field: "hub_plan_id", Operator: types.CommonFilterOperatorEq, Values: []any{f.hp["berlin/Desk"].ID}}},
		SortBy:  "start_date",
		Size:    1,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, entries[2].ID, res.Items[0].ID, "desc by default")

	res, err = f.svc.ListMembershipPlans(ctx, &ListMembershipPlansRequest{
		Filters: []*types.CommonFilter{{Field: "end_date", Operator: types.CommonFilterOperatorIsNull}},
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].IsOpen())

	_, err = f.svc.ListMembershipPlans(ctx, &ListMembershipPlansRequest{
		Filters: []*types.CommonFilter{{Field: "1=1; --", Operator: types.CommonFilterOperatorEq, Values: []any{1}}},
	})
	assert.Error(t, err)
	_, err = f.svc.ListMembershipPlans(ctx, &ListMembershipPlansRequest{SortBy: "price"})
	assert.Error(t, err)
	_, err = f.svc.ListMembershipPlans(ctx, &ListMembershipPlansRequest{SortBy: "start_date", SortOrder: "up"})
	assert.Error(t, err)
}

func TestSetPlanType(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.svc.SetPlanType(ctx, f.flex.ID, "Ignore")
	require.NoError(t, err)
	assert.Equal(t, types.PlanTypeIgnore, p.Type)

	stored, err := store.Get[models.Plan](ctx, f.db, store.Key{"id": f.flex.ID})
	require.NoError(t, err)
	assert.Equal(t, types.PlanTypeIgnore, stored.Type)
	assert.True(t, stored.Price.Equal(decimal.NewFromInt(100)), "price untouched")

	_, err = f.svc.SetPlanType(ctx, f.flex.ID, "ignore")
	assert.ErrorIs(t, err, types.ErrUnknownPlanType)

	_, err = f.svc.SetPlanType(ctx, "missing", "Others")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
