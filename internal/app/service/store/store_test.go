package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fatflowers/hubreport/internal/models"
	"github.com/fatflowers/hubreport/internal/platform/db/dbtest"
	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindLocation, KindOf[models.Location]())
	assert.Equal(t, KindHub, KindOf[models.Hub]())
	assert.Equal(t, KindUser, KindOf[models.User]())
	assert.Equal(t, KindPlan, KindOf[models.Plan]())
	assert.Equal(t, KindHubPlan, KindOf[models.HubPlan]())
	assert.Equal(t, KindMembership, KindOf[models.Membership]())
	assert.Equal(t, KindMembershipPlan, KindOf[models.MembershipPlan]())
	assert.Equal(t, KindReportMonth, KindOf[models.ReportMonth]())
	assert.Equal(t, KindMemberReport, KindOf[models.MemberReport]())
}

func TestCreateOrGet_Idempotent(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.New(t)

	p1, created, err := CreateOrGetPlan(ctx, gdb, "Fixed Desk", decimal.NewFromInt(250), types.PlanTypeFullTime)
	require.NoError(t, err)
	assert.True(t, created)

	// second sighting with another price keeps the first one
	p2, created, err := CreateOrGetPlan(ctx, gdb, "Fixed Desk", decimal.NewFromInt(300), types.PlanTypeOthers)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p1.ID, p2.ID)
	assert.True(t, decimal.NewFromInt(250).Equal(p2.Price), p2.Price.String())
	assert.Equal(t, types.PlanTypeFullTime, p2.Type)

	var n int64
	require.NoError(t, gdb.Model(&models.Plan{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCreateOrGet_WithinTransaction(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.New(t)

	err := gdb.Transaction(func(tx *gorm.DB) error {
		loc, err := CreateOrGetLocation(ctx, tx, "Berlin")
		require.NoError(t, err)
		hub, created, err := CreateOrGetHub(ctx, tx, "berlin", &loc.ID)
		require.NoError(t, err)
		assert.True(t, created)
		again, created, err := CreateOrGetHub(ctx, tx, "berlin", nil)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, hub.ID, again.ID)
		require.NotNil(t, again.LocationID)
		assert.Equal(t, loc.ID, *again.LocationID)
		return nil
	})
	require.NoError(t, err)
}

func TestCreateOrGetReportMonth_NormalizesToFirstDay(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.New(t)

	a, err := CreateOrGetReportMonth(ctx, gdb, day(2016, 2, 17))
	require.NoError(t, err)
	b, err := CreateOrGetReportMonth(ctx, gdb, day(2016, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.True(t, day(2016, 2, 1).Equal(b.Date))
}

func TestGetAndLock_NotFound(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.New(t)

	_, err := FindHubByName(ctx, gdb, "nowhere")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = Lock[models.Membership](ctx, gdb, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = FindHubs(ctx, gdb, "nowhere")
	require.ErrorIs(t, err, ErrNotFound)
}

type ledgerFixture struct {
	hub        *models.Hub
	planA      *models.Plan
	planB      *models.Plan
	hubPlanA   *models.HubPlan
	hubPlanB   *models.HubPlan
	membership *models.Membership
}

func seedLedger(t *testing.T, gdb *gorm.DB) ledgerFixture {
	t.Helper()
	ctx := context.Background()
	var f ledgerFixture
	var err error
	f.hub, _, err = CreateOrGetHub(ctx, gdb, "berlin", nil)
	require.NoError(t, err)
	f.planA, _, err = CreateOrGetPlan(ctx, gdb, "A", decimal.NewFromInt(100), types.PlanTypeFullTime)
	require.NoError(t, err)
	f.planB, _, err = CreateOrGetPlan(ctx, gdb, "B", decimal.NewFromInt(50), types.PlanTypePartTime)
	require.NoError(t, err)
	f.hubPlanA, err = CreateOrGetHubPlan(ctx, gdb, f.hub.ID, f.planA.ID)
	require.NoError(t, err)
	f.hubPlanB, err = CreateOrGetHubPlan(ctx, gdb, f.hub.ID, f.planB.ID)
	require.NoError(t, err)
	f.membership, _, err = CreateOrGetMembership(ctx, gdb, "m-1", f.hub.ID, day(2016, 1, 10))
	require.NoError(t, err)
	return f
}

func TestCurrentOpenEntry(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.New(t)
	f := seedLedger(t, gdb)

	open, err := CurrentOpenEntry(ctx, gdb, f.membership.ID)
	require.NoError(t, err)
	assert.Nil(t, open)

	require.NoError(t, Insert(ctx, gdb, &models.MembershipPlan{MembershipID: f.membership.ID, HubPlanID: f.hubPlanA.ID, StartDate: day(2016, 1, 10), EndDate: ptr(day(2016, 2, 1))}))
	require.NoError(t, Insert(ctx, gdb, &models.MembershipPlan{MembershipID: f.membership.ID, HubPlanID: f.hubPlanB.ID, StartDate: day(2016, 2, 1)}))

	open, err = CurrentOpenEntry(ctx, gdb, f.membership.ID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, f.hubPlanB.ID, open.HubPlanID)

	latest, err := LatestEntry(ctx, gdb, f.membership.ID)
	require.NoError(t, err)
	assert.Equal(t, open.ID, latest.ID)

	require.NoError(t, Insert(ctx, gdb, &models.MembershipPlan{MembershipID: f.membership.ID, HubPlanID: f.hubPlanA.ID, StartDate: day(2016, 3, 1)}))
	_, err = CurrentOpenEntry(ctx, gdb, f.membership.ID)
	require.ErrorIs(t, err, ErrLedgerCorrupted)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.New(t)
	f := seedLedger(t, gdb)

	require.NoError(t, Update(ctx, gdb, f.membership, map[string]any{"canceled_to": day(2016, 3, 5)}))
	got, err := Lock[models.Membership](ctx, gdb, f.membership.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CanceledTo)
	assert.True(t, day(2016, 3, 5).Equal(*got.CanceledTo))
}

func TestIntervalsTouching(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.New(t)
	f := seedLedger(t, gdb)

	insert := func(start time.Time, end *time.Time) {
		require.NoError(t, Insert(ctx, gdb, &models.MembershipPlan{MembershipID: f.membership.ID, HubPlanID: f.hubPlanA.ID, StartDate: start, EndDate: end}))
	}
	insert(day(2015, 11, 1), ptr(day(2015, 12, 31))) // ended before
	insert(day(2015, 12, 1), ptr(day(2016, 1, 1)))   // ends on first day
	insert(day(2016, 1, 31), nil)                    // starts on last day
	insert(day(2016, 2, 1), nil)                     // starts after

	got, err := IntervalsTouching(ctx, gdb, f.hubPlanA.ID, dateutil.MonthWindow(day(2016, 1, 1)))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFindHubPlans(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.New(t)
	f := seedLedger(t, gdb)
	other, _, err := CreateOrGetHub(ctx, gdb, "paris", nil)
	require.NoError(t, err)
	_, err = CreateOrGetHubPlan(ctx, gdb, other.ID, f.planA.ID)
	require.NoError(t, err)

	all, err := FindHubPlans(ctx, gdb, HubPlanFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	berlin, err := FindHubPlans(ctx, gdb, HubPlanFilter{HubID: f.hub.ID})
	require.NoError(t, err)
	assert.Len(t, berlin, 2)

	full, err := FindHubPlans(ctx, gdb, HubPlanFilter{PlanTypes: []types.PlanType{types.PlanTypeFullTime}})
	require.NoError(t, err)
	require.Len(t, full, 2)
	for _, hp := range full {
		require.NotNil(t, hp.Plan)
		require.NotNil(t, hp.Hub)
		assert.Equal(t, "A", hp.Plan.Name)
	}

	hp, err := GetHubPlan(ctx, gdb, f.hubPlanB.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", hp.Plan.Name)
	assert.Equal(t, "berlin", hp.Hub.Name)

	hubs, err := FindHubs(ctx, gdb)
	require.NoError(t, err)
	assert.Equal(t, []string{"berlin", "paris"}, []string{hubs[0].Name, hubs[1].Name})
}

// recordSQL opens a dry-run postgres session that renders statements without
// a server and collects every query it builds.
func recordSQL(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	gdb, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=hubreport dbname=hubreport sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	var sqls []string
	require.NoError(t, gdb.Callback().Query().After("gorm:query").Register("test:record_sql", func(db *gorm.DB) {
		sqls = append(sqls, db.Statement.SQL.String())
	}))
	return gdb, &sqls
}

func TestLedgerReadsLockRows(t *testing.T) {
	ctx := context.Background()
	gdb, sqls := recordSQL(t)

	_, err := OpenEntries(ctx, gdb, "m1")
	require.NoError(t, err)
	_, err = LatestEntry(ctx, gdb, "m1")
	require.NoError(t, err)
	_, err = Get[models.Hub](ctx, forUpdate(ctx, gdb), Key{"name": "berlin"})
	require.NoError(t, err)
	_, err = Get[models.Hub](ctx, gdb, Key{"name": "berlin"})
	require.NoError(t, err)

	require.Len(t, *sqls, 4)
	for _, q := range (*sqls)[:3] {
		assert.Contains(t, q, "FOR UPDATE")
	}
	assert.NotContains(t, (*sqls)[3], "FOR UPDATE", "plain reads stay unlocked")
}
