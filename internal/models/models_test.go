package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	names := map[string]interface{ TableName() string }{
		"location":        Location{},
		"hub":             Hub{},
		"user":            User{},
		"plan":            Plan{},
		"hub_plan":        HubPlan{},
		"membership":      Membership{},
		"membership_plan": MembershipPlan{},
		"report_month":    ReportMonth{},
		"member_report":   MemberReport{},
		"membership_log":  MembershipLog{},
		"crawl_log":       CrawlLog{},
	}
	for want, m := range names {
		require.Equal(t, want, m.TableName())
	}
	assert.Len(t, All(), len(names))
}

func TestBase_BeforeCreateKeepsExplicitID(t *testing.T) {
	b := &Base{}
	require.NoError(t, b.BeforeCreate(nil))
	assert.Len(t, b.ID, 36)

	b2 := &Base{ID: "fixed"}
	require.NoError(t, b2.BeforeCreate(nil))
	assert.Equal(t, "fixed", b2.ID)
}

func TestMembershipPlan_IsOpen(t *testing.T) {
	end := time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, (&MembershipPlan{}).IsOpen())
	assert.False(t, (&MembershipPlan{EndDate: &end}).IsOpen())
	var nilPlan *MembershipPlan
	assert.False(t, nilPlan.IsOpen())
}

func TestMemberReport_Reset(t *testing.T) {
	r := &MemberReport{NewCount: 3, NewRevenue: decimal.NewFromInt(30), RetainCount: 1, LeaveCount: 2, LeaveRevenue: decimal.NewFromInt(5)}
	r.Reset()
	assert.Zero(t, r.NewCount+r.RetainCount+r.LeaveCount)
	assert.True(t, r.NewRevenue.IsZero() && r.RetainRevenue.IsZero() && r.LeaveRevenue.IsZero())
}
