package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportMonth marks a calendar month by its first day.
type ReportMonth struct {
	Base
	Date time.Time `gorm:"column:date;type:date;not null;uniqueIndex" json:"date"`
}

func (ReportMonth) TableName() string { return "report_month" }

// MemberReport holds cohort counters for one hub plan and month. The counters
// are recomputed from the ledger on every aggregation run.
type MemberReport struct {
	Base
	HubPlanID     string          `gorm:"column:hub_plan_id;type:varchar(36);not null;uniqueIndex:uniq_hub_plan_month,priority:1" json:"hub_plan_id"`
	ReportMonthID string          `gorm:"column:report_month_id;type:varchar(36);not null;uniqueIndex:uniq_hub_plan_month,priority:2" json:"report_month_id"`
	NewCount      int64           `gorm:"column:new_count;not null;default:0" json:"new_count"`
	NewRevenue    decimal.Decimal `gorm:"column:new_revenue;type:decimal(20,4);not null;default:0" json:"new_revenue"`
	RetainCount   int64           `gorm:"column:retain_count;not null;default:0" json:"retain_count"`
	RetainRevenue decimal.Decimal `gorm:"column:retain_revenue;type:decimal(20,4);not null;default:0" json:"retain_revenue"`
	LeaveCount    int64           `gorm:"column:leave_count;not null;default:0" json:"leave_count"`
	LeaveRevenue  decimal.Decimal `gorm:"column:leave_revenue;type:decimal(20,4);not null;default:0" json:"leave_revenue"`
	HubPlan       *HubPlan        `gorm:"foreignKey:HubPlanID" json:"hub_plan,omitempty"`
	ReportMonth   *ReportMonth    `gorm:"foreignKey:ReportMonthID" json:"report_month,omitempty"`
}

func (MemberReport) TableName() string { return "member_report" }

// Reset zeroes all six counters.
func (r *MemberReport) Reset() {
	r.NewCount, r.RetainCount, r.LeaveCount = 0, 0, 0
	r.NewRevenue, r.RetainRevenue, r.LeaveRevenue = decimal.Zero, decimal.Zero, decimal.Zero
}
