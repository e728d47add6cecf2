package models

import "time"

type User struct {
	Base
	ExternalID string `gorm:"column:external_id;type:varchar(64);not null;uniqueIndex" json:"external_id"`
	Name       string `gorm:"column:name;type:varchar(255)" json:"name"`
	Email      string `gorm:"column:email;type:varchar(255)" json:"email"`
}

func (User) TableName() string { return "user" }

// Membership is one provider membership. ExternalID makes ingestion idempotent.
type Membership struct {
	Base
	ExternalID  string     `gorm:"column:external_id;type:varchar(64);not null;uniqueIndex" json:"external_id"`
	HubID       string     `gorm:"column:hub_id;type:varchar(36);not null;index" json:"hub_id"`
	UserID      *string    `gorm:"column:user_id;type:varchar(36)" json:"user_id"`
	ConfirmedAt time.Time  `gorm:"column:confirmed_at;type:date;not null;index" json:"confirmed_at"`
	CanceledTo  *time.Time `gorm:"column:canceled_to;type:date;index" json:"canceled_to"`
}

func (Membership) TableName() string { return "membership" }

// MembershipPlan is a ledger interval [StartDate, EndDate). A nil EndDate is the open entry.
type MembershipPlan struct {
	Base
	MembershipID string     `gorm:"column:membership_id;type:varchar(36);not null;index:idx_membership_start,priority:1" json:"membership_id"`
	HubPlanID    string     `gorm:"column:hub_plan_id;type:varchar(36);not null;index:idx_hub_plan_start,priority:1" json:"hub_plan_id"`
	StartDate    time.Time  `gorm:"column:start_date;type:date;not null;index:idx_membership_start,priority:2;index:idx_hub_plan_start,priority:2" json:"start_date"`
	EndDate      *time.Time `gorm:"column:end_date;type:date" json:"end_date"`
}

func (MembershipPlan) TableName() string { return "membership_plan" }

func (mp *MembershipPlan) IsOpen() bool { return mp != nil && mp.EndDate == nil }
