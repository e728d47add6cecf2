package models

import (
	"time"

	"github.com/fatflowers/hubreport/pkg/types"

	"gorm.io/datatypes"
)

// MembershipLog records every ledger mutation.
// Use case: troubleshooting.
type MembershipLog struct {
	ID           string                       `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	MembershipID string                       `gorm:"column:membership_id;type:varchar(36);not null;index" json:"membership_id"`
	Reason       types.MembershipChangeReason `gorm:"column:reason;type:varchar(32);not null" json:"reason"`
	AsOf         time.Time                    `gorm:"column:as_of;type:date;not null" json:"as_of"`
	// Before is the interval as it was before the change; null for inserts.
	Before datatypes.JSONType[*MembershipPlan] `gorm:"column:before" json:"before"`
	// After is the interval as written.
	After     datatypes.JSONType[*MembershipPlan] `gorm:"column:after" json:"after"`
	Extra     datatypes.JSONMap                   `gorm:"column:extra" json:"extra"`
	CreatedAt time.Time                           `json:"created_at"`
}

func (MembershipLog) TableName() string { return "membership_log" }

// CrawlLog is written once per hub and crawl date attempt.
type CrawlLog struct {
	ID        string            `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	HubID     string            `gorm:"column:hub_id;type:varchar(36);not null;index:idx_hub_crawl_date,priority:1" json:"hub_id"`
	CrawlDate time.Time         `gorm:"column:crawl_date;type:date;not null;index:idx_hub_crawl_date,priority:2" json:"crawl_date"`
	TraceID   string            `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	Status    types.CrawlStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	Processed int               `gorm:"column:processed;not null;default:0" json:"processed"`
	Skipped   int               `gorm:"column:skipped;not null;default:0" json:"skipped"`
	Failed    int               `gorm:"column:failed;not null;default:0" json:"failed"`
	Reason    string            `gorm:"column:reason;type:text" json:"reason"`
	Result    datatypes.JSON    `gorm:"column:result" json:"result"`
	CreatedAt time.Time         `json:"created_at"`
}

func (CrawlLog) TableName() string { return "crawl_log" }
