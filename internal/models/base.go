package models

import (
	"time"

	"github.com/fatflowers/hubreport/pkg/tool"

	"gorm.io/gorm"
)

// Base carries the UUIDv7 primary key and gorm-managed timestamps.
type Base struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = tool.GenerateUUIDV7()
	}
	return nil
}

// All lists every persisted model, in dependency order.
func All() []any {
	return []any{
		&Location{},
		&Hub{},
		&User{},
		&Plan{},
		&HubPlan{},
		&Membership{},
		&MembershipPlan{},
		&ReportMonth{},
		&MemberReport{},
		&MembershipLog{},
		&CrawlLog{},
	}
}
