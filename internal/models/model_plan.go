package models

import (
	"github.com/fatflowers/hubreport/pkg/types"

	"github.com/shopspring/decimal"
)

// Plan is keyed by name. Name and Price are fixed at first sighting.
type Plan struct {
	Base
	Name  string          `gorm:"column:name;type:varchar(255);not null;uniqueIndex" json:"name"`
	Type  types.PlanType  `gorm:"column:type;type:varchar(32);not null;index" json:"type"`
	Price decimal.Decimal `gorm:"column:price;type:decimal(20,4);not null" json:"price"`
}

func (Plan) TableName() string { return "plan" }

// HubPlan is the unit reports are aggregated against.
type HubPlan struct {
	Base
	HubID  string `gorm:"column:hub_id;type:varchar(36);not null;uniqueIndex:uniq_hub_plan,priority:1" json:"hub_id"`
	PlanID string `gorm:"column:plan_id;type:varchar(36);not null;uniqueIndex:uniq_hub_plan,priority:2" json:"plan_id"`
	Hub    *Hub   `gorm:"foreignKey:HubID" json:"hub,omitempty"`
	Plan   *Plan  `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (HubPlan) TableName() string { return "hub_plan" }
