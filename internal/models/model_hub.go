package models

type Location struct {
	Base
	Name string `gorm:"column:name;type:varchar(255);not null;uniqueIndex" json:"name"`
}

func (Location) TableName() string { return "location" }

// Hub is created from configuration or the admin API and never deleted.
type Hub struct {
	Base
	Name       string    `gorm:"column:name;type:varchar(255);not null;uniqueIndex" json:"name"`
	LocationID *string   `gorm:"column:location_id;type:varchar(36)" json:"location_id"`
	Location   *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

func (Hub) TableName() string { return "hub" }
