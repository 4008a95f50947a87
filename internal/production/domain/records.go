package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ProductionDay is the stored day header.
type ProductionDay struct {
	ID             snowflake.ID                `gorm:"primaryKey"`
	OrgID          snowflake.ID                `gorm:"not null;uniqueIndex:ux_production_days_org_date"`
	Date           string                      `gorm:"type:text;not null;uniqueIndex:ux_production_days_org_date"`
	SelectedOrders datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	TotalKG        float64                     `gorm:"not null"`
	CreatedAt      time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ProductionDay) TableName() string { return "production_days" }

// ProductionRow is one stored flat record: a (machine, shift) slot of a
// submitted day.
type ProductionRow struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	OrgID        snowflake.ID `gorm:"not null;index"`
	DayID        snowflake.ID `gorm:"not null;index"`
	Section      SectionID    `gorm:"type:text;not null"`
	Machine      string       `gorm:"type:text"`
	Shift        string       `gorm:"type:text;not null"`
	OrderID      string       `gorm:"type:text"`
	ProductionKG float64      `gorm:"not null"`
	Count        string       `gorm:"type:text"`
	Hank         string       `gorm:"type:text"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ProductionRow) TableName() string { return "production_rows" }

// Flat returns the row's wire shape.
func (r ProductionRow) Flat() FlatRecord {
	return FlatRecord{
		Machine:      r.Machine,
		Shift:        r.Shift,
		OrderID:      r.OrderID,
		ProductionKG: r.ProductionKG,
		Count:        r.Count,
		Hank:         r.Hank,
	}
}
