package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CostIndex is one point of the date-ordered cost index series.
type CostIndex struct {
	BaseModel
	ValidFrom time.Time       `gorm:"type:date;not null;uniqueIndex" json:"validFrom" validate:"required"`
	Value     decimal.Decimal `gorm:"type:decimal(16,2);not null"    json:"value"     validate:"required"`
}

func (c *CostIndex) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ValidFrom.IsZero() {
		return gorm.ErrInvalidValue
	}
	if !c.Value.IsPositive() {
		return gorm.ErrInvalidValue
	}
	return nil
}
