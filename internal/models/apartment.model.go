package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Apartment is referenced by its stable external identifier. Rows are created
// lazily on first reference and are never hard deleted.
type Apartment struct {
	ID                      uuid.UUID        `gorm:"type:uuid;primaryKey"                      json:"id"`
	OwnershipType           OwnershipType    `gorm:"type:varchar(10);not null;index"           json:"ownershipType"                     validate:"required,oneof=haso hitas"`
	ProjectID               *uuid.UUID       `gorm:"type:uuid;index:idx_apartments_project"    json:"projectId,omitempty"`
	IsAvailable             bool             `gorm:"type:bool;default:true;not null"           json:"isAvailable"`
	RightOfOccupancyPayment *decimal.Decimal `gorm:"type:decimal(12,2)"                        json:"rightOfOccupancyPayment,omitempty"`
	CreatedAt               time.Time        `gorm:"autoCreateTime"                            json:"createdAt"`
	UpdatedAt               time.Time        `gorm:"autoUpdateTime"                            json:"updatedAt"`
}

func (a *Apartment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if !a.OwnershipType.IsValid() {
		return gorm.ErrInvalidValue
	}
	return nil
}
