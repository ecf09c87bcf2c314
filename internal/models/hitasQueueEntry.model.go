package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HitasQueueEntry places one HITAS application in one apartment's queue.
// Order is assigned incrementally on submission and reassigned by the lottery.
type HitasQueueEntry struct {
	BaseUUIDModel
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_hitas_apartment_application,priority:2;index" json:"applicationId" validate:"required"`
	ApartmentID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_hitas_apartment_application,priority:1"       json:"apartmentId"   validate:"required"`
	Order         int       `gorm:"column:queue_order;type:int;not null"                                             json:"order"         validate:"min=1"`

	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
}

func (e *HitasQueueEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ApplicationID == uuid.Nil || e.ApartmentID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if e.Order < 1 {
		return gorm.ErrInvalidValue
	}
	return nil
}
