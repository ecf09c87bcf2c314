package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApartmentPriority is a HASO applicant's ranked claim on one apartment.
// Lower PriorityNumber is more preferred. Priorities are only ever
// deactivated, never deleted or reactivated.
type ApartmentPriority struct {
	BaseUUIDModel
	ApplicationID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_priority_apartment_application,priority:2;index" json:"applicationId"  validate:"required"`
	ApartmentID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_priority_apartment_application,priority:1"       json:"apartmentId"    validate:"required"`
	PriorityNumber int       `gorm:"type:int;not null"                                                                   json:"priorityNumber" validate:"min=0"`
	IsActive       bool      `gorm:"type:bool;default:true;not null;index"                                               json:"isActive"`

	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	Apartment   *Apartment   `gorm:"foreignKey:ApartmentID"   json:"apartment,omitempty"`
}

func (p *ApartmentPriority) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ApplicationID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if p.ApartmentID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if p.PriorityNumber < 0 {
		return gorm.ErrInvalidValue
	}
	return nil
}
