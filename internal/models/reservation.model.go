package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReservationState string

const (
	ReservationStateReserved   ReservationState = "reserved"
	ReservationStateTerminated ReservationState = "terminated"
)

// Reservation ties an accepted offer to an apartment. The opening payment is
// frozen when the offer is accepted.
type Reservation struct {
	BaseUUIDModel
	ApartmentID             uuid.UUID        `gorm:"type:uuid;not null;index"            json:"apartmentId"`
	ApplicationID           uuid.UUID        `gorm:"type:uuid;not null;index"            json:"applicationId"`
	OwnershipType           OwnershipType    `gorm:"type:varchar(10);not null"           json:"ownershipType"`
	State                   ReservationState `gorm:"type:varchar(20);not null;default:reserved" json:"state"`
	StartDate               time.Time        `gorm:"type:date;not null"                  json:"startDate"`
	RightOfOccupancyPayment *decimal.Decimal `gorm:"type:decimal(12,2)"                  json:"rightOfOccupancyPayment,omitempty"`
	EndDate                 *time.Time       `gorm:"type:date"                           json:"endDate,omitempty"`

	Revaluation *ApartmentRevaluation `gorm:"foreignKey:ReservationID" json:"revaluation,omitempty"`
}

func (r *Reservation) IsTerminated() bool {
	return r.State == ReservationStateTerminated
}
