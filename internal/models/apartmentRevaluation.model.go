package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApartmentRevaluation freezes both index values and both payments at the
// time of computation so later index corrections do not alter history.
type ApartmentRevaluation struct {
	BaseUUIDModel
	ReservationID                uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"     json:"reservationId"`
	ApartmentID                  uuid.UUID       `gorm:"type:uuid;not null;index"           json:"apartmentId"`
	StartDate                    time.Time       `gorm:"type:date;not null"                 json:"startDate"`
	StartCostIndexValue          decimal.Decimal `gorm:"type:decimal(16,2);not null"        json:"startCostIndexValue"`
	StartRightOfOccupancyPayment decimal.Decimal `gorm:"type:decimal(12,2);not null"        json:"startRightOfOccupancyPayment"`
	AlterationWork               decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"alterationWork"`
	EndDate                      time.Time       `gorm:"type:date;not null"                 json:"endDate"`
	EndCostIndexValue            decimal.Decimal `gorm:"type:decimal(16,2);not null"        json:"endCostIndexValue"`
	EndRightOfOccupancyPayment   decimal.Decimal `gorm:"type:decimal(12,2);not null"        json:"endRightOfOccupancyPayment"`
}

func (r *ApartmentRevaluation) BeforeUpdate(tx *gorm.DB) (err error) {
	// revaluations are audit records
	return gorm.ErrInvalidData
}
