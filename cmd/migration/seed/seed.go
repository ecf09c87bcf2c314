package seed

import (
	"time"

	"apartmentqueue/config"
	"apartmentqueue/internal/models"
	"apartmentqueue/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// demoProject is fixed so repeated seeds land on the same project.
var demoProject = uuid.MustParse("0192f5a4-0000-7000-8000-000000000001")

type seedApartment struct {
	id      string
	kind    models.OwnershipType
	payment string
}

var apartments = []seedApartment{
	{id: "0192f5a4-0000-7000-8000-0000000000a1", kind: models.OwnershipTypeHaso, payment: "18500.00"},
	{id: "0192f5a4-0000-7000-8000-0000000000a2", kind: models.OwnershipTypeHaso, payment: "21000.50"},
	{id: "0192f5a4-0000-7000-8000-0000000000a3", kind: models.OwnershipTypeHaso, payment: "24990.00"},
	{id: "0192f5a4-0000-7000-8000-0000000000b1", kind: models.OwnershipTypeHitas},
	{id: "0192f5a4-0000-7000-8000-0000000000b2", kind: models.OwnershipTypeHitas},
}

var costIndices = []struct {
	validFrom time.Time
	value     string
}{
	{utils.Date(2021, time.January, 1), "320.50"},
	{utils.Date(2022, time.January, 1), "336.10"},
	{utils.Date(2023, time.January, 1), "352.80"},
	{utils.Date(2024, time.January, 1), "358.40"},
}

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	if config.Environment == "production" {
		return log.Error("refusing to seed a production database")
	}
	log.Info("Seeding development data")

	for _, item := range apartments {
		apartment := models.Apartment{
			ID:            uuid.MustParse(item.id),
			OwnershipType: item.kind,
			ProjectID:     &demoProject,
			IsAvailable:   true,
		}
		if item.payment != "" {
			payment := decimal.RequireFromString(item.payment)
			apartment.RightOfOccupancyPayment = &payment
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&apartment).Error; err != nil {
			return log.Err("failed to seed apartment", err, "apartmentID", item.id)
		}
	}

	for _, item := range costIndices {
		index := models.CostIndex{
			ValidFrom: item.validFrom,
			Value:     decimal.RequireFromString(item.value),
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&index).Error; err != nil {
			return log.Err("failed to seed cost index", err, "validFrom", utils.FormatDate(item.validFrom))
		}
	}

	log.Info("Seed complete", "apartments", len(apartments), "costIndices", len(costIndices))
	return nil
}
