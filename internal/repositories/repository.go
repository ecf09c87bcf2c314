package repositories

import (
	"errors"

	"apartmentqueue/internal/types"

	"gorm.io/gorm"
)

type Repository struct {
	Apartment   ApartmentRepository
	Application ApplicationRepository
	Priority    ApartmentPriorityRepository
	HitasQueue  HitasQueueRepository
	Reservation ReservationRepository
	Revaluation RevaluationRepository
	CostIndex   CostIndexRepository
	History     HistoryRepository
}

func New() Repository {
	return Repository{
		Apartment:   NewApartmentRepository(),
		Application: NewApplicationRepository(),
		Priority:    NewApartmentPriorityRepository(),
		HitasQueue:  NewHitasQueueRepository(),
		Reservation: NewReservationRepository(),
		Revaluation: NewRevaluationRepository(),
		CostIndex:   NewCostIndexRepository(),
		History:     NewHistoryRepository(),
	}
}

// translate maps gorm sentinel errors onto the domain taxonomy.
func translate(err error, entity string, id any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return types.NotFoundf("%s %v", entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return types.Validationf("%s %v already exists", entity, id)
	case errors.Is(err, gorm.ErrInvalidValue), errors.Is(err, gorm.ErrInvalidData):
		return types.Validationf("%s %v: %v", entity, id, err)
	default:
		return err
	}
}
