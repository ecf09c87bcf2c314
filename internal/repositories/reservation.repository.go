package repositories

import (
	"context"

	"apartmentqueue/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Reservation, error)
	Terminate(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
}

type reservationRepository struct {
	log logger.Logger
}

func NewReservationRepository() ReservationRepository {
	return &reservationRepository{
		log: logger.New("reservationRepository"),
	}
}

func (r *reservationRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	reservation *models.Reservation,
) error {
	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(reservation).Error; err != nil {
		return r.log.Function("Create").Err(
			"failed to create reservation",
			translate(err, "reservation for application", reservation.ApplicationID),
			"apartmentID", reservation.ApartmentID,
		)
	}
	return nil
}

func (r *reservationRepository) GetByIDForUpdate(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&reservation, "id = ?", id).Error; err != nil {
		return nil, translate(err, "reservation", id)
	}
	return &reservation, nil
}

func (r *reservationRepository) Terminate(
	ctx context.Context,
	tx *gorm.DB,
	reservation *models.Reservation,
) error {
	err := tx.WithContext(ctx).
		Model(reservation).
		Select("state", "end_date", "updated_at").
		Updates(reservation).Error
	if err != nil {
		return r.log.Function("Terminate").
			Err("failed to terminate reservation", err, "reservationID", reservation.ID)
	}
	return nil
}
