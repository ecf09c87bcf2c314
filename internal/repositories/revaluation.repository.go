package repositories

import (
	"context"

	"apartmentqueue/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RevaluationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, revaluation *models.ApartmentRevaluation) error
	// LatestForApartment returns nil without error when the apartment has
	// never been revalued.
	LatestForApartment(
		ctx context.Context,
		tx *gorm.DB,
		apartmentID uuid.UUID,
	) (*models.ApartmentRevaluation, error)
}

type revaluationRepository struct {
	log logger.Logger
}

func NewRevaluationRepository() RevaluationRepository {
	return &revaluationRepository{
		log: logger.New("revaluationRepository"),
	}
}

func (r *revaluationRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	revaluation *models.ApartmentRevaluation,
) error {
	if err := tx.WithContext(ctx).Create(revaluation).Error; err != nil {
		return r.log.Function("Create").Err(
			"failed to create revaluation",
			translate(err, "revaluation for reservation", revaluation.ReservationID),
			"reservationID", revaluation.ReservationID,
		)
	}
	return nil
}

func (r *revaluationRepository) LatestForApartment(
	ctx context.Context,
	tx *gorm.DB,
	apartmentID uuid.UUID,
) (*models.ApartmentRevaluation, error) {
	var revaluations []*models.ApartmentRevaluation
	if err := tx.WithContext(ctx).
		Where("apartment_id = ?", apartmentID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&revaluations).Error; err != nil {
		return nil, r.log.Function("LatestForApartment").
			Err("failed to load latest revaluation", err, "apartmentID", apartmentID)
	}

	if len(revaluations) == 0 {
		return nil, nil
	}
	return revaluations[0], nil
}
