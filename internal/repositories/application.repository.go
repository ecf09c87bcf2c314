package repositories

import (
	"context"

	"apartmentqueue/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, application *models.Application) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Application, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Application, error)
	Update(ctx context.Context, tx *gorm.DB, application *models.Application) error
}

type applicationRepository struct {
	log logger.Logger
}

func NewApplicationRepository() ApplicationRepository {
	return &applicationRepository{
		log: logger.New("applicationRepository"),
	}
}

func (r *applicationRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	application *models.Application,
) error {
	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(application).Error; err != nil {
		return r.log.Function("Create").
			Err("failed to create application", translate(err, "application", application.ID))
	}
	return nil
}

func (r *applicationRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*models.Application, error) {
	var application models.Application
	if err := tx.WithContext(ctx).First(&application, "id = ?", id).Error; err != nil {
		return nil, translate(err, "application", id)
	}
	return &application, nil
}

// GetByIDForUpdate row-locks the application for the rest of the transaction.
func (r *applicationRepository) GetByIDForUpdate(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*models.Application, error) {
	var application models.Application
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&application, "id = ?", id).Error; err != nil {
		return nil, translate(err, "application", id)
	}
	return &application, nil
}

// Update persists the state fields. BeforeSave validation runs first, so an
// invalid state never reaches the database.
func (r *applicationRepository) Update(
	ctx context.Context,
	tx *gorm.DB,
	application *models.Application,
) error {
	log := r.log.Function("Update")

	if err := application.Validate(); err != nil {
		return err
	}

	err := tx.WithContext(ctx).
		Model(application).
		Select("is_approved", "is_rejected", "rejection_description", "offer_accepted", "updated_at").
		Updates(application).Error
	if err != nil {
		return log.Err("failed to update application", translate(err, "application", application.ID), "applicationID", application.ID)
	}

	return nil
}
