package repositories

import (
	"context"

	"apartmentqueue/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApartmentRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Apartment, error)
	GetOrCreate(
		ctx context.Context,
		tx *gorm.DB,
		id uuid.UUID,
		ownershipType models.OwnershipType,
	) (*models.Apartment, error)
	Upsert(ctx context.Context, tx *gorm.DB, apartment *models.Apartment) error
	MarkUnavailable(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*models.Apartment, error)
	ListByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.Apartment, error)
}

type apartmentRepository struct {
	log logger.Logger
}

func NewApartmentRepository() ApartmentRepository {
	return &apartmentRepository{
		log: logger.New("apartmentRepository"),
	}
}

func (r *apartmentRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*models.Apartment, error) {
	var apartment models.Apartment
	if err := tx.WithContext(ctx).First(&apartment, "id = ?", id).Error; err != nil {
		return nil, translate(err, "apartment", id)
	}
	return &apartment, nil
}

// GetOrCreate materializes an apartment the first time it is referenced.
// Existing rows are returned untouched.
func (r *apartmentRepository) GetOrCreate(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	ownershipType models.OwnershipType,
) (*models.Apartment, error) {
	log := r.log.Function("GetOrCreate")

	apartment := models.Apartment{ID: id}
	err := tx.WithContext(ctx).
		Where(models.Apartment{ID: id}).
		Attrs(models.Apartment{OwnershipType: ownershipType, IsAvailable: true}).
		FirstOrCreate(&apartment).Error
	if err != nil {
		return nil, log.Err("failed to get or create apartment", translate(err, "apartment", id), "apartmentID", id)
	}

	return &apartment, nil
}

func (r *apartmentRepository) Upsert(ctx context.Context, tx *gorm.DB, apartment *models.Apartment) error {
	log := r.log.Function("Upsert")

	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"ownership_type",
				"project_id",
				"right_of_occupancy_payment",
				"updated_at",
			}),
		}).
		Create(apartment).Error
	if err != nil {
		return log.Err("failed to upsert apartment", translate(err, "apartment", apartment.ID), "apartmentID", apartment.ID)
	}

	return nil
}

func (r *apartmentRepository) MarkUnavailable(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := r.log.Function("MarkUnavailable")

	result := tx.WithContext(ctx).
		Model(&models.Apartment{}).
		Where("id = ?", id).
		Update("is_available", false)
	if result.Error != nil {
		return log.Err("failed to mark apartment unavailable", result.Error, "apartmentID", id)
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "apartment", id)
	}

	return nil
}

func (r *apartmentRepository) ListByProject(
	ctx context.Context,
	tx *gorm.DB,
	projectID uuid.UUID,
) ([]*models.Apartment, error) {
	var apartments []*models.Apartment
	if err := tx.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id").
		Find(&apartments).Error; err != nil {
		return nil, r.log.Function("ListByProject").
			Err("failed to list project apartments", err, "projectID", projectID)
	}
	return apartments, nil
}

func (r *apartmentRepository) ListByIDs(
	ctx context.Context,
	tx *gorm.DB,
	ids []uuid.UUID,
) ([]*models.Apartment, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var apartments []*models.Apartment
	if err := tx.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&apartments).Error; err != nil {
		return nil, r.log.Function("ListByIDs").Err("failed to list apartments", err, "count", len(ids))
	}
	return apartments, nil
}
