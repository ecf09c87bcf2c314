package repositories

import (
	"context"

	"apartmentqueue/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriorityCandidate is an active priority joined with the owning
// application's ordering key and approval flag.
type PriorityCandidate struct {
	ID                 uuid.UUID
	ApartmentID        uuid.UUID
	ApplicationID      uuid.UUID
	PriorityNumber     int
	IsActive           bool
	RightOfOccupancyID int
	IsApproved         bool
}

type ApartmentPriorityRepository interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, priority *models.ApartmentPriority) error
	ListForApplication(
		ctx context.Context,
		tx *gorm.DB,
		applicationID uuid.UUID,
	) ([]*models.ApartmentPriority, error)
	ListActiveCandidates(
		ctx context.Context,
		tx *gorm.DB,
		apartmentIDs []uuid.UUID,
	) ([]PriorityCandidate, error)
	ApartmentIDsForApplications(
		ctx context.Context,
		tx *gorm.DB,
		applicationIDs []uuid.UUID,
	) ([]uuid.UUID, error)
	Deactivate(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	LockResolution(ctx context.Context, tx *gorm.DB) error
}

// RESOLUTION_LOCK_KEY is the pg_advisory_xact_lock key serializing
// first-place resolution passes across processes.
const RESOLUTION_LOCK_KEY int64 = 0x6861736f5f726573

type apartmentPriorityRepository struct {
	log logger.Logger
}

func NewApartmentPriorityRepository() ApartmentPriorityRepository {
	return &apartmentPriorityRepository{
		log: logger.New("apartmentPriorityRepository"),
	}
}

// GetOrCreate keys on (apartment, application) only. An existing row keeps
// its id, priority number and active flag. A preset id is used for the
// insert and never for the lookup.
func (r *apartmentPriorityRepository) GetOrCreate(
	ctx context.Context,
	tx *gorm.DB,
	priority *models.ApartmentPriority,
) error {
	log := r.log.Function("GetOrCreate")

	attrs := &models.ApartmentPriority{
		PriorityNumber: priority.PriorityNumber,
		IsActive:       true,
	}
	attrs.ID = priority.ID
	priority.ID = uuid.Nil

	err := tx.WithContext(ctx).
		Where(&models.ApartmentPriority{
			ApartmentID:   priority.ApartmentID,
			ApplicationID: priority.ApplicationID,
		}).
		Attrs(attrs).
		Omit("Application", "Apartment").
		FirstOrCreate(priority).Error
	if err != nil {
		return log.Err(
			"failed to get or create priority",
			translate(err, "apartment priority", priority.ApartmentID),
			"applicationID", priority.ApplicationID,
			"apartmentID", priority.ApartmentID,
		)
	}

	return nil
}

func (r *apartmentPriorityRepository) ListForApplication(
	ctx context.Context,
	tx *gorm.DB,
	applicationID uuid.UUID,
) ([]*models.ApartmentPriority, error) {
	var priorities []*models.ApartmentPriority
	if err := tx.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("priority_number ASC").
		Find(&priorities).Error; err != nil {
		return nil, r.log.Function("ListForApplication").
			Err("failed to list application priorities", err, "applicationID", applicationID)
	}
	return priorities, nil
}

// ListActiveCandidates loads every active HASO priority on the given
// apartments. A nil slice means all apartments.
func (r *apartmentPriorityRepository) ListActiveCandidates(
	ctx context.Context,
	tx *gorm.DB,
	apartmentIDs []uuid.UUID,
) ([]PriorityCandidate, error) {
	if apartmentIDs != nil && len(apartmentIDs) == 0 {
		return nil, nil
	}

	query := tx.WithContext(ctx).
		Table("apartment_priorities AS p").
		Select(`p.id, p.apartment_id, p.application_id, p.priority_number, p.is_active,
			a.right_of_occupancy_id, a.is_approved`).
		Joins("JOIN applications AS a ON a.id = p.application_id AND a.deleted_at IS NULL").
		Where("p.is_active AND p.deleted_at IS NULL").
		Where("a.type = ? AND a.right_of_occupancy_id IS NOT NULL", models.OwnershipTypeHaso)
	if apartmentIDs != nil {
		query = query.Where("p.apartment_id IN ?", apartmentIDs)
	}

	var candidates []PriorityCandidate
	if err := query.Order("p.apartment_id, a.right_of_occupancy_id").Scan(&candidates).Error; err != nil {
		return nil, r.log.Function("ListActiveCandidates").
			Err("failed to list active priorities", err, "apartmentCount", len(apartmentIDs))
	}
	return candidates, nil
}

func (r *apartmentPriorityRepository) ApartmentIDsForApplications(
	ctx context.Context,
	tx *gorm.DB,
	applicationIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	if len(applicationIDs) == 0 {
		return nil, nil
	}

	var apartmentIDs []uuid.UUID
	if err := tx.WithContext(ctx).
		Model(&models.ApartmentPriority{}).
		Distinct("apartment_id").
		Where("application_id IN ?", applicationIDs).
		Pluck("apartment_id", &apartmentIDs).Error; err != nil {
		return nil, r.log.Function("ApartmentIDsForApplications").
			Err("failed to list apartments for applications", err, "applicationCount", len(applicationIDs))
	}
	return apartmentIDs, nil
}

// Deactivate flips active priorities to inactive in one statement and
// reports how many rows changed. Already inactive rows are left alone.
func (r *apartmentPriorityRepository) Deactivate(
	ctx context.Context,
	tx *gorm.DB,
	ids []uuid.UUID,
) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := tx.WithContext(ctx).
		Model(&models.ApartmentPriority{}).
		Where("id IN ? AND is_active", ids).
		Update("is_active", false)
	if result.Error != nil {
		return 0, r.log.Function("Deactivate").
			Err("failed to deactivate priorities", result.Error, "count", len(ids))
	}
	return result.RowsAffected, nil
}

// LockResolution blocks until no other transaction holds the resolution lock.
// The lock is released when the transaction ends.
func (r *apartmentPriorityRepository) LockResolution(ctx context.Context, tx *gorm.DB) error {
	if err := tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", RESOLUTION_LOCK_KEY).Error; err != nil {
		return r.log.Function("LockResolution").Err("failed to take resolution lock", err)
	}
	return nil
}
