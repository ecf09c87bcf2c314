package repositories

import (
	"context"

	"apartmentqueue/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HitasQueueRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entry *models.HitasQueueEntry) error
	ListForApartments(
		ctx context.Context,
		tx *gorm.DB,
		apartmentIDs []uuid.UUID,
	) ([]*models.HitasQueueEntry, error)
	UpdateOrders(ctx context.Context, tx *gorm.DB, entries []*models.HitasQueueEntry) error
}

type hitasQueueRepository struct {
	log logger.Logger
}

func NewHitasQueueRepository() HitasQueueRepository {
	return &hitasQueueRepository{
		log: logger.New("hitasQueueRepository"),
	}
}

// Append places the application at the end of the apartment's queue. The
// apartment row is locked so concurrent submissions get distinct orders. An
// existing entry for the same application is returned unchanged.
func (r *hitasQueueRepository) Append(
	ctx context.Context,
	tx *gorm.DB,
	entry *models.HitasQueueEntry,
) error {
	log := r.log.Function("Append")
	db := tx.WithContext(ctx)

	if err := db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Select("id").
		First(&models.Apartment{}, "id = ?", entry.ApartmentID).Error; err != nil {
		return translate(err, "apartment", entry.ApartmentID)
	}

	var existing models.HitasQueueEntry
	err := db.Where("apartment_id = ? AND application_id = ?", entry.ApartmentID, entry.ApplicationID).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return log.Err("failed to look up queue entry", err, "apartmentID", entry.ApartmentID)
	}
	if existing.ID != uuid.Nil {
		*entry = existing
		return nil
	}

	var highest int
	if err := db.Model(&models.HitasQueueEntry{}).
		Where("apartment_id = ?", entry.ApartmentID).
		Select("COALESCE(MAX(queue_order), 0)").
		Scan(&highest).Error; err != nil {
		return log.Err("failed to read queue tail", err, "apartmentID", entry.ApartmentID)
	}

	entry.Order = highest + 1
	if err := db.Omit("Application").Create(entry).Error; err != nil {
		return log.Err(
			"failed to append queue entry",
			translate(err, "hitas queue entry", entry.ApartmentID),
			"apartmentID", entry.ApartmentID,
			"applicationID", entry.ApplicationID,
		)
	}

	return nil
}

// ListForApartments returns entries with their application preloaded, ordered
// by apartment then queue order.
func (r *hitasQueueRepository) ListForApartments(
	ctx context.Context,
	tx *gorm.DB,
	apartmentIDs []uuid.UUID,
) ([]*models.HitasQueueEntry, error) {
	if len(apartmentIDs) == 0 {
		return nil, nil
	}

	var entries []*models.HitasQueueEntry
	if err := tx.WithContext(ctx).
		Preload("Application").
		Where("apartment_id IN ?", apartmentIDs).
		Order("apartment_id, queue_order").
		Find(&entries).Error; err != nil {
		return nil, r.log.Function("ListForApartments").
			Err("failed to list hitas queue entries", err, "apartmentCount", len(apartmentIDs))
	}
	return entries, nil
}

func (r *hitasQueueRepository) UpdateOrders(
	ctx context.Context,
	tx *gorm.DB,
	entries []*models.HitasQueueEntry,
) error {
	log := r.log.Function("UpdateOrders")

	for _, entry := range entries {
		if err := tx.WithContext(ctx).
			Model(&models.HitasQueueEntry{}).
			Where("id = ?", entry.ID).
			Update("queue_order", entry.Order).Error; err != nil {
			return log.Err("failed to update queue order", err, "entryID", entry.ID)
		}
	}

	return nil
}
