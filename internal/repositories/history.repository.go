package repositories

import (
	"context"

	"apartmentqueue/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const HISTORY_BATCH_SIZE = 500

type HistoryRepository interface {
	Append(ctx context.Context, tx *gorm.DB, events []*models.HistoryEvent) error
	ListForEntity(
		ctx context.Context,
		tx *gorm.DB,
		entityType models.HistoryEntityType,
		entityID uuid.UUID,
	) ([]*models.HistoryEvent, error)
	ListForBatch(ctx context.Context, tx *gorm.DB, batchID uuid.UUID) ([]*models.HistoryEvent, error)
}

type historyRepository struct {
	log logger.Logger
}

func NewHistoryRepository() HistoryRepository {
	return &historyRepository{
		log: logger.New("historyRepository"),
	}
}

func (r *historyRepository) Append(
	ctx context.Context,
	tx *gorm.DB,
	events []*models.HistoryEvent,
) error {
	if len(events) == 0 {
		return nil
	}

	if err := tx.WithContext(ctx).CreateInBatches(events, HISTORY_BATCH_SIZE).Error; err != nil {
		return r.log.Function("Append").
			Err("failed to append history events", err, "count", len(events))
	}
	return nil
}

func (r *historyRepository) ListForEntity(
	ctx context.Context,
	tx *gorm.DB,
	entityType models.HistoryEntityType,
	entityID uuid.UUID,
) ([]*models.HistoryEvent, error) {
	var events []*models.HistoryEvent
	if err := tx.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, r.log.Function("ListForEntity").
			Err("failed to list history", err, "entityType", entityType, "entityID", entityID)
	}
	return events, nil
}

func (r *historyRepository) ListForBatch(
	ctx context.Context,
	tx *gorm.DB,
	batchID uuid.UUID,
) ([]*models.HistoryEvent, error) {
	var events []*models.HistoryEvent
	if err := tx.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, r.log.Function("ListForBatch").
			Err("failed to list history batch", err, "batchID", batchID)
	}
	return events, nil
}
