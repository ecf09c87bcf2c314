package services

import (
	"context"
	"encoding/json"

	"apartmentqueue/internal/events"
	"apartmentqueue/internal/models"
	"apartmentqueue/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventPublisher is satisfied by *events.EventBus.
type EventPublisher interface {
	Publish(channel events.Channel, event events.Event) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(events.Channel, events.Event) error { return nil }

// historyBatch collects change-log entries written by one operation so they
// share a batch id and land in a single insert.
type historyBatch struct {
	id     uuid.UUID
	events []*models.HistoryEvent
}

func newHistoryBatch() *historyBatch {
	return &historyBatch{id: uuid.New()}
}

func (b *historyBatch) add(
	entityType models.HistoryEntityType,
	entityID uuid.UUID,
	action models.HistoryAction,
	reason string,
	payload map[string]any,
) {
	event := &models.HistoryEvent{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Reason:     reason,
		BatchID:    b.id,
	}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			event.Payload = datatypes.JSON(data)
		}
	}
	event.ID = uuid.New()
	b.events = append(b.events, event)
}

func (b *historyBatch) flush(ctx context.Context, tx *gorm.DB, repo repositories.HistoryRepository) error {
	if err := repo.Append(ctx, tx, b.events); err != nil {
		return err
	}
	b.events = nil
	return nil
}

type HistoryService struct {
	tx    Transactor
	repos repositories.Repository
	log   logger.Logger
}

func NewHistoryService(tx Transactor, repos repositories.Repository) *HistoryService {
	return &HistoryService{
		tx:    tx,
		repos: repos,
		log:   logger.New("historyService"),
	}
}

func (s *HistoryService) ListForEntity(
	ctx context.Context,
	entityType models.HistoryEntityType,
	entityID uuid.UUID,
) ([]*models.HistoryEvent, error) {
	var history []*models.HistoryEvent
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		history, err = s.repos.History.ListForEntity(ctx, tx, entityType, entityID)
		return err
	})
	if err != nil {
		return nil, s.log.Function("ListForEntity").
			Err("failed to list history", err, "entityType", entityType, "entityID", entityID)
	}
	return history, nil
}

func (s *HistoryService) ListForBatch(ctx context.Context, batchID uuid.UUID) ([]*models.HistoryEvent, error) {
	var history []*models.HistoryEvent
	err := s.tx.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		history, err = s.repos.History.ListForBatch(ctx, tx, batchID)
		return err
	})
	if err != nil {
		return nil, s.log.Function("ListForBatch").Err("failed to list history batch", err, "batchID", batchID)
	}
	return history, nil
}

// publish never fails the caller; the change is already committed.
func publish(log logger.Logger, publisher EventPublisher, channel events.Channel, event events.Event) {
	if err := publisher.Publish(channel, event); err != nil {
		log.Warn("failed to publish event", "channel", channel, "type", event.Type, "error", err)
	}
}
