package apartmentController

import (
	"context"

	"apartmentqueue/internal/models"
	"apartmentqueue/internal/queue"
	"apartmentqueue/internal/services"
	"apartmentqueue/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UpsertApartmentRequest struct {
	OwnershipType           models.OwnershipType `json:"ownershipType"                     validate:"required,oneof=haso hitas"`
	ProjectID               *uuid.UUID           `json:"projectId,omitempty"`
	RightOfOccupancyPayment *decimal.Decimal     `json:"rightOfOccupancyPayment,omitempty"`
}

type apartmentService interface {
	UpsertApartment(ctx context.Context, request services.UpsertApartmentRequest) (*models.Apartment, error)
}

type queueService interface {
	GetQueueForApartment(ctx context.Context, apartmentID uuid.UUID) ([]queue.Position, error)
}

type paymentService interface {
	GetCurrentPayment(ctx context.Context, apartmentID uuid.UUID) (services.CurrentPayment, error)
}

type ApartmentControllerInterface interface {
	Upsert(ctx context.Context, id uuid.UUID, request *UpsertApartmentRequest) (*models.Apartment, error)
	Queue(ctx context.Context, id uuid.UUID) ([]queue.Position, error)
	CurrentPayment(ctx context.Context, id uuid.UUID) (services.CurrentPayment, error)
}

type ApartmentController struct {
	apartments apartmentService
	queues     queueService
	payments   paymentService
	log        logger.Logger
}

func New(services services.Service) ApartmentControllerInterface {
	return newController(services.Apartment, services.Lottery, services.Valuation)
}

func newController(
	apartments apartmentService,
	queues queueService,
	payments paymentService,
) *ApartmentController {
	return &ApartmentController{
		apartments: apartments,
		queues:     queues,
		payments:   payments,
		log:        logger.New("apartmentController"),
	}
}

func (c *ApartmentController) Upsert(
	ctx context.Context,
	id uuid.UUID,
	request *UpsertApartmentRequest,
) (*models.Apartment, error) {
	log := c.log.TraceFromContext(ctx).Function("Upsert")

	if err := utils.ValidateStruct(request); err != nil {
		return nil, err
	}

	apartment, err := c.apartments.UpsertApartment(ctx, services.UpsertApartmentRequest{
		ID:                      id,
		OwnershipType:           request.OwnershipType,
		ProjectID:               request.ProjectID,
		RightOfOccupancyPayment: request.RightOfOccupancyPayment,
	})
	if err != nil {
		return nil, log.Err("failed to upsert apartment", err, "apartmentID", id)
	}
	return apartment, nil
}

func (c *ApartmentController) Queue(ctx context.Context, id uuid.UUID) ([]queue.Position, error) {
	return c.queues.GetQueueForApartment(ctx, id)
}

func (c *ApartmentController) CurrentPayment(ctx context.Context, id uuid.UUID) (services.CurrentPayment, error) {
	return c.payments.GetCurrentPayment(ctx, id)
}
