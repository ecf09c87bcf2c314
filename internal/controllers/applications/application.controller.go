package applicationController

import (
	"context"

	"apartmentqueue/internal/models"
	"apartmentqueue/internal/services"
	"apartmentqueue/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type SubmitApplicationRequest struct {
	Type               models.OwnershipType `json:"type"                         validate:"required,oneof=haso hitas"`
	ApplicantToken     string               `json:"applicantToken"               validate:"required,max=255"`
	RightOfOccupancyID *int                 `json:"rightOfOccupancyId,omitempty" validate:"omitempty,gte=0"`
	HouseholdSize      int                  `json:"householdSize"                validate:"gte=0,lte=50"`
	IsOver55           bool                 `json:"isOver55"`
	HasHasoOwnership   bool                 `json:"hasHasoOwnership"`
	HasChildren        bool                 `json:"hasChildren"`
	ApartmentIDs       []uuid.UUID          `json:"apartmentIds"                 validate:"required,min=1,unique"`
}

type RejectApplicationRequest struct {
	Description string `json:"description" validate:"required,max=2000"`
}

type AcceptOfferRequest struct {
	ApartmentID uuid.UUID `json:"apartmentId" validate:"required"`
}

type applicationService interface {
	SubmitApplication(ctx context.Context, request services.SubmitApplicationRequest) (*models.Application, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	ApproveApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	RejectApplication(ctx context.Context, id uuid.UUID, description string) (*models.Application, error)
	AcceptOffer(ctx context.Context, applicationID, apartmentID uuid.UUID) (services.AcceptOfferResult, error)
}

type historyService interface {
	ListForEntity(
		ctx context.Context,
		entityType models.HistoryEntityType,
		entityID uuid.UUID,
	) ([]*models.HistoryEvent, error)
}

type ApplicationControllerInterface interface {
	Submit(ctx context.Context, request *SubmitApplicationRequest) (*models.Application, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Application, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Application, error)
	Reject(ctx context.Context, id uuid.UUID, request *RejectApplicationRequest) (*models.Application, error)
	AcceptOffer(ctx context.Context, id uuid.UUID, request *AcceptOfferRequest) (services.AcceptOfferResult, error)
	History(ctx context.Context, id uuid.UUID) ([]*models.HistoryEvent, error)
}

type ApplicationController struct {
	applications applicationService
	history      historyService
	log          logger.Logger
}

func New(services services.Service) ApplicationControllerInterface {
	return newController(services.Application, services.History)
}

func newController(applications applicationService, history historyService) *ApplicationController {
	return &ApplicationController{
		applications: applications,
		history:      history,
		log:          logger.New("applicationController"),
	}
}

func (c *ApplicationController) Submit(
	ctx context.Context,
	request *SubmitApplicationRequest,
) (*models.Application, error) {
	log := c.log.TraceFromContext(ctx).Function("Submit")

	if err := utils.ValidateStruct(request); err != nil {
		return nil, err
	}

	application, err := c.applications.SubmitApplication(ctx, services.SubmitApplicationRequest{
		Type:               request.Type,
		ApplicantToken:     request.ApplicantToken,
		RightOfOccupancyID: request.RightOfOccupancyID,
		HouseholdSize:      request.HouseholdSize,
		IsOver55:           request.IsOver55,
		HasHasoOwnership:   request.HasHasoOwnership,
		HasChildren:        request.HasChildren,
		ApartmentIDs:       request.ApartmentIDs,
	})
	if err != nil {
		return nil, log.Err("failed to submit application", err, "type", request.Type)
	}

	return application, nil
}

func (c *ApplicationController) Get(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return c.applications.GetApplication(ctx, id)
}

func (c *ApplicationController) Approve(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return c.applications.ApproveApplication(ctx, id)
}

func (c *ApplicationController) Reject(
	ctx context.Context,
	id uuid.UUID,
	request *RejectApplicationRequest,
) (*models.Application, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, err
	}
	return c.applications.RejectApplication(ctx, id, request.Description)
}

func (c *ApplicationController) AcceptOffer(
	ctx context.Context,
	id uuid.UUID,
	request *AcceptOfferRequest,
) (services.AcceptOfferResult, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return services.AcceptOfferResult{}, err
	}
	return c.applications.AcceptOffer(ctx, id, request.ApartmentID)
}

func (c *ApplicationController) History(ctx context.Context, id uuid.UUID) ([]*models.HistoryEvent, error) {
	if _, err := c.applications.GetApplication(ctx, id); err != nil {
		return nil, err
	}

	history, err := c.history.ListForEntity(ctx, models.HistoryEntityApplication, id)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []*models.HistoryEvent{}
	}
	return history, nil
}
