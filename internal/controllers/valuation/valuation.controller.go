package valuationController

import (
	"context"
	"time"

	"apartmentqueue/internal/models"
	"apartmentqueue/internal/services"
	"apartmentqueue/internal/types"
	"apartmentqueue/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RecordRevaluationRequest struct {
	EndDate        string          `json:"endDate"                  validate:"required"`
	AlterationWork decimal.Decimal `json:"alterationWork,omitempty"`
}

type AddCostIndexRequest struct {
	ValidFrom string          `json:"validFrom" validate:"required"`
	Value     decimal.Decimal `json:"value"`
}

type valuationService interface {
	RecordRevaluation(
		ctx context.Context,
		reservationID uuid.UUID,
		request services.RevaluationRequest,
	) (*models.ApartmentRevaluation, error)
	AddCostIndex(ctx context.Context, validFrom time.Time, value decimal.Decimal) (*models.CostIndex, error)
	ListCostIndices(ctx context.Context) ([]*models.CostIndex, error)
}

type ValuationControllerInterface interface {
	RecordRevaluation(
		ctx context.Context,
		reservationID uuid.UUID,
		request *RecordRevaluationRequest,
	) (*models.ApartmentRevaluation, error)
	AddCostIndex(ctx context.Context, request *AddCostIndexRequest) (*models.CostIndex, error)
	ListCostIndices(ctx context.Context) ([]*models.CostIndex, error)
}

type ValuationController struct {
	valuation valuationService
	log       logger.Logger
}

func New(services services.Service) ValuationControllerInterface {
	return newController(services.Valuation)
}

func newController(valuation valuationService) *ValuationController {
	return &ValuationController{
		valuation: valuation,
		log:       logger.New("valuationController"),
	}
}

func (c *ValuationController) RecordRevaluation(
	ctx context.Context,
	reservationID uuid.UUID,
	request *RecordRevaluationRequest,
) (*models.ApartmentRevaluation, error) {
	log := c.log.TraceFromContext(ctx).Function("RecordRevaluation")

	if err := utils.ValidateStruct(request); err != nil {
		return nil, err
	}
	endDate, err := parseDate(request.EndDate)
	if err != nil {
		return nil, err
	}

	revaluation, err := c.valuation.RecordRevaluation(ctx, reservationID, services.RevaluationRequest{
		EndDate:        endDate,
		AlterationWork: request.AlterationWork,
	})
	if err != nil {
		return nil, log.Err("failed to record revaluation", err, "reservationID", reservationID)
	}
	return revaluation, nil
}

func (c *ValuationController) AddCostIndex(ctx context.Context, request *AddCostIndexRequest) (*models.CostIndex, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, err
	}
	validFrom, err := parseDate(request.ValidFrom)
	if err != nil {
		return nil, err
	}
	return c.valuation.AddCostIndex(ctx, validFrom, request.Value)
}

func (c *ValuationController) ListCostIndices(ctx context.Context) ([]*models.CostIndex, error) {
	indices, err := c.valuation.ListCostIndices(ctx)
	if err != nil {
		return nil, err
	}
	if indices == nil {
		indices = []*models.CostIndex{}
	}
	return indices, nil
}

func parseDate(input string) (time.Time, error) {
	date, err := utils.ParseDate(input)
	if err != nil {
		return time.Time{}, types.Validationf("%v", err)
	}
	return date, nil
}
