package lotteryController

import (
	"context"

	"apartmentqueue/internal/services"
	"apartmentqueue/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type RunLotteryRequest struct {
	ProjectID    *uuid.UUID  `json:"projectId,omitempty"`
	ApartmentIDs []uuid.UUID `json:"apartmentIds,omitempty"`
}

type ResolveConflictsRequest struct {
	ApplicationIDs []uuid.UUID `json:"applicationIds,omitempty"`
	ApartmentIDs   []uuid.UUID `json:"apartmentIds,omitempty"`
}

type lotteryService interface {
	RunLotteryForProject(ctx context.Context, request services.LotteryRequest) (services.LotteryResult, error)
	ResolveFirstPlaceConflicts(ctx context.Context, scope services.Scope) (services.ResolveResult, error)
}

type LotteryControllerInterface interface {
	Run(ctx context.Context, request *RunLotteryRequest) (services.LotteryResult, error)
	Resolve(ctx context.Context, request *ResolveConflictsRequest) (services.ResolveResult, error)
}

type LotteryController struct {
	lottery lotteryService
	log     logger.Logger
}

func New(services services.Service) LotteryControllerInterface {
	return newController(services.Lottery)
}

func newController(lottery lotteryService) *LotteryController {
	return &LotteryController{
		lottery: lottery,
		log:     logger.New("lotteryController"),
	}
}

// Run accepts either a project or an explicit apartment list, not both.
func (c *LotteryController) Run(ctx context.Context, request *RunLotteryRequest) (services.LotteryResult, error) {
	log := c.log.TraceFromContext(ctx).Function("Run")

	hasProject := request.ProjectID != nil && *request.ProjectID != uuid.Nil
	if hasProject == (len(request.ApartmentIDs) > 0) {
		return services.LotteryResult{}, types.Validationf("exactly one of projectId or apartmentIds is required")
	}

	result, err := c.lottery.RunLotteryForProject(ctx, services.LotteryRequest{
		ProjectID:    request.ProjectID,
		ApartmentIDs: request.ApartmentIDs,
	})
	if err != nil {
		return services.LotteryResult{}, log.Err("lottery run failed", err, "projectID", request.ProjectID)
	}
	return result, nil
}

// Resolve reruns conflict resolution. An empty request covers every apartment.
func (c *LotteryController) Resolve(
	ctx context.Context,
	request *ResolveConflictsRequest,
) (services.ResolveResult, error) {
	return c.lottery.ResolveFirstPlaceConflicts(ctx, services.Scope{
		ApplicationIDs: request.ApplicationIDs,
		ApartmentIDs:   request.ApartmentIDs,
	})
}
