package commands

import (
	"context"

	"apartmentqueue/internal/models"
	"apartmentqueue/internal/services"
	"apartmentqueue/internal/valuation"
)

// OfflineAnnotation marks commands that run without a database.
const OfflineAnnotation = "offline"

type LotteryRunner interface {
	RunLotteryForProject(ctx context.Context, request services.LotteryRequest) (services.LotteryResult, error)
	ResolveFirstPlaceConflicts(ctx context.Context, scope services.Scope) (services.ResolveResult, error)
}

type CostIndexManager interface {
	ImportCostIndices(ctx context.Context, points []valuation.Point) (services.ImportResult, error)
	ListCostIndices(ctx context.Context) ([]*models.CostIndex, error)
}

type JobRunner interface {
	Jobs() []services.Job
	TriggerJobByName(ctx context.Context, jobName string) error
}

// AppContext is filled in by the root command before any online command runs.
type AppContext struct {
	Ctx         context.Context
	Lottery     LotteryRunner
	CostIndices CostIndexManager
	Jobs        JobRunner
}
