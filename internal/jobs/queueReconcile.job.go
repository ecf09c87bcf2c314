package jobs

import (
	"context"

	"apartmentqueue/internal/constants"
	"apartmentqueue/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type conflictResolver interface {
	ResolveFirstPlaceConflicts(ctx context.Context, scope services.Scope) (services.ResolveResult, error)
}

// QueueReconcileJob reruns first-place resolution over every apartment so
// approvals made after a lottery still settle to a fixed point.
type QueueReconcileJob struct {
	lottery  conflictResolver
	log      logger.Logger
	schedule services.Schedule
}

func NewQueueReconcileJob(lottery conflictResolver, schedule services.Schedule) *QueueReconcileJob {
	log := logger.New("queueReconcileJob")
	log.Info("Creating new queue reconcile job", "schedule", schedule)

	return &QueueReconcileJob{
		lottery:  lottery,
		log:      log,
		schedule: schedule,
	}
}

func (j *QueueReconcileJob) Name() string {
	return constants.JobQueueReconcile
}

func (j *QueueReconcileJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	result, err := j.lottery.ResolveFirstPlaceConflicts(ctx, services.Scope{})
	if err != nil {
		return log.Err("queue reconcile failed", err)
	}

	log.Info("Queue reconcile completed", "passes", result.Passes, "deactivated", result.Deactivated)
	return nil
}

func (j *QueueReconcileJob) Schedule() services.Schedule {
	return j.schedule
}
