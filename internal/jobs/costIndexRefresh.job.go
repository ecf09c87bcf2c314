package jobs

import (
	"context"

	"apartmentqueue/internal/constants"
	"apartmentqueue/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type seriesRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

type CostIndexRefreshJob struct {
	lookup   seriesRefresher
	log      logger.Logger
	schedule services.Schedule
}

func NewCostIndexRefreshJob(lookup seriesRefresher, schedule services.Schedule) *CostIndexRefreshJob {
	log := logger.New("costIndexRefreshJob")
	log.Info("Creating new cost index refresh job", "schedule", schedule)

	return &CostIndexRefreshJob{
		lookup:   lookup,
		log:      log,
		schedule: schedule,
	}
}

func (j *CostIndexRefreshJob) Name() string {
	return constants.JobCostIndexRefresh
}

func (j *CostIndexRefreshJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	count, err := j.lookup.Refresh(ctx)
	if err != nil {
		return log.Err("cost index cache refresh failed", err)
	}

	log.Info("Cost index cache refreshed", "entries", count)
	return nil
}

func (j *CostIndexRefreshJob) Schedule() services.Schedule {
	return j.schedule
}
