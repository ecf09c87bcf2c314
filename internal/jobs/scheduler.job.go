package jobs

import (
	"apartmentqueue/config"
	"apartmentqueue/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	Daily  = services.Daily
	Hourly = services.Hourly
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	services services.Service,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	log.Info("Registering jobs")

	queueReconcileJob := NewQueueReconcileJob(services.Lottery, Hourly)
	if err := schedulerService.AddJob(queueReconcileJob); err != nil {
		return log.Err("failed to register queue reconcile job", err)
	}
	log.Info("Registered queue reconcile job", "schedule", "hourly")

	costIndexRefreshJob := NewCostIndexRefreshJob(services.CostIndexLookup, Daily)
	if err := schedulerService.AddJob(costIndexRefreshJob); err != nil {
		return log.Err("failed to register cost index refresh job", err)
	}
	log.Info("Registered cost index refresh job", "schedule", "daily")

	return nil
}
