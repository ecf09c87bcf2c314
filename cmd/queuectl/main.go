package main

import (
	"context"
	"os"

	"apartmentqueue/cmd/queuectl/commands"
	"apartmentqueue/config"
	"apartmentqueue/internal/database"
	"apartmentqueue/internal/events"
	"apartmentqueue/internal/jobs"
	"apartmentqueue/internal/repositories"
	"apartmentqueue/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/spf13/cobra"
)

func main() {
	log := logger.New("queuectl").Function("main")

	app := &commands.AppContext{Ctx: context.Background()}
	var (
		db       database.DB
		eventBus *events.EventBus
	)

	rootCmd := &cobra.Command{
		Use:           "queuectl",
		Short:         "Operator tooling for apartment queues",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[commands.OfflineAnnotation] == "true" {
				return nil
			}

			config, err := config.New()
			if err != nil {
				return log.Err("failed to initialize config", err)
			}
			db, err = database.New(config)
			if err != nil {
				return log.Err("failed to create database", err)
			}
			eventBus = events.New(db.Cache.Events)

			services := services.New(db, config, repositories.New(), eventBus)

			// every job is runnable by hand even where this host does not schedule it
			jobConfig := config
			jobConfig.SchedulerEnabled = true
			if err := jobs.RegisterAllJobs(services.Scheduler, jobConfig, services); err != nil {
				return log.Err("failed to register jobs", err)
			}

			app.Lottery = services.Lottery
			app.CostIndices = services.Valuation
			app.Jobs = services.Scheduler
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if eventBus != nil {
				if err := eventBus.Close(); err != nil {
					log.Er("failed to close event bus", err)
				}
			}
			if db.SQL != nil {
				return db.Close()
			}
			return nil
		},
	}

	rootCmd.AddCommand(commands.LotteryCmd(app))
	rootCmd.AddCommand(commands.ResolveCmd(app))
	rootCmd.AddCommand(commands.SimulateCmd())
	rootCmd.AddCommand(commands.CostIndexCmd(app))
	rootCmd.AddCommand(commands.JobsCmd(app))

	if err := rootCmd.Execute(); err != nil {
		log.Er("command failed", err)
		os.Exit(1)
	}
}
