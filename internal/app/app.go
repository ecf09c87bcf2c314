package app

import (
	"context"

	"apartmentqueue/config"
	"apartmentqueue/internal/controllers"
	"apartmentqueue/internal/database"
	"apartmentqueue/internal/events"
	"apartmentqueue/internal/handlers/middleware"
	"apartmentqueue/internal/jobs"
	"apartmentqueue/internal/repositories"
	"apartmentqueue/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	EventBus   *events.EventBus
	Config     config.Config

	Repositories repositories.Repository
	Services     services.Service
	Controllers  controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events)
	repos := repositories.New()
	services := services.New(db, config, repos, eventBus)
	eventBus.Subscribe(events.COST_INDEX_CHANNEL, services.CostIndexLookup.HandleEvent)

	if err := jobs.RegisterAllJobs(services.Scheduler, config, services); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	app := &App{
		Database:     db,
		Config:       config,
		Middleware:   middleware.New(config),
		EventBus:     eventBus,
		Repositories: repos,
		Services:     services,
		Controllers:  controllers.New(services),
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	if err := services.Scheduler.Start(context.Background()); err != nil {
		return &App{}, log.Err("failed to start scheduler", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.EventBus,
		a.Services.Transaction,
		a.Services.Scheduler,
		a.Services.Apartment,
		a.Services.Application,
		a.Services.Lottery,
		a.Services.Valuation,
		a.Services.History,
		a.Controllers.Application,
		a.Controllers.Apartment,
		a.Controllers.Lottery,
		a.Controllers.Valuation,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
