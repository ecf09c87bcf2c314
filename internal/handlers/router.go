package handlers

import (
	"apartmentqueue/internal/app"
	"apartmentqueue/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	router.Use(app.Middleware.TraceID())

	api := router.Group("/api")
	HealthHandler(api, app.Config, app.Services.Scheduler)
	NewApplicationHandler(*app, api).Register()
	NewApartmentHandler(*app, api).Register()
	NewLotteryHandler(*app, api).Register()
	NewValuationHandler(*app, api).Register()

	return nil
}
