package handlers

import (
	"apartmentqueue/config"
	"apartmentqueue/internal/services"

	"github.com/gofiber/fiber/v2"
)

func HealthHandler(router fiber.Router, config config.Config, scheduler *services.SchedulerService) {
	router.Get("/health", func(c *fiber.Ctx) error {
		schedulerStatus := "disabled"
		if scheduler != nil {
			schedulerStatus = "stopped"
			if scheduler.IsRunning() {
				schedulerStatus = "running"
			}
		}

		return c.JSON(fiber.Map{
			"status":    "ok",
			"version":   config.GeneralVersion,
			"service":   "apartmentqueue_api",
			"scheduler": schedulerStatus,
		})
	})
}
