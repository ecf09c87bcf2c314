package handlers

import (
	"apartmentqueue/internal/app"
	apartmentController "apartmentqueue/internal/controllers/apartments"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type ApartmentHandler struct {
	Handler
	apartmentController apartmentController.ApartmentControllerInterface
}

func NewApartmentHandler(app app.App, router fiber.Router) *ApartmentHandler {
	log := logger.New("handlers").File("apartment_handler")
	return &ApartmentHandler{
		apartmentController: app.Controllers.Apartment,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ApartmentHandler) Register() {
	apartments := h.router.Group("/apartments")
	apartments.Put("/:id", h.upsert)
	apartments.Get("/:id/queue", h.queue)
	apartments.Get("/:id/current-payment", h.currentPayment)
}

// upsert is keyed by the id of the apartment in the sales system.
func (h *ApartmentHandler) upsert(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("upsert")

	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid apartment ID")
	}

	var req apartmentController.UpsertApartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	apartment, err := h.apartmentController.Upsert(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, log, err, "Failed to save apartment")
	}

	return c.JSON(fiber.Map{"apartment": apartment})
}

func (h *ApartmentHandler) queue(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("queue")

	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid apartment ID")
	}

	positions, err := h.apartmentController.Queue(c.UserContext(), id)
	if err != nil {
		return respondError(c, log, err, "Failed to load queue")
	}

	return c.JSON(fiber.Map{"queue": positions})
}

func (h *ApartmentHandler) currentPayment(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("currentPayment")

	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid apartment ID")
	}

	payment, err := h.apartmentController.CurrentPayment(c.UserContext(), id)
	if err != nil {
		return respondError(c, log, err, "Failed to load current payment")
	}

	return c.JSON(payment)
}
