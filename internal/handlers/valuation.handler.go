package handlers

import (
	"apartmentqueue/internal/app"
	valuationController "apartmentqueue/internal/controllers/valuation"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type ValuationHandler struct {
	Handler
	valuationController valuationController.ValuationControllerInterface
}

func NewValuationHandler(app app.App, router fiber.Router) *ValuationHandler {
	log := logger.New("handlers").File("valuation_handler")
	return &ValuationHandler{
		valuationController: app.Controllers.Valuation,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ValuationHandler) Register() {
	h.router.Post("/reservations/:id/revaluation", h.recordRevaluation)

	indices := h.router.Group("/cost-indices")
	indices.Get("", h.listCostIndices)
	indices.Post("", h.addCostIndex)
}

func (h *ValuationHandler) recordRevaluation(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("recordRevaluation")

	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid reservation ID")
	}

	var req valuationController.RecordRevaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	revaluation, err := h.valuationController.RecordRevaluation(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, log, err, "Failed to record revaluation")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"revaluation": revaluation})
}

func (h *ValuationHandler) listCostIndices(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("listCostIndices")

	indices, err := h.valuationController.ListCostIndices(c.UserContext())
	if err != nil {
		return respondError(c, log, err, "Failed to load cost indices")
	}

	return c.JSON(fiber.Map{"costIndices": indices})
}

func (h *ValuationHandler) addCostIndex(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("addCostIndex")

	var req valuationController.AddCostIndexRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	index, err := h.valuationController.AddCostIndex(c.UserContext(), &req)
	if err != nil {
		return respondError(c, log, err, "Failed to add cost index")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"costIndex": index})
}
