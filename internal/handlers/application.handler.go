package handlers

import (
	"apartmentqueue/internal/app"
	applicationController "apartmentqueue/internal/controllers/applications"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type ApplicationHandler struct {
	Handler
	applicationController applicationController.ApplicationControllerInterface
}

func NewApplicationHandler(app app.App, router fiber.Router) *ApplicationHandler {
	log := logger.New("handlers").File("application_handler")
	return &ApplicationHandler{
		applicationController: app.Controllers.Application,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ApplicationHandler) Register() {
	applications := h.router.Group("/applications")
	applications.Post("", h.submit)
	applications.Get("/:id", h.get)
	applications.Post("/:id/approve", h.approve)
	applications.Post("/:id/reject", h.reject)
	applications.Post("/:id/accept-offer", h.acceptOffer)
	applications.Get("/:id/history", h.history)
}

func (h *ApplicationHandler) submit(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("submit")

	var req applicationController.SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	application, err := h.applicationController.Submit(c.UserContext(), &req)
	if err != nil {
		return respondError(c, log, err, "Failed to submit application")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"application": application,
	})
}

func (h *ApplicationHandler) get(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("get")

	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid application ID")
	}

	application, err := h.applicationController.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, log, err, "Failed to load application")
	}

	return c.JSON(fiber.Map{"application": application})
}

func (h *ApplicationHandler) approve(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("approve")

	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid application ID")
	}

	application, err := h.applicationController.Approve(c.UserContext(), id)
	if err != nil {
		return respondError(c, log, err, "Failed to approve application")
	}

	return c.JSON(fiber.Map{"application": application})
}

func (h *ApplicationHandler) reject(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("reject")

	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid application ID")
	}

	var req applicationController.RejectApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	application, err := h.applicationController.Reject(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, log, err, "Failed to reject application")
	}

	return c.JSON(fiber.Map{"application": application})
}

func (h *ApplicationHandler) acceptOffer(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("acceptOffer")

	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid application ID")
	}

	var req applicationController.AcceptOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.applicationController.AcceptOffer(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, log, err, "Failed to accept offer")
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *ApplicationHandler) history(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("history")

	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid application ID")
	}

	history, err := h.applicationController.History(c.UserContext(), id)
	if err != nil {
		return respondError(c, log, err, "Failed to load history")
	}

	return c.JSON(fiber.Map{"history": history})
}
