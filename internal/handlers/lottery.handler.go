package handlers

import (
	"apartmentqueue/internal/app"
	lotteryController "apartmentqueue/internal/controllers/lottery"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type LotteryHandler struct {
	Handler
	lotteryController lotteryController.LotteryControllerInterface
}

func NewLotteryHandler(app app.App, router fiber.Router) *LotteryHandler {
	log := logger.New("handlers").File("lottery_handler")
	return &LotteryHandler{
		lotteryController: app.Controllers.Lottery,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *LotteryHandler) Register() {
	lottery := h.router.Group("/lottery")
	lottery.Post("", h.run)
	lottery.Post("/resolve", h.resolve)
}

func (h *LotteryHandler) run(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("run")

	var req lotteryController.RunLotteryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.lotteryController.Run(c.UserContext(), &req)
	if err != nil {
		return respondError(c, log, err, "Failed to run lottery")
	}

	return c.JSON(result)
}

func (h *LotteryHandler) resolve(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("resolve")

	var req lotteryController.ResolveConflictsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	result, err := h.lotteryController.Resolve(c.UserContext(), &req)
	if err != nil {
		return respondError(c, log, err, "Failed to resolve conflicts")
	}

	return c.JSON(result)
}
