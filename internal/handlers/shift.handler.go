package handlers

import (
	"fieldops/internal/app"
	"fieldops/internal/apperrors"
	"fieldops/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type ShiftHandler struct {
	Handler
	shiftService *services.ShiftService
}

func NewShiftHandler(app app.App, router fiber.Router) *ShiftHandler {
	log := logger.New("handlers").File("shift_handler")
	return &ShiftHandler{
		shiftService: app.ShiftService,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ShiftHandler) Register() {
	shifts := h.router.Group("/shifts")
	shifts.Post("/open", h.openShift)
	shifts.Post("/:id/close", h.closeShift)
	shifts.Get("/:id", h.getShift)

	vehicles := h.router.Group("/vehicles")
	vehicles.Get("/:id/active-shift", h.getActiveShiftByVehicle)
}

func (h *ShiftHandler) openShift(c *fiber.Ctx) error {
	log := h.log.Function("openShift")

	var req services.OpenShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := h.shiftService.Open(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *ShiftHandler) closeShift(c *fiber.Ctx) error {
	log := h.log.Function("closeShift")

	shiftID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid shift id",
		})
	}

	var req services.CloseShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	req.ShiftID = shiftID

	result, err := h.shiftService.Close(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, log, err)
	}

	return c.JSON(result)
}

func (h *ShiftHandler) getShift(c *fiber.Ctx) error {
	log := h.log.Function("getShift")

	shiftID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid shift id",
		})
	}

	shift, err := h.shiftService.GetByID(c.UserContext(), shiftID)
	if err != nil {
		return h.respondError(c, log, err)
	}

	return c.JSON(shift)
}

func (h *ShiftHandler) getActiveShiftByVehicle(c *fiber.Ctx) error {
	log := h.log.Function("getActiveShiftByVehicle")

	vehicleID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid vehicle id",
		})
	}

	shift, err := h.shiftService.GetActiveByVehicle(c.UserContext(), vehicleID)
	if err != nil {
		return h.respondError(c, log, err)
	}

	return c.JSON(shift)
}

// respondError maps the error taxonomy to HTTP status codes. Anything
// outside the taxonomy is an internal error and gets a generic body so
// the cause stays in the logs.
func (h *ShiftHandler) respondError(c *fiber.Ctx, log logger.Logger, err error) error {
	switch {
	case apperrors.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case apperrors.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case apperrors.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case apperrors.IsTimeout(err):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Er("request failed with internal error", err, "path", c.Path())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}
