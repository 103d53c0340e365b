package runs

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"stock-reconciler/core/logger"
	"stock-reconciler/feature/tenant"
)

// TriggerRequest is the body for manually triggering a run.
type TriggerRequest struct {
	// TriggeredBy identifies the principal requesting the run.
	TriggeredBy string `json:"triggered_by" validate:"required,max=64"`
}

// Handler handles HTTP requests for reconciliation runs.
type Handler struct {
	coordinator *Coordinator
	store       Store
	logger      *zap.Logger
	validate    *validator.Validate
}

// NewHandler creates a new HTTP handler.
func NewHandler(coordinator *Coordinator, store Store, log *zap.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		store:       store,
		logger:      log,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the run routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/tenants/:tenantId/runs", h.HandleTriggerRun)
	app.Get("/tenants/:tenantId/runs", h.HandleListRuns)
	app.Get("/runs/:runId", h.HandleGetRun)
}

// HandleTriggerRun starts a reconciliation run for a tenant. The run
// executes asynchronously; the response carries the pending run record.
func (h *Handler) HandleTriggerRun(c *fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	l := logger.WithRayID(h.logger, c)

	var req TriggerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	run, err := h.coordinator.StartRun(c.Context(), tenantID, req.TriggeredBy, SourceManual)
	switch {
	case errors.Is(err, tenant.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown tenant",
		})
	case errors.Is(err, ErrAlreadyRunning):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a run is already in progress for this tenant",
		})
	case err != nil:
		l.Error("Failed to start run", zap.String("tenant_id", tenantID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(run)
}

// HandleGetRun returns the current state of a run.
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	runID := c.Params("runId")
	l := logger.WithRayID(h.logger, c)

	run, err := h.store.Get(c.Context(), runID)
	switch {
	case errors.Is(err, ErrRunNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown run",
		})
	case err != nil:
		l.Error("Failed to load run", zap.String("run_id", runID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(run)
}

// HandleListRuns returns a tenant's run history, newest first.
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	limit := c.QueryInt("limit", 20)
	l := logger.WithRayID(h.logger, c)

	result, err := h.store.ListByTenant(c.Context(), tenantID, limit)
	if err != nil {
		l.Error("Failed to list runs", zap.String("tenant_id", tenantID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"runs":      result,
	})
}
