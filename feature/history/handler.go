package history

import (
	"errors"

	"match-sync/core/logger"
	"match-sync/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the run ledger over HTTP.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(store *Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes registers the ledger routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/runs")
	group.Get("/", h.HandleListRuns)
	group.Get("/latest", h.HandleLatestRun)
	group.Get("/:id", h.HandleGetRun)
}

// HandleListRuns lists recent runs.
// @Summary List Runs
// @Description List recent sync runs, newest first.
// @Tags runs
// @Produce json
// @Param age_group query string false "Age group filter"
// @Param status query string false "Status filter (succeeded, failed)"
// @Param limit query int false "Page size (default 20, max 200)"
// @Success 200 {array} history.SyncRun "Runs"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /runs [get]
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	runs, err := h.store.ListRuns(c.UserContext(), Filter{
		AgeGroup: c.Query("age_group"),
		Status:   c.Query("status"),
		Limit:    utils.ToInt(c.Query("limit")),
	})
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Listing runs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(runs)
}

// HandleLatestRun returns the most recent run.
// @Summary Latest Run
// @Description Get the most recent sync run with its items.
// @Tags runs
// @Produce json
// @Param age_group query string false "Age group filter"
// @Success 200 {object} history.SyncRun "Run"
// @Failure 404 {object} map[string]string "No runs"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /runs/latest [get]
func (h *Handler) HandleLatestRun(c *fiber.Ctx) error {
	run, err := h.store.LatestRun(c.UserContext(), c.Query("age_group"))
	return h.respond(c, run, err)
}

// HandleGetRun returns one run.
// @Summary Get Run
// @Description Get one sync run with its per-match records.
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} history.SyncRun "Run"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /runs/{id} [get]
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	run, err := h.store.GetRun(c.UserContext(), c.Params("id"))
	return h.respond(c, run, err)
}

func (h *Handler) respond(c *fiber.Ctx, run *SyncRun, err error) error {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case err != nil:
		logger.WithRayID(h.logger, c).Error("Reading run failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(run)
}
