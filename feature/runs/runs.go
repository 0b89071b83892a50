package runs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"match-sync/core/logger"
	"match-sync/core/reconcile"
	"match-sync/core/utils"
	"match-sync/feature/entities"
	"match-sync/feature/matches"
	"match-sync/feature/workflow"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Executor runs one workflow request.
type Executor interface {
	Run(ctx context.Context, req workflow.Request) (*workflow.Report, error)
}

// TriggerRequest is the POST /runs body. Dates are YYYY-MM-DD; both empty
// selects the configured default window.
type TriggerRequest struct {
	AgeGroup string `json:"age_group"`
	Division string `json:"division"`
	Start    string `json:"start"`
	End      string `json:"end"`
	DryRun   bool   `json:"dry_run"`
}

// Request validates t and converts it into a workflow request.
func (t TriggerRequest) Request() (workflow.Request, error) {
	req := workflow.Request{
		AgeGroup: strings.TrimSpace(t.AgeGroup),
		Division: strings.TrimSpace(t.Division),
		DryRun:   t.DryRun,
	}
	if req.AgeGroup == "" {
		return req, errors.New("age_group is required")
	}
	var err error
	if req.Start, err = parseDate("start", t.Start); err != nil {
		return req, err
	}
	if req.End, err = parseDate("end", t.End); err != nil {
		return req, err
	}
	if req.Start.IsZero() != req.End.IsZero() {
		return req, errors.New("start and end must be given together")
	}
	if req.End.Before(req.Start) {
		return req, fmt.Errorf("end %s is before start %s", t.End, t.Start)
	}
	return req, nil
}

func parseDate(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(matches.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: expected YYYY-MM-DD, got %q", field, s)
	}
	return t, nil
}

// scopeKey identifies runs that must not overlap.
func scopeKey(req workflow.Request) string {
	return fmt.Sprintf("%s/%s/%s/%s/dry=%t",
		strings.ToLower(req.AgeGroup), strings.ToLower(req.Division),
		matches.FormatDate(req.Start), matches.FormatDate(req.End), req.DryRun)
}

// Handler serves the run routes.
type Handler struct {
	executor Executor
	flight   *reconcile.Flight
	logger   *zap.Logger

	mu    sync.RWMutex
	cache map[string]entities.Stats
}

// NewHandler creates a Handler. Successful reports are replayed to identical
// requests for replayTTL.
func NewHandler(executor Executor, replayTTL time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		executor: executor,
		flight:   reconcile.NewFlight(replayTTL),
		logger:   logger,
		cache:    make(map[string]entities.Stats),
	}
}

// RegisterRoutes registers the run routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/runs", h.HandleTriggerRun)
	app.Get("/cache/stats", h.HandleCacheStats)
}

// HandleTriggerRun runs the workflow once.
// @Summary Trigger Run
// @Description Scrape, validate and sync one age group. Concurrent identical requests share one run.
// @Tags runs
// @Accept json
// @Produce json
// @Param request body runs.TriggerRequest true "Run request"
// @Param dry_run query bool false "Plan only; overrides the body"
// @Success 200 {object} workflow.Report "Succeeded"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 502 {object} workflow.Report "Run failed"
// @Router /runs [post]
func (h *Handler) HandleTriggerRun(c *fiber.Ctx) error {
	var body TriggerRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid body: " + err.Error(),
		})
	}
	if q := c.Query("dry_run"); q != "" {
		body.DryRun = utils.ToBool(q)
	}
	req, err := body.Request()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	l := logger.WithRayID(h.logger, c)
	key := scopeKey(req)
	v, shared, err := h.flight.Do(c.UserContext(), key, func(ctx context.Context) (any, error) {
		report, runErr := h.executor.Run(ctx, req)
		if report == nil {
			return nil, runErr
		}
		return report, nil
	})
	if err != nil {
		l.Error("Run could not start", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	report := v.(*workflow.Report)
	if !report.Succeeded() {
		h.flight.Forget(key)
	}
	h.mu.Lock()
	h.cache[req.AgeGroup+"/"+req.Division] = report.Cache
	h.mu.Unlock()

	c.Set("X-Run-ID", report.RunID)
	if shared {
		c.Set("X-Run-Shared", "true")
		l.Info("Joined in-flight run", zap.String("run_id", report.RunID), zap.String("scope", key))
	}
	if !report.Succeeded() {
		return c.Status(fiber.StatusBadGateway).JSON(report)
	}
	return c.JSON(report)
}

// HandleCacheStats returns the cache statistics of the last run per scope.
// @Summary Cache Stats
// @Tags runs
// @Produce json
// @Success 200 {object} map[string]entities.Stats
// @Router /cache/stats [get]
func (h *Handler) HandleCacheStats(c *fiber.Ctx) error {
	h.mu.RLock()
	out := make(map[string]entities.Stats, len(h.cache))
	for k, v := range h.cache {
		out[k] = v
	}
	h.mu.RUnlock()
	return c.JSON(out)
}

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
}

// NewFeature creates the runs feature. A nil executor disables it.
func NewFeature(executor Executor, replayTTL time.Duration, logger *zap.Logger) *Feature {
	if executor == nil {
		return &Feature{}
	}
	return &Feature{handler: NewHandler(executor, replayTTL, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "runs"
}

// IsEnabled reports whether an executor is configured.
func (f *Feature) IsEnabled() bool {
	return f.handler != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
