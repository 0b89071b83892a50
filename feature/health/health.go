package health

import (
	"context"
	"time"

	"match-sync/core/apiclient"
	"match-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Upstream is the remote health endpoint.
type Upstream interface {
	Health(ctx context.Context, full bool) (*apiclient.Health, error)
}

// Status is the response of both endpoints.
type Status struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Upstream  *apiclient.Health `json:"upstream,omitempty"`
	Error     string            `json:"error,omitempty"`
	CheckedAt time.Time         `json:"checked_at"`
}

// Handler serves the health routes.
type Handler struct {
	upstream Upstream
	version  string
	logger   *zap.Logger
}

// NewHandler creates a Handler. upstream may be nil when no API is configured.
func NewHandler(upstream Upstream, version string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{upstream: upstream, version: version, logger: logger}
}

// RegisterRoutes registers the health routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.HandleHealth)
	app.Get("/health/upstream", h.HandleUpstream)
}

// HandleHealth reports that the service is up.
// @Summary Health
// @Tags health
// @Produce json
// @Success 200 {object} health.Status
// @Router /health [get]
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(Status{Status: "ok", Version: h.version, CheckedAt: time.Now().UTC()})
}

// HandleUpstream checks the match-tracking API.
// @Summary Upstream Health
// @Description Calls the remote API's /health/full endpoint.
// @Tags health
// @Produce json
// @Success 200 {object} health.Status
// @Failure 503 {object} health.Status
// @Router /health/upstream [get]
func (h *Handler) HandleUpstream(c *fiber.Ctx) error {
	out := Status{Version: h.version, CheckedAt: time.Now().UTC()}
	if h.upstream == nil {
		out.Status = "unconfigured"
		return c.Status(fiber.StatusServiceUnavailable).JSON(out)
	}

	remote, err := h.upstream.Health(c.UserContext(), true)
	if err != nil {
		logger.WithRayID(h.logger, c).Warn("Upstream health check failed", zap.Error(err))
		out.Status = "unavailable"
		out.Error = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(out)
	}

	out.Upstream = remote
	out.Status = "ok"
	if remote.Status != "healthy" && remote.Status != "ok" {
		out.Status = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(out)
	}
	return c.JSON(out)
}

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
}

// NewFeature creates the health feature.
func NewFeature(upstream Upstream, version string, logger *zap.Logger) *Feature {
	return &Feature{handler: NewHandler(upstream, version, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "health"
}

// IsEnabled always reports true.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
