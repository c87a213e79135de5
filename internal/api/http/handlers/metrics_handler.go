package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-service/internal/api/dto"
	"github.com/spec-kit/school-service/internal/observability"
	"github.com/spec-kit/school-service/internal/service"
)

// MetricsHandler exposes the in-memory request counters.
type MetricsHandler struct {
	metrics *observability.Metrics
}

func NewMetricsHandler(metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Show handles GET /api/metrics.
func (h *MetricsHandler) Show(c *fiber.Ctx) error {
	return c.JSON(dto.OK(service.MsgMetricsLoaded, h.metrics.Snapshot()))
}
