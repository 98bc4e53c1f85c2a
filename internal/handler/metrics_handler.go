package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daycare-api/internal/service"
	"github.com/noah-isme/daycare-api/pkg/response"
)

// ReadinessProbe reports whether a backing dependency can serve requests.
type ReadinessProbe func(ctx context.Context) error

// MetricsHandler exposes the operational endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	ready   ReadinessProbe
	timeout time.Duration
}

// NewMetricsHandler constructs the handler. A nil probe always reports ready.
func NewMetricsHandler(metrics *service.MetricsService, ready ReadinessProbe) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, ready: ready, timeout: 2 * time.Second}
}

// Prometheus serves the Prometheus exposition format.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Summary godoc
// @Summary Metrics summary
// @Description Aggregated request, cache, day view and event counters
// @Tags Operations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /metrics/summary [get]
func (h *MetricsHandler) Summary(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

// Health is the liveness probe.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready is the readiness probe. It fails with 503 while a dependency is down.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
