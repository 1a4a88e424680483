package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/bqmcp/bqmcp/internal/models"
)

// HealthChecker is implemented by services that can report connectivity
type HealthChecker interface {
	TestConnection(ctx context.Context) error
}

// HealthHandler handles GET /health with a BigQuery connectivity check
type HealthHandler struct {
	version string
	bq      HealthChecker
}

// NewHealthHandler accepts a nil checker when BigQuery is not configured.
func NewHealthHandler(version string, bq HealthChecker) *HealthHandler {
	return &HealthHandler{version: version, bq: bq}
}

// Live handles GET / without touching BigQuery, so load balancer polling
// does not run a query per request.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	models.WriteJSON(w, http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Version: h.version,
		Checks:  map[string]string{"server": "ok"},
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	// Use a short timeout for health checks so they don't block
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.bq != nil {
		if err := h.bq.TestConnection(ctx); err != nil {
			checks["bigquery"] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks["bigquery"] = "ok"
		}
	} else {
		checks["bigquery"] = "disabled"
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: h.version,
		Checks:  checks,
	})
}
