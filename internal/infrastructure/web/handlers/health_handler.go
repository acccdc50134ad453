package handlers

import (
	"context"
	"net/http"
	"time"

	"tbtc-market-service/internal/application/dto"
	"tbtc-market-service/internal/domain/interfaces"
)

const readinessTimeout = 2 * time.Second

// HealthHandler maneja los endpoints de health check
type HealthHandler struct {
	runner interfaces.ProcessRunner
	store  interfaces.SnapshotStore
}

// NewHealthHandler crea una nueva instancia del health handler.
// store puede ser nil cuando el snapshot store está deshabilitado.
func NewHealthHandler(runner interfaces.ProcessRunner, store interfaces.SnapshotStore) *HealthHandler {
	return &HealthHandler{
		runner: runner,
		store:  store,
	}
}

// Health godoc
// @Summary Basic health check
// @Description Verifies that the service is running. Does not run the market script or touch dependencies.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is running correctly"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"service": "running",
	}

	writeJSON(w, http.StatusOK, dto.NewHealthResponse("healthy", services))
}

// Ready godoc
// @Summary Readiness check
// @Description Verifies that the script executable can be resolved and that the snapshot store answers. Does not run the script.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is ready to receive traffic"
// @Success 200 {object} dto.HealthResponse "Snapshot store unreachable (status degraded)"
// @Failure 503 {object} dto.HealthResponse "Script executable cannot be resolved"
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	services := map[string]string{"service": "ready"}
	status := "ready"
	statusCode := http.StatusOK

	if err := h.runner.LookPath(); err != nil {
		services["upstream"] = "error: " + err.Error()
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else {
		services["upstream"] = "ready"
	}

	// The store only backs diagnostics, so a failure degrades instead of failing readiness
	switch {
	case h.store == nil:
		services["cache"] = "disabled"
	case h.store.Ping(ctx) != nil:
		services["cache"] = "unreachable"
		if statusCode == http.StatusOK {
			status = "degraded"
		}
	default:
		services["cache"] = "ready"
	}

	writeJSON(w, statusCode, dto.NewHealthResponse(status, services))
}
