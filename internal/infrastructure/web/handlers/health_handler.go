package handlers

import (
	"context"
	"net/http"
	"time"

	"ticker-cache-service/internal/application/dto"
	"ticker-cache-service/internal/application/services"
	"ticker-cache-service/internal/domain/interfaces"
)

// DependencyCheck reports whether an optional dependency is reachable
type DependencyCheck func(ctx context.Context) error

// HealthHandler maneja los endpoints de health check
type HealthHandler struct {
	cache  interfaces.AssetReader
	policy services.AvailabilityPolicy
	checks map[string]DependencyCheck
}

// NewHealthHandler crea una nueva instancia del health handler
func NewHealthHandler(cache interfaces.AssetReader, policy services.AvailabilityPolicy, checks map[string]DependencyCheck) *HealthHandler {
	return &HealthHandler{
		cache:  cache,
		policy: policy,
		checks: checks,
	}
}

// Health godoc
// @Summary Basic health check
// @Description Verifies that the service is running. Responds without checking dependencies.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is running correctly"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"service": "running",
	}

	writeJSONResponse(r.Context(), w, http.StatusOK, dto.NewHealthResponse("healthy", services))
}

// Ready godoc
// @Summary Readiness check
// @Description Ready once a snapshot has been fetched and, when stale_after is set, while it is not older than that. Optional dependencies like the mirror backend only degrade the status.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is ready to receive traffic"
// @Failure 503 {object} dto.HealthResponse "No usable snapshot"
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	services := make(map[string]string)

	lastUpdated, ok := h.cache.LastUpdated()
	if !ok {
		services["snapshot"] = "never fetched"
		writeJSONResponse(ctx, w, http.StatusServiceUnavailable, dto.NewHealthResponse("unhealthy", services))
		return
	}

	age := since(lastUpdated, h.policy.Now)
	if h.policy.StaleAfter > 0 && age > h.policy.StaleAfter {
		services["snapshot"] = "stale for " + age.Round(time.Second).String()
		writeJSONResponse(ctx, w, http.StatusServiceUnavailable, dto.NewHealthResponse("unhealthy", services))
		return
	}
	services["snapshot"] = "ready"

	status := "ready"
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	for name, check := range h.checks {
		if err := check(checkCtx); err != nil {
			services[name] = "error: " + err.Error()
			status = "degraded"
			continue
		}
		services[name] = "ready"
	}

	writeJSONResponse(ctx, w, http.StatusOK, dto.NewHealthResponse(status, services))
}

func since(t time.Time, now func() time.Time) time.Duration {
	if now == nil {
		now = time.Now
	}
	return now().Sub(t)
}
