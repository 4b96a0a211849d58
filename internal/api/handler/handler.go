// Package handler provides HTTP handlers for all API endpoints.
// Handlers call the ladder service directly and cache encoded responses in
// memory with ETags.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/albapepper/hoopscore/internal/api/respond"
	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/config"
	"github.com/albapepper/hoopscore/internal/ladder"
)

// BackendStats reports on the Cache Store backend. It returns an error when
// the backend is unreachable.
type BackendStats func(ctx context.Context) (map[string]interface{}, error)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	ladder    *ladder.Service
	responses *cache.Memory
	backend   BackendStats
	cfg       *config.Config
}

// New creates a Handler with shared dependencies. backend may be nil.
func New(svc *ladder.Service, responses *cache.Memory, backend BackendStats, cfg *config.Config) *Handler {
	return &Handler{
		ladder:    svc,
		responses: responses,
		backend:   backend,
		cfg:       cfg,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and docs location.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Hoopscore MVP Ladder API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"features": []string{
			"read_through_fetch_cache",
			"rate_limited_upstreams",
			"gzip_compression",
			"etag_support",
			"prometheus_metrics",
		},
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache reports on the response cache and the Cache Store backend.
// @Summary Cache health check
// @Description Returns response cache statistics and Cache Store backend status.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":    "healthy",
		"responses": h.responses.Stats(),
		"backend":   h.cfg.CacheBackend,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if h.backend == nil {
		respond.WriteJSONObject(w, http.StatusOK, body)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	stats, err := h.backend(ctx)
	if err != nil {
		body["status"] = "unhealthy"
		body["error"] = "Cache backend check failed"
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, body)
		return
	}
	body["store"] = stats
	respond.WriteJSONObject(w, http.StatusOK, body)
}
