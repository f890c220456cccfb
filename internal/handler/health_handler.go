package handler

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// healthCheckTimeout bounds the database ping of a health check.
const healthCheckTimeout = 2 * time.Second

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	database HealthChecker
	ready    atomic.Bool
	logger   zerolog.Logger
}

// NewHealthHandler creates a HealthHandler. It reports ready until SetReady(false).
func NewHealthHandler(database HealthChecker, logger zerolog.Logger) *HealthHandler {
	h := &HealthHandler{
		database: database,
		logger:   logger.With().Str("handler", "health").Logger(),
	}
	h.ready.Store(true)
	return h
}

// SetReady flips the readiness probe. The server clears it before shutting down.
func (h *HealthHandler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// handleHealth pings the database.
func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.database.Health(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("database health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "ok"})
}

func (h *HealthHandler) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !h.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
