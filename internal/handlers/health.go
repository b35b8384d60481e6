package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/interfaces"
)

const healthCheckKey = "__health_check"

// HealthHandler reports liveness and whether the token store answers.
type HealthHandler struct {
	logger *common.Logger
	store  interfaces.KeyValueStorage
}

// NewHealthHandler creates a new health handler. store may be nil.
func NewHealthHandler(logger *common.Logger, store interfaces.KeyValueStorage) *HealthHandler {
	return &HealthHandler{logger: logger, store: store}
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	body := map[string]string{"status": "ok"}
	if h.store == nil {
		WriteJSON(w, http.StatusOK, body)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	// A missing check key is the expected answer.
	if _, err := h.store.Get(ctx, healthCheckKey); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		if h.logger != nil {
			h.logger.Warn().Str("error", err.Error()).Msg("health check: storage unavailable")
		}
		body["status"] = "degraded"
		body["storage"] = "unavailable"
		WriteJSON(w, http.StatusServiceUnavailable, body)
		return
	}

	body["storage"] = "ok"
	WriteJSON(w, http.StatusOK, body)
}
