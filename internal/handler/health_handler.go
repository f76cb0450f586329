package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cyberkid042/auth-identity-service/internal/model"
)

const healthTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store  Pinger
	driver string
}

func NewHealthHandler(store Pinger, driver string) *HealthHandler {
	return &HealthHandler{store: store, driver: driver}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		slog.Warn("health check failed", "driver", h.driver, "error", err)
		writeSuccess(w, http.StatusServiceUnavailable, model.HealthResponse{Status: "unavailable", Store: h.driver})
		return
	}

	writeSuccess(w, http.StatusOK, model.HealthResponse{Status: "ok", Store: h.driver})
}
