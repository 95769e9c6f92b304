package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"orderflow/internal/service"
)

type HealthHandler struct {
	svc    service.HealthService
	logger *slog.Logger
}

func NewHealthHandler(svc service.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{svc: svc, logger: logger}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Check(r.Context()); err != nil {
		h.logger.Error("health check failed", slog.Any("error", err))
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
