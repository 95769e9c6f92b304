package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"orderflow/internal/model"
	"orderflow/internal/storage"
)

// AutomationHandler exposes read-only visibility into the rule set and the
// send-attempt history. There are no mutating endpoints; rules are managed
// by external tooling.
type AutomationHandler struct {
	rules    storage.RuleStorage
	attempts storage.AttemptStorage
	logger   *slog.Logger
}

func NewAutomationHandler(rules storage.RuleStorage, attempts storage.AttemptStorage, logger *slog.Logger) *AutomationHandler {
	return &AutomationHandler{rules: rules, attempts: attempts, logger: logger}
}

func (h *AutomationHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.ListActiveRules(r.Context())
	if err != nil {
		h.logger.Error("ListRules failed", slog.Any("error", err))
		http.Error(w, "failed to fetch rules", http.StatusInternalServerError)
		return
	}
	if rules == nil {
		rules = []model.StatusRule{}
	}
	json.NewEncoder(w).Encode(rules)
}

func (h *AutomationHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", model.AttemptPending, model.AttemptSent, model.AttemptFailed:
	default:
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	attempts, err := h.attempts.ListAttempts(r.Context(), status, limit)
	if err != nil {
		h.logger.Error("ListAttempts failed", slog.Any("error", err))
		http.Error(w, "failed to fetch attempts", http.StatusInternalServerError)
		return
	}
	if attempts == nil {
		attempts = []model.SendAttempt{}
	}
	json.NewEncoder(w).Encode(attempts)
}
