package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"orderflow/internal/model"
)

type stubRuleStorage struct {
	rules []model.StatusRule
	err   error
}

func (s *stubRuleStorage) ListActiveRules(_ context.Context) ([]model.StatusRule, error) {
	return s.rules, s.err
}

func (s *stubRuleStorage) Ping(_ context.Context) error { return nil }

type stubAttemptStorage struct {
	attempts   []model.SendAttempt
	err        error
	lastStatus string
	lastLimit  int
}

func (s *stubAttemptStorage) RecordAttempt(_ context.Context, _ *model.SendAttempt) error { return nil }
func (s *stubAttemptStorage) MarkSent(_ context.Context, _ int64, _ string) error         { return nil }
func (s *stubAttemptStorage) MarkFailed(_ context.Context, _ int64, _ string) error       { return nil }

func (s *stubAttemptStorage) ListAttempts(_ context.Context, status string, limit int) ([]model.SendAttempt, error) {
	s.lastStatus = status
	s.lastLimit = limit
	return s.attempts, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListRules(t *testing.T) {
	rules := &stubRuleStorage{rules: []model.StatusRule{{ID: "rule-1", TriggerStatus: "Casting Order"}}}
	h := NewAutomationHandler(rules, &stubAttemptStorage{}, testLogger())

	rec := httptest.NewRecorder()
	h.ListRules(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []model.StatusRule
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	require.Equal(t, "rule-1", got[0].ID)
}

func TestListRulesError(t *testing.T) {
	rules := &stubRuleStorage{err: errors.New("db down")}
	h := NewAutomationHandler(rules, &stubAttemptStorage{}, testLogger())

	rec := httptest.NewRecorder()
	h.ListRules(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListAttemptsFiltersByStatus(t *testing.T) {
	attempts := &stubAttemptStorage{attempts: []model.SendAttempt{{ID: 7, Status: model.AttemptFailed}}}
	h := NewAutomationHandler(&stubRuleStorage{}, attempts, testLogger())

	rec := httptest.NewRecorder()
	h.ListAttempts(rec, httptest.NewRequest(http.MethodGet, "/api/v1/attempts?status=failed&limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, model.AttemptFailed, attempts.lastStatus)
	require.Equal(t, 5, attempts.lastLimit)

	var got []model.SendAttempt
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	require.Equal(t, int64(7), got[0].ID)
}

func TestListAttemptsRejectsUnknownStatus(t *testing.T) {
	h := NewAutomationHandler(&stubRuleStorage{}, &stubAttemptStorage{}, testLogger())

	rec := httptest.NewRecorder()
	h.ListAttempts(rec, httptest.NewRequest(http.MethodGet, "/api/v1/attempts?status=bogus", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAttemptsEmptyResultIsJSONArray(t *testing.T) {
	h := NewAutomationHandler(&stubRuleStorage{}, &stubAttemptStorage{}, testLogger())

	rec := httptest.NewRecorder()
	h.ListAttempts(rec, httptest.NewRequest(http.MethodGet, "/api/v1/attempts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}
