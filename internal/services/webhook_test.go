package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pathlight/pathlight-backend/internal/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return log
}

func TestNotifyAssessmentCompletedHitsEndpoint(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("uniqueId")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("AUTOMATION_WEBHOOK_URL", srv.URL)
	ws := NewWebhookService(newTestLogger(t))

	ws.NotifyAssessmentCompleted(context.Background(), "STU-ABC123")

	if gotPath != "/assessment-completed" {
		t.Errorf("path = %s, want /assessment-completed", gotPath)
	}
	if gotQuery != "STU-ABC123" {
		t.Errorf("uniqueId = %s, want STU-ABC123", gotQuery)
	}
}

func TestTriggerRecommendationWrapsPayload(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("AUTOMATION_WEBHOOK_URL", srv.URL)
	ws := NewWebhookService(newTestLogger(t))

	delivered := ws.TriggerRecommendation(context.Background(), "STU-ABC123", json.RawMessage(`{"career":"designer"}`))
	if !delivered {
		t.Fatal("delivered = false, want true on 200")
	}

	var wrapped struct {
		UniqueID string          `json:"uniqueId"`
		Payload  json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(gotBody, &wrapped); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if wrapped.UniqueID != "STU-ABC123" {
		t.Errorf("uniqueId = %s, want STU-ABC123", wrapped.UniqueID)
	}
	var payload map[string]string
	if err := json.Unmarshal(wrapped.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["career"] != "designer" {
		t.Errorf("payload career = %s, want designer", payload["career"])
	}
}

func TestTriggerRecommendationEscapesUniqueID(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("AUTOMATION_WEBHOOK_URL", srv.URL)
	ws := NewWebhookService(newTestLogger(t))

	// ids are generated without quotes, but the relay must not depend on that
	awkward := `STU-"A\B`
	if !ws.TriggerRecommendation(context.Background(), awkward, nil) {
		t.Fatal("delivered = false, want true on 200")
	}

	var wrapped struct {
		UniqueID string `json:"uniqueId"`
	}
	if err := json.Unmarshal(gotBody, &wrapped); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if wrapped.UniqueID != awkward {
		t.Errorf("uniqueId = %q, want %q", wrapped.UniqueID, awkward)
	}
}

func TestTriggerRecommendationReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	t.Setenv("AUTOMATION_WEBHOOK_URL", srv.URL)
	ws := NewWebhookService(newTestLogger(t))

	if ws.TriggerRecommendation(context.Background(), "STU-ABC123", nil) {
		t.Error("delivered = true on 502, want false")
	}
}

func TestWebhookDisabledWithoutBaseURL(t *testing.T) {
	t.Setenv("AUTOMATION_WEBHOOK_URL", "")
	ws := NewWebhookService(newTestLogger(t))

	// must not panic or hang, just report undelivered
	ws.NotifyAssessmentCompleted(context.Background(), "STU-ABC123")
	if ws.TriggerRecommendation(context.Background(), "STU-ABC123", nil) {
		t.Error("delivered = true with no endpoint configured")
	}
}
