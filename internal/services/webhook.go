package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/utils"
)

const webhookTimeout = 30 * time.Second

// WebhookService relays events to the external automation endpoint (n8n).
// Calls are best-effort: a failure is logged and reported as a soft
// condition, never propagated as a request error.
type WebhookService interface {
	NotifyAssessmentCompleted(ctx context.Context, uniqueID string)
	TriggerRecommendation(ctx context.Context, uniqueID string, payload json.RawMessage) (delivered bool)
}

type webhookService struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewWebhookService(log *logger.Logger) WebhookService {
	serviceLog := log.With("service", "WebhookService")
	baseURL := strings.TrimRight(utils.GetEnv("AUTOMATION_WEBHOOK_URL", "", log), "/")
	if baseURL == "" {
		serviceLog.Warn("AUTOMATION_WEBHOOK_URL not set, webhook relay disabled")
	}
	return &webhookService{
		log:        serviceLog,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: webhookTimeout},
	}
}

func (ws *webhookService) NotifyAssessmentCompleted(ctx context.Context, uniqueID string) {
	if ws.baseURL == "" || uniqueID == "" {
		return
	}
	endpoint := ws.baseURL + "/assessment-completed?uniqueId=" + url.QueryEscape(uniqueID)

	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		ws.log.Warn("Webhook request build failed", "error", err)
		return
	}
	resp, err := ws.httpClient.Do(req)
	if err != nil {
		ws.log.Warn("Webhook call failed", "unique_id", uniqueID, "error", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		ws.log.Warn("Webhook returned non-success", "unique_id", uniqueID, "status", resp.StatusCode)
	}
}

func (ws *webhookService) TriggerRecommendation(ctx context.Context, uniqueID string, payload json.RawMessage) bool {
	if ws.baseURL == "" || uniqueID == "" {
		return false
	}
	body := payload
	if len(body) == 0 {
		body = json.RawMessage(`{}`)
	}
	wrapped, err := json.Marshal(struct {
		UniqueID string          `json:"uniqueId"`
		Payload  json.RawMessage `json:"payload"`
	}{UniqueID: uniqueID, Payload: body})
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.baseURL+"/recommend", bytes.NewReader(wrapped))
	if err != nil {
		ws.log.Warn("Webhook request build failed", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ws.httpClient.Do(req)
	if err != nil {
		ws.log.Warn("Webhook call failed", "unique_id", uniqueID, "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		ws.log.Warn("Webhook returned non-success", "unique_id", uniqueID, "status", resp.StatusCode)
		return false
	}
	return true
}
