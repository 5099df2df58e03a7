package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"
)

// Poster delivers JSON notifications to the ops service.
type Poster interface {
	PostJSON(ctx context.Context, path string, payload any, requestID string) error
}

// WebhookClient posts alerts to the ops webhook endpoint.
type WebhookClient struct {
	client  *http.Client
	baseURL string
}

// NewWebhookClient builds an ops webhook client. When client is nil it tries
// an ID token client first so private Cloud Run targets work out of the box.
func NewWebhookClient(client *http.Client, baseURL string) *WebhookClient {
	if baseURL == "" {
		panic("baseURL must not be empty")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 10 * time.Second}
		} else {
			client = idc
		}
	}
	return &WebhookClient{client: client, baseURL: baseURL}
}

// PostJSON posts the payload to the ops service.
func (c *WebhookClient) PostJSON(ctx context.Context, path string, payload any, requestID string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook error: %s", extractWebhookError(resp.Body))
	}
	return nil
}

func extractWebhookError(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "unknown error"
	}
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

var _ Poster = (*WebhookClient)(nil)
