// Package messaging posts the run report to a webhook endpoint.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"paperwatch/internal/config"
	"paperwatch/internal/logger"
)

// ReportPayload is the JSON body sent to the webhook.
type ReportPayload struct {
	Type       string `json:"type"`
	Timestamp  string `json:"timestamp"`
	PaperCount int    `json:"paper_count"`
	Content    string `json:"content"`
	Format     string `json:"format"`
}

// WebhookClient delivers reports to a configured URL.
type WebhookClient struct {
	url    string
	method string
	client *http.Client
}

func NewWebhookClient(cfg config.WebhookConfig) *WebhookClient {
	method := strings.ToUpper(cfg.Method)
	if method != http.MethodPut {
		method = http.MethodPost
	}
	return &WebhookClient{
		url:    cfg.URL,
		method: method,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendReport posts the markdown report. Any non-2xx response is an error.
func (c *WebhookClient) SendReport(ctx context.Context, content string, paperCount int) error {
	if c.url == "" {
		return fmt.Errorf("webhook is not configured: url is required")
	}

	payload := ReportPayload{
		Type:       "arxiv_report",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		PaperCount: paperCount,
		Content:    content,
		Format:     "markdown",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %s: %s", resp.Status, strings.TrimSpace(string(excerpt)))
	}

	logger.Info("Webhook delivered", "url", c.url, "papers", paperCount)
	return nil
}
