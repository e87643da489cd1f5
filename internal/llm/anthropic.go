package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"paperwatch/internal/config"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicAPIVersion     = "2023-06-01"
)

type anthropicProvider struct {
	baseURL     string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
	client      *http.Client
}

func newAnthropicProvider(cfg config.ProviderConfig) *anthropicProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &anthropicProvider{
		baseURL:     baseURL,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: defaultTimeout},
	}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

func (p *anthropicProvider) Complete(ctx context.Context, system, user string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("anthropic API key is not configured")
	}

	payload := map[string]any{
		"model":      p.model,
		"system":     system,
		"max_tokens": p.maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": user},
		},
		"temperature": p.temperature,
	}

	var out struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}
	if err := postJSON(ctx, p.client, p.baseURL+"/messages", headers, payload, &out); err != nil {
		return "", err
	}

	if len(out.Content) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return out.Content[0].Text, nil
}
