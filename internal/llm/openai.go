package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"paperwatch/internal/config"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// openAIProvider talks to OpenAI-compatible chat completion APIs.
type openAIProvider struct {
	baseURL     string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
	client      *http.Client
}

func newOpenAIProvider(cfg config.ProviderConfig) *openAIProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &openAIProvider{
		baseURL:     baseURL,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: defaultTimeout},
	}
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) Complete(ctx context.Context, system, user string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("openai API key is not configured")
	}

	payload := map[string]any{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"max_tokens":  p.maxTokens,
		"temperature": p.temperature,
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	if err := postJSON(ctx, p.client, p.baseURL+"/chat/completions", headers, payload, &out); err != nil {
		return "", err
	}

	if len(out.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return out.Choices[0].Message.Content, nil
}
