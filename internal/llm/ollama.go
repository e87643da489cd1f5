package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"paperwatch/internal/config"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// ollamaProvider talks to a local Ollama server. No API key required.
type ollamaProvider struct {
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

func newOllamaProvider(cfg config.ProviderConfig) *ollamaProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &ollamaProvider{
		baseURL:     baseURL,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: defaultTimeout},
	}
}

func (p *ollamaProvider) Name() string { return "ollama" }

func (p *ollamaProvider) Complete(ctx context.Context, system, user string) (string, error) {
	payload := map[string]any{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"stream": false,
		"options": map[string]any{
			"temperature": p.temperature,
			"num_predict": p.maxTokens,
		},
	}

	var out struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := postJSON(ctx, p.client, p.baseURL+"/api/chat", nil, payload, &out); err != nil {
		return "", err
	}

	if out.Message.Content == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return out.Message.Content, nil
}
