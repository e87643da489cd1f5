package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"paperwatch/internal/config"
)

// geminiProvider uses the official Gemini SDK rather than raw HTTP.
type geminiProvider struct {
	model       string
	maxTokens   int
	temperature float64
	client      *genai.Client
}

func newGeminiProvider(cfg config.ProviderConfig) (*geminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &geminiProvider{
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      client,
	}, nil
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Complete(ctx context.Context, system, user string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: user}},
		Role:  "user",
	}}

	temperature := float32(p.temperature)
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(p.maxTokens),
		Temperature:     &temperature,
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
