// Package llm provides the AI capabilities behind filtering and annotation:
// summarization, translation, insight extraction, and relevance judgement.
// A single Service fronts one of several chat providers.
package llm

import (
	"context"
	"fmt"
	"strings"

	"paperwatch/internal/config"
	"paperwatch/internal/core"
	"paperwatch/internal/prompts"
)

// Service exposes the AI operations the pipeline needs.
type Service interface {
	Summarize(ctx context.Context, paper core.Paper) (string, error)
	Translate(ctx context.Context, text string) (string, error)
	ExtractInsights(ctx context.Context, paper core.Paper) ([]string, error)
	FilterPaper(ctx context.Context, paper core.Paper, keywords []string) (core.FilterVerdict, error)
}

// chatProvider is one backend capable of a single system+user completion.
type chatProvider interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}

// New builds a Service for the configured provider.
func New(cfg config.AI, loader *prompts.Loader) (Service, error) {
	name, pc := cfg.ProviderSettings()

	var (
		provider chatProvider
		err      error
	)
	switch name {
	case "openai":
		provider = newOpenAIProvider(pc)
	case "anthropic":
		provider = newAnthropicProvider(pc)
	case "ollama":
		provider = newOllamaProvider(pc)
	case "gemini":
		provider, err = newGeminiProvider(pc)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", name, err)
	}

	return &service{
		provider:       provider,
		prompts:        loader,
		targetLanguage: cfg.TargetLanguage,
	}, nil
}

type service struct {
	provider       chatProvider
	prompts        *prompts.Loader
	targetLanguage string
}

func (s *service) Summarize(ctx context.Context, paper core.Paper) (string, error) {
	system, user := s.prompts.Prompt(prompts.KindSummarize, map[string]string{
		"title":   paper.Title,
		"authors": strings.Join(paper.Authors, ", "),
		"summary": paper.Abstract,
	})

	text, err := s.provider.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("summarize with %s: %w", s.provider.Name(), err)
	}
	return strings.TrimSpace(text), nil
}

func (s *service) Translate(ctx context.Context, text string) (string, error) {
	system, user := s.prompts.Prompt(prompts.KindTranslate, map[string]string{
		"lang_name": s.targetLanguage,
		"text":      text,
	})

	out, err := s.provider.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("translate with %s: %w", s.provider.Name(), err)
	}
	return strings.TrimSpace(out), nil
}

func (s *service) ExtractInsights(ctx context.Context, paper core.Paper) ([]string, error) {
	system, user := s.prompts.Prompt(prompts.KindInsights, map[string]string{
		"title":   paper.Title,
		"summary": paper.Abstract,
	})

	text, err := s.provider.Complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("extract insights with %s: %w", s.provider.Name(), err)
	}
	return ParseInsights(text), nil
}

func (s *service) FilterPaper(ctx context.Context, paper core.Paper, keywords []string) (core.FilterVerdict, error) {
	system, user := s.prompts.Prompt(prompts.KindFilter, map[string]string{
		"keywords": strings.Join(keywords, ", "),
		"title":    paper.Title,
		"summary":  paper.Abstract,
	})

	text, err := s.provider.Complete(ctx, system, user)
	if err != nil {
		return core.FilterVerdict{}, fmt.Errorf("filter with %s: %w", s.provider.Name(), err)
	}
	return ParseVerdict(text), nil
}
