package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"paperwatch/internal/config"
	"paperwatch/internal/core"
	"paperwatch/internal/prompts"
)

func openAITestService(t *testing.T, reply string) Service {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(server.Close)

	svc, err := New(config.AI{
		Provider:       "openai",
		TargetLanguage: "Chinese",
		OpenAI: config.ProviderConfig{
			APIKey:  "test-key",
			Model:   "gpt-4o-mini",
			BaseURL: server.URL,
		},
	}, prompts.NewLoader(""))
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestServiceSummarize(t *testing.T) {
	svc := openAITestService(t, "  A concise summary.  ")

	got, err := svc.Summarize(context.Background(), core.Paper{Title: "T", Abstract: "A"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "A concise summary." {
		t.Errorf("summary = %q", got)
	}
}

func TestServiceFilterPaper(t *testing.T) {
	svc := openAITestService(t, `{"relevant": true, "confidence": 0.9, "reason": "on topic"}`)

	v, err := svc.FilterPaper(context.Background(), core.Paper{Title: "T"}, []string{"quantum"})
	if err != nil {
		t.Fatal(err)
	}
	if !v.Relevant || v.Confidence != 0.9 {
		t.Errorf("verdict = %+v", v)
	}
}

func TestServiceErrorOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	svc, err := New(config.AI{
		Provider: "openai",
		OpenAI:   config.ProviderConfig{APIKey: "k", Model: "m", BaseURL: server.URL},
	}, prompts.NewLoader(""))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Summarize(context.Background(), core.Paper{Title: "T"}); err == nil {
		t.Fatal("expected error on 429 response")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(config.AI{Provider: "watson"}, prompts.NewLoader("")); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewClaudeAlias(t *testing.T) {
	svc, err := New(config.AI{
		Provider:  "claude",
		Anthropic: config.ProviderConfig{APIKey: "k", Model: "m"},
	}, prompts.NewLoader(""))
	if err != nil {
		t.Fatal(err)
	}
	if svc == nil {
		t.Fatal("expected a service for the claude alias")
	}
}
