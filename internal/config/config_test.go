package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `arxiv:
  keywords:
    - quantum computing
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.Arxiv.Keywords) != 1 || cfg.Arxiv.Keywords[0] != "quantum computing" {
		t.Errorf("keywords = %v", cfg.Arxiv.Keywords)
	}
	if cfg.Arxiv.MaxResults != 50 {
		t.Errorf("max_results default = %d, want 50", cfg.Arxiv.MaxResults)
	}
	if cfg.AI.FilterThreshold != 0.7 {
		t.Errorf("filter_threshold default = %g, want 0.7", cfg.AI.FilterThreshold)
	}
	if cfg.Notification.MaxAttempts != 3 || cfg.Notification.RetryDelay != "5s" {
		t.Errorf("retry defaults = %d / %q", cfg.Notification.MaxAttempts, cfg.Notification.RetryDelay)
	}
	if cfg.Storage.CacheFile == "" {
		t.Error("cache file should default under the data directory")
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `ai:
  filter_threshold: 1.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for threshold > 1")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Arxiv:   Arxiv{MaxResults: 10},
			AI:      AI{FilterThreshold: 0.5},
			Storage: Storage{DataDir: "./data", CacheEnabled: true},
		}
	}

	if err := validate(base()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := base()
	cfg.Arxiv.MaxResults = 0
	if err := validate(cfg); err == nil {
		t.Error("max_results = 0 should be rejected")
	}

	cfg = base()
	cfg.Notification.Enabled = true
	cfg.Notification.Method = "carrier_pigeon"
	if err := validate(cfg); err == nil {
		t.Error("unknown notification method should be rejected")
	}

	cfg = base()
	if err := validate(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.CacheFile != "./data/cache.json" {
		t.Errorf("cache file = %q", cfg.Storage.CacheFile)
	}
}

func TestProviderSettings(t *testing.T) {
	ai := AI{
		Provider:  "claude",
		OpenAI:    ProviderConfig{Model: "gpt"},
		Anthropic: ProviderConfig{Model: "sonnet"},
	}

	name, pc := ai.ProviderSettings()
	if name != "anthropic" || pc.Model != "sonnet" {
		t.Errorf("claude alias: name=%q model=%q", name, pc.Model)
	}

	ai.Provider = "OpenAI"
	if name, pc = ai.ProviderSettings(); name != "openai" || pc.Model != "gpt" {
		t.Errorf("openai: name=%q model=%q", name, pc.Model)
	}
}
