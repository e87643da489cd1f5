package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"paperwatch/internal/archive"
	"paperwatch/internal/config"
	"paperwatch/internal/core"
	"paperwatch/internal/relevance"
	"paperwatch/internal/report"
	"paperwatch/internal/search"
	"paperwatch/internal/store"
)

type fakeProvider struct {
	papers []core.Paper
	err    error
}

func (f *fakeProvider) Search(context.Context, search.Request) ([]core.Paper, error) {
	return f.papers, f.err
}

func testPipeline(t *testing.T, provider search.Provider, ai *fakeAI) (*Pipeline, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		Arxiv: config.Arxiv{
			Keywords:             []string{"quantum"},
			MaxResults:           10,
			EnableRelevanceScore: true,
			MultiLevelSort: []core.SortSpec{
				{Field: "relevance_score", Order: "desc"},
			},
		},
		AI: config.AI{
			Enabled:         true,
			EnableFilter:    true,
			EnableSummary:   true,
			FilterThreshold: 0.7,
			MaxWorkers:      2,
			SendReport:      true,
			ReportDir:       filepath.Join(dir, "reports"),
		},
		Storage: config.Storage{
			DataDir:   filepath.Join(dir, "data"),
			Format:    "json",
			CacheFile: filepath.Join(dir, "cache.json"),
		},
	}

	p := &Pipeline{
		cfg:          cfg,
		provider:     provider,
		svc:          ai,
		cache:        store.New(cfg.Storage.CacheFile, 100, true),
		scorer:       relevance.NewScorer(cfg.Arxiv.Keywords, true),
		archiver:     archive.New(cfg.Storage.DataDir, cfg.Storage.PDFDir, cfg.Storage.Format),
		reporter:     report.New(cfg),
		annotationFP: "annotation-fp",
		filterFP:     "filter-fp",
	}
	return p, cfg
}

func TestRunEndToEnd(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{papers: []core.Paper{
		{ArxivID: "a", Title: "Quantum Things", Abstract: "quantum quantum", Updated: now},
		{ArxivID: "b", Title: "Unrelated Work", Abstract: "nothing here", Updated: now},
		{ArxivID: "a", Title: "Quantum Things", Abstract: "quantum quantum", Updated: now},
	}}
	ai := &fakeAI{verdicts: map[string]core.FilterVerdict{
		"a": {Relevant: true, Confidence: 0.9, Status: core.StatusSuccess},
		"b": {Relevant: false, Confidence: 0.9, Status: core.StatusSuccess},
	}}

	p, cfg := testPipeline(t, provider, ai)
	result := p.Run(context.Background())

	if !result.Success || result.Err != "" {
		t.Fatalf("result = %+v", result)
	}
	if result.PaperCount != 1 {
		t.Errorf("PaperCount = %d, want 1 (duplicate removed, irrelevant filtered)", result.PaperCount)
	}
	if result.ReportPath == "" {
		t.Fatal("expected a report path")
	}

	content, err := os.ReadFile(result.ReportPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "Quantum Things") {
		t.Error("report should contain the surviving paper")
	}
	if strings.Contains(string(content), "Unrelated Work") {
		t.Error("filtered paper must not appear in the report")
	}
	if !strings.Contains(string(content), "summary of a") {
		t.Error("report should contain the AI summary")
	}

	if _, err := os.Stat(cfg.Storage.CacheFile); err != nil {
		t.Errorf("cache should be flushed after the run: %v", err)
	}

	entries, err := os.ReadDir(cfg.Storage.DataDir)
	if err != nil || len(entries) == 0 {
		t.Errorf("papers should be archived: %v", err)
	}
}

func TestRunSearchFailureIsFatal(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("api unavailable")}
	p, _ := testPipeline(t, provider, &fakeAI{})

	result := p.Run(context.Background())

	if result.Success {
		t.Error("search failure must fail the run")
	}
	if !strings.Contains(result.Err, "search failed") {
		t.Errorf("err = %q", result.Err)
	}
	if result.PaperCount != 0 || result.ReportPath != "" {
		t.Errorf("no downstream work expected: %+v", result)
	}
}

func TestRunAIDisabled(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{papers: []core.Paper{
		{ArxivID: "a", Title: "T", Updated: now},
	}}

	p, cfg := testPipeline(t, provider, nil)
	p.svc = nil
	cfg.AI.Enabled = false

	result := p.Run(context.Background())
	if !result.Success {
		t.Fatalf("result = %+v", result)
	}
	if result.PaperCount != 1 {
		t.Errorf("PaperCount = %d, want 1", result.PaperCount)
	}
}

func TestRunNotifiesOverConfiguredChannel(t *testing.T) {
	var (
		mu       sync.Mutex
		payloads []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		payloads = append(payloads, string(body))
		mu.Unlock()
	}))
	t.Cleanup(server.Close)

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{papers: []core.Paper{
		{ArxivID: "a", Title: "Quantum Things", Abstract: "quantum", Updated: now},
	}}

	p, cfg := testPipeline(t, provider, &fakeAI{})
	cfg.Notification = config.Notification{
		Enabled:     true,
		Method:      "webhook",
		MaxAttempts: 1,
		RetryDelay:  "1ms",
		Webhook:     config.WebhookConfig{URL: server.URL},
	}
	p.reporter = report.New(cfg)

	result := p.Run(context.Background())
	if !result.Success || !result.Delivered {
		t.Fatalf("result = %+v", result)
	}

	// One post for the report, one for the run summary.
	mu.Lock()
	defer mu.Unlock()
	if len(payloads) != 2 {
		t.Fatalf("webhook posts = %d, want 2", len(payloads))
	}
	if !strings.Contains(payloads[1], "Run finished: 1 papers") ||
		!strings.Contains(payloads[1], "Quantum Things") {
		t.Errorf("notification payload = %q, want the run summary", payloads[1])
	}
}

func TestNewDegradesWhenProviderUnusable(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Arxiv: config.Arxiv{Keywords: []string{"quantum"}, MaxResults: 5},
		AI: config.AI{
			Enabled:         true,
			Provider:        "gemini", // no API key configured
			EnableFilter:    true,
			EnableSummary:   true,
			FilterThreshold: 0.7,
		},
		Storage: config.Storage{
			DataDir:   filepath.Join(dir, "data"),
			Format:    "json",
			CacheFile: filepath.Join(dir, "cache.json"),
		},
	}

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("construction should degrade, not fail: %v", err)
	}
	if p.svc != nil {
		t.Error("AI service should be nil when the provider cannot be built")
	}

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p.provider = &fakeProvider{papers: []core.Paper{
		{ArxivID: "a", Title: "T", Updated: now},
	}}

	result := p.Run(context.Background())
	if !result.Success {
		t.Fatalf("run should complete without AI stages: %+v", result)
	}
	if result.PaperCount != 1 {
		t.Errorf("PaperCount = %d, want 1", result.PaperCount)
	}
}

func TestRunSecondPassHitsCache(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{papers: []core.Paper{
		{ArxivID: "a", Title: "T", Abstract: "x", Updated: now},
	}}
	ai := &fakeAI{}

	p, _ := testPipeline(t, provider, ai)
	p.Run(context.Background())
	p.Run(context.Background())

	if ai.filterCalls != 1 {
		t.Errorf("filterCalls = %d, want 1 (second run cached)", ai.filterCalls)
	}
	if ai.summarizeCalls != 1 {
		t.Errorf("summarizeCalls = %d, want 1 (second run cached)", ai.summarizeCalls)
	}
}
