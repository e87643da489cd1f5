package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"paperwatch/internal/archive"
	"paperwatch/internal/config"
	"paperwatch/internal/core"
	"paperwatch/internal/llm"
	"paperwatch/internal/logger"
	"paperwatch/internal/prompts"
	"paperwatch/internal/relevance"
	"paperwatch/internal/report"
	"paperwatch/internal/search"
	"paperwatch/internal/store"
)

// Pipeline owns one complete watch run from search to delivery.
type Pipeline struct {
	cfg      *config.Config
	provider search.Provider
	svc      llm.Service
	cache    *store.Store
	scorer   *relevance.Scorer
	archiver *archive.Archiver
	reporter *report.Coordinator

	annotationFP string
	filterFP     string
}

// New wires a pipeline from configuration. The LLM service is only built
// when AI features are enabled.
func New(cfg *config.Config) (*Pipeline, error) {
	loader := prompts.NewLoader(cfg.AI.PromptsFile)

	// An unusable provider (bad name, missing key) degrades to a run
	// without AI stages rather than aborting.
	var svc llm.Service
	if cfg.AI.Enabled {
		built, err := llm.New(cfg.AI, loader)
		if err != nil {
			logger.Warn("AI service unavailable, AI stages will be skipped", "error", err.Error())
		} else {
			svc = built
		}
	}

	cache := store.New(cfg.Storage.CacheFile, cfg.Storage.CacheMaxItems, cfg.Storage.CacheEnabled)
	if err := cache.Load(); err != nil {
		logger.Warn("Cache load failed, starting empty", "error", err.Error())
	}

	providerName, pc := cfg.AI.ProviderSettings()
	return &Pipeline{
		cfg:      cfg,
		provider: search.NewClient(nil),
		svc:      svc,
		cache:    cache,
		scorer:   relevance.NewScorer(cfg.Arxiv.Keywords, cfg.Arxiv.EnableRelevanceScore),
		archiver: archive.New(cfg.Storage.DataDir, cfg.Storage.PDFDir, cfg.Storage.Format),
		reporter: report.New(cfg),
		annotationFP: store.AnnotationFingerprint(
			providerName, pc.Model, pc.BaseURL, pc.MaxTokens, pc.Temperature, loader.Signature()),
		filterFP: store.FilterFingerprint(
			providerName, pc.Model, pc.BaseURL, strings.Join(filterKeywords(cfg), ","), loader.Signature()),
	}, nil
}

// Run executes one watch cycle. A failed search aborts the run; every later
// stage contains its own failures. The cache is flushed no matter how the
// run ends.
func (p *Pipeline) Run(ctx context.Context) core.RunResult {
	started := time.Now()
	result := core.RunResult{RunID: uuid.NewString(), Timestamp: started}

	defer func() {
		if err := p.cache.Flush(); err != nil {
			logger.Warn("Cache flush failed", "error", err.Error())
		}
	}()
	// Short outcome notification over the configured channel, whatever
	// way the run ends.
	defer func() { p.reporter.Notify(ctx, result) }()

	logger.Info("Run starting", "run_id", result.RunID, "keywords", strings.Join(p.cfg.Arxiv.Keywords, ", "))

	papers, err := p.provider.Search(ctx, search.Request{
		Query:      search.BuildQuery(p.cfg.Arxiv.Keywords, p.cfg.Arxiv.Categories),
		MaxResults: p.cfg.Arxiv.MaxResults,
		SortBy:     p.cfg.Arxiv.SortBy,
		SortOrder:  p.cfg.Arxiv.SortOrder,
	})
	if err != nil {
		result.Err = fmt.Sprintf("search failed: %v", err)
		return result
	}
	logger.Info("Search finished", "papers", len(papers))

	papers = Dedup(papers)
	papers = p.scorer.ScorePapers(papers)
	MultiLevelSort(papers, p.cfg.Arxiv.MultiLevelSort)

	if keywords := filterKeywords(p.cfg); p.svc != nil && p.cfg.AI.EnableFilter && len(keywords) > 0 {
		stage := NewFilterStage(p.svc, p.cache, p.filterFP, keywords, p.cfg.AI.FilterThreshold, p.cfg.AI.MaxWorkers)
		papers = stage.Run(ctx, papers)
	}
	if p.svc != nil {
		stage := NewAnnotateStage(p.svc, p.cache, p.annotationFP, p.cfg.AI.MaxWorkers,
			p.cfg.AI.EnableSummary, p.cfg.AI.EnableTranslation, p.cfg.AI.EnableInsights)
		stage.Run(ctx, papers)
	}
	result.PaperCount = len(papers)
	for _, paper := range papers {
		result.Titles = append(result.Titles, paper.Title)
	}

	dataFiles, err := p.archiver.SavePapers(papers, started)
	if err != nil {
		logger.Error("Failed to archive papers", err)
	}
	if p.cfg.Storage.DownloadPDF {
		p.archiver.DownloadPDFs(ctx, papers)
	}

	if p.cfg.AI.SendReport {
		outcome, err := p.reporter.Process(ctx, papers, dataFiles, started)
		result.ReportPath = outcome.ReportPath
		result.Delivered = outcome.Delivered
		if err != nil {
			// A run that found and processed papers is not undone by a
			// delivery problem; the report stays on disk for a retry.
			logger.Error("Report handling failed", err)
			result.Err = err.Error()
		}
	}

	result.Success = true
	logger.Info("Run finished", "run_id", result.RunID, "papers", result.PaperCount, "delivered", result.Delivered,
		"duration", time.Since(started).Round(time.Millisecond).String())
	return result
}

// filterKeywords returns the AI filter interests, falling back to the
// search keywords when none are configured.
func filterKeywords(cfg *config.Config) []string {
	raw := strings.TrimSpace(cfg.AI.FilterKeywords)
	if raw == "" {
		return cfg.Arxiv.Keywords
	}
	var keywords []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			keywords = append(keywords, part)
		}
	}
	return keywords
}
