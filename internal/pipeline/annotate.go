package pipeline

import (
	"context"
	"fmt"
	"sync"

	"paperwatch/internal/core"
	"paperwatch/internal/llm"
	"paperwatch/internal/logger"
	"paperwatch/internal/store"
)

// AnnotateStage enriches papers with AI summaries, abstract translations,
// and key insights. Each artifact kind is cached independently; a paper
// becomes a task only if at least one enabled kind is missing from the
// cache. Failures produce error placeholders instead of losing the paper.
type AnnotateStage struct {
	svc         llm.Service
	cache       *store.Store
	fingerprint string
	workers     int

	summary     bool
	translation bool
	insights    bool
}

func NewAnnotateStage(svc llm.Service, cache *store.Store, fingerprint string, workers int, summary, translation, insights bool) *AnnotateStage {
	return &AnnotateStage{
		svc:         svc,
		cache:       cache,
		fingerprint: fingerprint,
		workers:     workers,
		summary:     summary,
		translation: translation,
		insights:    insights,
	}
}

type annotateTask struct {
	index           int
	needSummary     bool
	needTranslation bool
	needInsights    bool
}

// Run fills in the enabled annotations for every paper, in place.
func (a *AnnotateStage) Run(ctx context.Context, papers []core.Paper) {
	if len(papers) == 0 || (!a.summary && !a.translation && !a.insights) {
		return
	}

	var tasks []annotateTask
	for i := range papers {
		task := annotateTask{
			index:           i,
			needSummary:     a.summary,
			needTranslation: a.translation,
			needInsights:    a.insights,
		}
		if entry, ok := a.cache.Get(papers[i]); ok {
			if task.needSummary {
				if cached := entry.ValidSummary(a.fingerprint); cached != nil {
					papers[i].AISummary = cached
					task.needSummary = false
				}
			}
			if task.needTranslation {
				if cached := entry.ValidTranslation(a.fingerprint); cached != nil {
					papers[i].Translation = cached
					task.needTranslation = false
				}
			}
			if task.needInsights {
				if cached := entry.ValidInsights(a.fingerprint); cached != nil {
					papers[i].Insights = cached
					task.needInsights = false
				}
			}
		}
		if task.needSummary || task.needTranslation || task.needInsights {
			tasks = append(tasks, task)
		}
	}
	logger.Info("AI annotation starting", "total", len(papers), "tasks", len(tasks))
	if len(tasks) == 0 {
		return
	}

	jobs := make(chan annotateTask, len(tasks))
	var wg sync.WaitGroup

	for w := 0; w < workerCount(a.workers, len(tasks)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				a.annotate(ctx, &papers[task.index], task)
			}
		}()
	}
	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)
	wg.Wait()

	logger.Info("AI annotation finished", "papers", len(papers))
}

func (a *AnnotateStage) annotate(ctx context.Context, p *core.Paper, task annotateTask) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		logger.Warn("Annotation task panicked", "id", p.ArxivID, "panic", fmt.Sprint(r))
		msg := fmt.Sprintf("annotation panicked: %v", r)
		if task.needSummary && p.AISummary == nil {
			p.AISummary = &core.SummaryResult{Summary: msg, Status: core.StatusError}
		}
		if task.needTranslation && p.Translation == nil {
			p.Translation = &core.Translation{Text: msg, Status: core.StatusError}
		}
		if task.needInsights && p.Insights == nil {
			p.Insights = &core.InsightsResult{Status: core.StatusError, Err: msg}
		}
	}()

	if task.needSummary {
		if text, err := a.svc.Summarize(ctx, *p); err != nil {
			logger.Warn("Summary failed", "id", p.ArxivID, "error", err.Error())
			p.AISummary = &core.SummaryResult{Summary: err.Error(), Status: core.StatusError}
		} else {
			p.AISummary = &core.SummaryResult{Summary: text, Status: core.StatusSuccess}
			a.cache.PutSummary(*p, *p.AISummary, a.fingerprint)
		}
	}

	if task.needTranslation {
		if text, err := a.svc.Translate(ctx, p.Abstract); err != nil {
			logger.Warn("Translation failed", "id", p.ArxivID, "error", err.Error())
			p.Translation = &core.Translation{Text: err.Error(), Status: core.StatusError}
		} else {
			p.Translation = &core.Translation{Text: text, Status: core.StatusSuccess}
			a.cache.PutTranslation(*p, *p.Translation, a.fingerprint)
		}
	}

	if task.needInsights {
		if insights, err := a.svc.ExtractInsights(ctx, *p); err != nil {
			logger.Warn("Insight extraction failed", "id", p.ArxivID, "error", err.Error())
			p.Insights = &core.InsightsResult{Status: core.StatusError, Err: err.Error()}
		} else {
			p.Insights = &core.InsightsResult{Insights: insights, Status: core.StatusSuccess}
			a.cache.PutInsights(*p, *p.Insights, a.fingerprint)
		}
	}
}
