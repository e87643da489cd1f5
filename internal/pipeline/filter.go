package pipeline

import (
	"context"
	"sync"

	"paperwatch/internal/core"
	"paperwatch/internal/llm"
	"paperwatch/internal/logger"
	"paperwatch/internal/store"
)

// FilterStage asks the AI whether each paper matches the reader's interests
// and drops the ones it is confident are not relevant. Verdicts are served
// from the cache when valid; misses run through a worker pool. A failed
// judgement keeps the paper.
type FilterStage struct {
	svc         llm.Service
	cache       *store.Store
	fingerprint string
	keywords    []string
	threshold   float64
	workers     int
}

func NewFilterStage(svc llm.Service, cache *store.Store, fingerprint string, keywords []string, threshold float64, workers int) *FilterStage {
	return &FilterStage{
		svc:         svc,
		cache:       cache,
		fingerprint: fingerprint,
		keywords:    keywords,
		threshold:   threshold,
		workers:     workers,
	}
}

// Run attaches a verdict to every paper and returns the papers that pass.
func (f *FilterStage) Run(ctx context.Context, papers []core.Paper) []core.Paper {
	if len(papers) == 0 {
		return papers
	}

	var pending []int
	cacheHits := 0
	for i := range papers {
		if entry, ok := f.cache.Get(papers[i]); ok {
			if verdict := entry.ValidVerdict(f.fingerprint); verdict != nil {
				papers[i].Verdict = verdict
				cacheHits++
				continue
			}
		}
		pending = append(pending, i)
	}
	logger.Info("AI filter starting", "total", len(papers), "cache_hits", cacheHits, "pending", len(pending))

	if len(pending) > 0 {
		jobs := make(chan int, len(pending))
		var wg sync.WaitGroup

		for w := 0; w < workerCount(f.workers, len(pending)); w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					f.judge(ctx, &papers[i])
				}
			}()
		}
		for _, i := range pending {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	kept := make([]core.Paper, 0, len(papers))
	for _, p := range papers {
		if f.keep(p) {
			kept = append(kept, p)
		} else {
			logger.Debug("Paper filtered out", "id", p.ArxivID, "reason", p.Verdict.Reason)
		}
	}
	logger.Info("AI filter finished", "kept", len(kept), "dropped", len(papers)-len(kept))
	return kept
}

func (f *FilterStage) judge(ctx context.Context, p *core.Paper) {
	verdict, err := f.svc.FilterPaper(ctx, *p, f.keywords)
	if err != nil {
		logger.Warn("Filter judgement failed, keeping paper", "id", p.ArxivID, "error", err.Error())
		p.Verdict = &core.FilterVerdict{
			Relevant:   true,
			Confidence: 0.5,
			Reason:     err.Error(),
			Status:     core.StatusError,
		}
		return
	}

	p.Verdict = &verdict
	f.cache.PutFilter(*p, verdict, f.fingerprint)
}

// keep errs on the side of keeping: papers without a verdict, or whose
// judgement failed, stay in.
func (f *FilterStage) keep(p core.Paper) bool {
	if p.Verdict == nil || p.Verdict.Status != core.StatusSuccess {
		return true
	}
	return p.Verdict.Relevant && p.Verdict.Confidence >= f.threshold
}
