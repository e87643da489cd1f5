// Package relevance provides deterministic keyword-based relevance scoring.
// Scores depend on the run's keyword configuration, not on the papers, so
// they are recomputed every run and never cached.
package relevance

import (
	"math"
	"strings"

	"paperwatch/internal/core"
	"paperwatch/internal/logger"
)

// Per-keyword weight caps. A keyword contributes at most
// titleWeight + abstractWeight + categoryWeight to a paper's raw score.
const (
	titleWeight     = 5.0
	abstractWeight  = 3.0
	categoryWeight  = 2.0
	abstractPerHit  = 0.5
	fallbackScore   = 0.5
	disabledScore   = 1.0
)

// Scorer scores papers against a fixed keyword set.
type Scorer struct {
	keywords []string
	enabled  bool
}

// NewScorer creates a scorer. With scoring disabled or no keywords the
// scorer becomes a pass that assigns every paper the full score.
func NewScorer(keywords []string, enabled bool) *Scorer {
	return &Scorer{keywords: keywords, enabled: enabled}
}

// ScorePapers attaches a relevance score in [0, 1] to every paper and
// returns the slice. A failure scoring one paper falls back to a neutral
// score and never aborts the batch.
func (s *Scorer) ScorePapers(papers []core.Paper) []core.Paper {
	if !s.enabled || len(s.keywords) == 0 {
		for i := range papers {
			papers[i].RelevanceScore = disabledScore
		}
		logger.Debug("Relevance scoring disabled or no keywords, assigning full score")
		return papers
	}

	for i := range papers {
		papers[i].RelevanceScore = s.scoreOne(&papers[i])
	}

	logScoreStats(papers)
	return papers
}

func (s *Scorer) scoreOne(p *core.Paper) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Relevance scoring failed", "arxiv_id", p.ArxivID, "panic", r)
			score = fallbackScore
		}
	}()

	title := strings.ToLower(p.Title)
	abstract := strings.ToLower(p.Abstract)
	categories := strings.ToLower(strings.Join(p.Categories, " "))

	var total, maxPossible float64
	for _, keyword := range s.keywords {
		kw := strings.ToLower(keyword)

		if strings.Contains(title, kw) {
			total += titleWeight
		}
		maxPossible += titleWeight

		if hits := strings.Count(abstract, kw); hits > 0 {
			total += math.Min(float64(hits)*abstractPerHit, abstractWeight)
		}
		maxPossible += abstractWeight

		if strings.Contains(categories, kw) {
			total += categoryWeight
		}
		maxPossible += categoryWeight
	}

	if maxPossible == 0 {
		return 0.0
	}
	return round3(math.Min(total/maxPossible, 1.0))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func logScoreStats(papers []core.Paper) {
	if len(papers) == 0 {
		return
	}
	minScore, maxScore, sum := 1.0, 0.0, 0.0
	for _, p := range papers {
		sum += p.RelevanceScore
		minScore = math.Min(minScore, p.RelevanceScore)
		maxScore = math.Max(maxScore, p.RelevanceScore)
	}
	logger.Info("Relevance scoring complete",
		"papers", len(papers),
		"avg", round3(sum/float64(len(papers))),
		"max", maxScore,
		"min", minScore,
	)
}
