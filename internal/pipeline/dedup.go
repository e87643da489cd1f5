// Package pipeline runs the paper-watch stages in order: search, dedup,
// relevance scoring, sorting, AI filtering, AI annotation, persistence,
// and report delivery.
package pipeline

import (
	"paperwatch/internal/core"
	"paperwatch/internal/logger"
)

// Dedup drops papers whose arXiv ID was already seen, keeping the first
// occurrence. Papers without an ID are never deduplicated. Order is
// otherwise preserved.
func Dedup(papers []core.Paper) []core.Paper {
	seen := make(map[string]struct{}, len(papers))
	out := make([]core.Paper, 0, len(papers))

	for _, p := range papers {
		if p.ArxivID != "" {
			if _, dup := seen[p.ArxivID]; dup {
				continue
			}
			seen[p.ArxivID] = struct{}{}
		}
		out = append(out, p)
	}

	if dropped := len(papers) - len(out); dropped > 0 {
		logger.Info("Removed duplicate papers", "dropped", dropped, "remaining", len(out))
	}
	return out
}
