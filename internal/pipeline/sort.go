package pipeline

import (
	"sort"
	"strings"

	"paperwatch/internal/core"
	"paperwatch/internal/logger"
)

// MultiLevelSort orders papers by the given specs, with the first spec as
// the primary key and later specs breaking ties. Each level is a stable
// sort, applied last to first. Supported fields: published, updated,
// relevance_score, title. Unknown fields are logged and skipped.
func MultiLevelSort(papers []core.Paper, specs []core.SortSpec) {
	for i := len(specs) - 1; i >= 0; i-- {
		spec := specs[i]
		less := lessFunc(spec.Field)
		if less == nil {
			logger.Warn("Unknown sort field, skipping", "field", spec.Field)
			continue
		}

		ascending := strings.HasPrefix(strings.ToLower(spec.Order), "asc")
		sort.SliceStable(papers, func(a, b int) bool {
			if ascending {
				return less(papers[a], papers[b])
			}
			return less(papers[b], papers[a])
		})
	}
}

func lessFunc(field string) func(a, b core.Paper) bool {
	// submittedDate and lastUpdatedDate are the arXiv API's names for the
	// same fields; configs use either spelling.
	switch strings.ToLower(field) {
	case "published", "submitteddate":
		return func(a, b core.Paper) bool { return a.Published.Before(b.Published) }
	case "updated", "lastupdateddate":
		return func(a, b core.Paper) bool { return a.Updated.Before(b.Updated) }
	case "relevance_score":
		return func(a, b core.Paper) bool { return a.RelevanceScore < b.RelevanceScore }
	case "title":
		return func(a, b core.Paper) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	default:
		return nil
	}
}
