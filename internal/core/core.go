package core

import "time"

// Status marks whether an AI-produced artifact was generated successfully.
// Artifacts carrying StatusError are rendered as placeholders and are never
// served from cache.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Paper represents one literature item returned by the search provider.
type Paper struct {
	ArxivID         string    `json:"arxiv_id"`         // Identifier assigned by arXiv (e.g. "2401.01234v2")
	Title           string    `json:"title"`            // Paper title
	Authors         []string  `json:"authors"`          // Author names in listed order
	Abstract        string    `json:"summary"`          // Abstract text as published
	Published       time.Time `json:"published"`        // First submission timestamp
	Updated         time.Time `json:"updated"`          // Last update timestamp; part of the cache key
	Categories      []string  `json:"categories"`       // All category tags
	PrimaryCategory string    `json:"primary_category"` // Primary category tag
	PDFURL          string    `json:"pdf_url"`          // Direct PDF link
	Comment         string    `json:"comment"`          // Author comment, if any
	JournalRef      string    `json:"journal_ref"`      // Journal reference, if any
	DOI             string    `json:"doi"`              // DOI, if any
	Links           []string  `json:"links"`            // All links attached to the entry

	// Run-scoped results. Attached in memory during a run; the relevance
	// score is recomputed every run, the AI artifacts may come from cache.
	RelevanceScore float64         `json:"relevance_score"`
	Verdict        *FilterVerdict  `json:"filter_result,omitempty"`
	AISummary      *SummaryResult  `json:"ai_summary,omitempty"`
	Translation    *Translation    `json:"translation,omitempty"`
	Insights       *InsightsResult `json:"insights,omitempty"`
}

// FilterVerdict is the AI filter stage's relevance judgment for one paper.
type FilterVerdict struct {
	Relevant   bool    `json:"relevant"`
	Confidence float64 `json:"confidence"` // In [0, 1]
	Reason     string  `json:"reason"`
	Status     Status  `json:"status"`
}

// SummaryResult holds an AI-generated structured summary of a paper.
type SummaryResult struct {
	Summary string `json:"summary"`
	Status  Status `json:"status"`
}

// Translation holds a translated abstract.
type Translation struct {
	Text   string `json:"text"`
	Status Status `json:"status"`
}

// InsightsResult holds the key insights extracted from a paper.
type InsightsResult struct {
	Insights []string `json:"insights"`
	Status   Status   `json:"status"`
	Err      string   `json:"error,omitempty"`
}

// RunResult summarizes one pipeline run.
type RunResult struct {
	RunID      string    `json:"run_id"`
	Success    bool      `json:"success"`
	PaperCount int       `json:"paper_count"`
	ReportPath string    `json:"report_path,omitempty"` // Empty when the report was cleaned up or never written
	Delivered  bool      `json:"delivered"`
	Timestamp  time.Time `json:"timestamp"`
	Titles     []string  `json:"titles,omitempty"`
	Err        string    `json:"error,omitempty"`
}

// SortSpec is one level of a multi-level sort. The first spec in a list is
// the primary sort key; later specs break ties.
type SortSpec struct {
	Field string `json:"field" mapstructure:"field"`
	Order string `json:"order" mapstructure:"order"` // "ascending" or "descending"
}

// CacheKey derives the composite cache key for a paper: "<id>:<updated>".
// Papers missing either component have no cache identity and return "".
// All cache key construction goes through this function.
func CacheKey(p Paper) string {
	if p.ArxivID == "" || p.Updated.IsZero() {
		return ""
	}
	return p.ArxivID + ":" + p.Updated.UTC().Format(time.RFC3339)
}
