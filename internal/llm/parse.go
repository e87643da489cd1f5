package llm

import (
	"encoding/json"
	"strconv"
	"strings"

	"paperwatch/internal/core"
)

const maxInsights = 5

// ParseVerdict extracts a relevance verdict from model output. It tries the
// expected JSON shape first, then falls back to scanning lines for the
// fields. Output that yields neither is treated as a conservative keep.
func ParseVerdict(text string) core.FilterVerdict {
	var parsed struct {
		Relevant   bool    `json:"relevant"`
		Confidence float64 `json:"confidence"`
		Reason     string  `json:"reason"`
	}
	if raw := extractJSONObject(text); raw != "" {
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			return core.FilterVerdict{
				Relevant:   parsed.Relevant,
				Confidence: clamp01(parsed.Confidence),
				Reason:     parsed.Reason,
				Status:     core.StatusSuccess,
			}
		}
	}

	if verdict, ok := scanVerdictLines(text); ok {
		return verdict
	}

	return core.FilterVerdict{
		Relevant:   true,
		Confidence: 0.5,
		Reason:     "could not parse model response",
		Status:     core.StatusSuccess,
	}
}

func scanVerdictLines(text string) (core.FilterVerdict, bool) {
	verdict := core.FilterVerdict{Confidence: 0.5, Status: core.StatusSuccess}
	foundRelevant := false

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "relevant"):
			if strings.Contains(lower, "true") || strings.Contains(lower, "yes") {
				verdict.Relevant = true
				foundRelevant = true
			} else if strings.Contains(lower, "false") || strings.Contains(lower, "no") {
				verdict.Relevant = false
				foundRelevant = true
			}
		case strings.Contains(lower, "confidence"):
			if value, ok := lastFloat(line); ok {
				verdict.Confidence = clamp01(value)
			}
		case strings.Contains(lower, "reason"):
			if _, rest, ok := strings.Cut(line, ":"); ok {
				verdict.Reason = strings.Trim(strings.TrimSpace(rest), `",`)
			}
		}
	}

	return verdict, foundRelevant
}

// ParseInsights extracts a list of insights from model output. JSON shapes
// ({"insights": [...]} or a bare array) are tried first, then bullet and
// numbered lines. At most five insights are kept.
func ParseInsights(text string) []string {
	if raw := extractJSONObject(text); raw != "" {
		var parsed struct {
			Insights []string `json:"insights"`
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil && len(parsed.Insights) > 0 {
			return capInsights(parsed.Insights)
		}
	}
	if raw := extractJSONArray(text); raw != "" {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err == nil && len(items) > 0 {
			return capInsights(items)
		}
	}

	var insights []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if trimmed, ok := trimListMarker(line); ok && trimmed != "" {
			insights = append(insights, trimmed)
		}
	}
	return capInsights(insights)
}

func trimListMarker(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if rest, ok := strings.CutPrefix(line, marker); ok {
			return strings.TrimSpace(rest), true
		}
	}
	// Numbered lines like "1. insight" or "2) insight".
	for i, r := range line {
		if r >= '0' && r <= '9' {
			continue
		}
		if i > 0 && (r == '.' || r == ')') {
			return strings.TrimSpace(line[i+1:]), true
		}
		break
	}
	return "", false
}

func capInsights(insights []string) []string {
	if len(insights) > maxInsights {
		return insights[:maxInsights]
	}
	return insights
}

// extractJSONObject returns the outermost {...} span of the text, with any
// markdown code fences removed. Empty string when no object is present.
func extractJSONObject(text string) string {
	return extractSpan(stripFences(text), '{', '}')
}

func extractJSONArray(text string) string {
	return extractSpan(stripFences(text), '[', ']')
}

func extractSpan(text string, open, close byte) string {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	return strings.ReplaceAll(text, "```", "")
}

func lastFloat(line string) (float64, bool) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	for i := len(fields) - 1; i >= 0; i-- {
		if value, err := strconv.ParseFloat(fields[i], 64); err == nil {
			return value, true
		}
	}
	return 0, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
