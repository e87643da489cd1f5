// Package render builds the markdown report for a run.
package render

import (
	"fmt"
	"strings"
	"time"

	"paperwatch/internal/core"
)

// Render produces the full markdown report: a header, a table of contents,
// one section per paper, and a footer.
func Render(papers []core.Paper, generated time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# arXiv Paper Watch - %s\n\n", generated.Format("2006-01-02"))
	fmt.Fprintf(&b, "> Generated at %s, %d papers\n\n", generated.Format("2006-01-02 15:04:05"), len(papers))

	if len(papers) == 0 {
		b.WriteString("No papers matched this run.\n")
		return b.String()
	}

	b.WriteString("## Contents\n\n")
	for i, p := range papers {
		fmt.Fprintf(&b, "%d. [%s](#%s)\n", i+1, p.Title, slugify(fmt.Sprintf("%d %s", i+1, p.Title)))
	}
	b.WriteString("\n---\n\n")

	for i, p := range papers {
		writePaper(&b, i+1, p)
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "*Report generated by paperwatch on %s.*\n", generated.Format(time.RFC3339))
	return b.String()
}

func writePaper(b *strings.Builder, n int, p core.Paper) {
	fmt.Fprintf(b, "## %d. %s\n\n", n, p.Title)

	fmt.Fprintf(b, "- **Authors**: %s\n", strings.Join(p.Authors, ", "))
	fmt.Fprintf(b, "- **Published**: %s\n", p.Published.Format("2006-01-02"))
	if !p.Updated.IsZero() && !p.Updated.Equal(p.Published) {
		fmt.Fprintf(b, "- **Updated**: %s\n", p.Updated.Format("2006-01-02"))
	}
	if len(p.Categories) > 0 {
		fmt.Fprintf(b, "- **Categories**: %s\n", strings.Join(p.Categories, ", "))
	}
	if p.RelevanceScore > 0 {
		fmt.Fprintf(b, "- **Relevance**: %.3f\n", p.RelevanceScore)
	}
	if p.ArxivID != "" {
		fmt.Fprintf(b, "- **Links**: [abs](https://arxiv.org/abs/%s)", p.ArxivID)
		if p.PDFURL != "" {
			fmt.Fprintf(b, " | [pdf](%s)", p.PDFURL)
		}
		b.WriteString("\n")
	}
	if p.DOI != "" {
		fmt.Fprintf(b, "- **DOI**: %s\n", p.DOI)
	}
	b.WriteString("\n")

	if p.Insights != nil && p.Insights.Status == core.StatusSuccess && len(p.Insights.Insights) > 0 {
		b.WriteString("### Key Insights\n\n")
		for _, insight := range p.Insights.Insights {
			fmt.Fprintf(b, "- %s\n", insight)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Abstract\n\n")
	fmt.Fprintf(b, "%s\n\n", p.Abstract)

	if p.Translation != nil && p.Translation.Status == core.StatusSuccess {
		b.WriteString("### Translation\n\n")
		fmt.Fprintf(b, "%s\n\n", p.Translation.Text)
	}

	if p.AISummary != nil && p.AISummary.Status == core.StatusSuccess {
		b.WriteString("### AI Summary\n\n")
		fmt.Fprintf(b, "%s\n\n", p.AISummary.Summary)
	}

	if p.Comment != "" || p.JournalRef != "" {
		b.WriteString("### Additional Info\n\n")
		if p.Comment != "" {
			fmt.Fprintf(b, "- **Comment**: %s\n", p.Comment)
		}
		if p.JournalRef != "" {
			fmt.Fprintf(b, "- **Journal**: %s\n", p.JournalRef)
		}
		b.WriteString("\n")
	}
}

// slugify mirrors how markdown renderers build heading anchors: lowercase,
// spaces to hyphens, punctuation dropped.
func slugify(heading string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(heading) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('-')
		}
	}
	return b.String()
}
