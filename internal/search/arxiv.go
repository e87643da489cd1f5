// Package search provides the literature search provider used at the head of
// the pipeline. The only implementation speaks the arXiv Atom export API.
package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paperwatch/internal/core"
	"paperwatch/internal/logger"
)

// DefaultBaseURL is the arXiv export API endpoint.
const DefaultBaseURL = "http://export.arxiv.org/api/query"

// Request describes one search against the provider.
type Request struct {
	Query      string
	MaxResults int
	SortBy     string // submittedDate, lastUpdatedDate, relevance
	SortOrder  string // ascending, descending
}

// Provider is the search capability consumed by the pipeline. A transport or
// provider failure is returned as an error and is fatal to the run.
type Provider interface {
	Search(ctx context.Context, req Request) ([]core.Paper, error)
}

// atomFeed mirrors the subset of the arXiv Atom response the pipeline needs.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID              string         `xml:"id"`
	Title           string         `xml:"title"`
	Summary         string         `xml:"summary"`
	Published       string         `xml:"published"`
	Updated         string         `xml:"updated"`
	Authors         []atomAuthor   `xml:"author"`
	Links           []atomLink     `xml:"link"`
	Categories      []atomCategory `xml:"category"`
	PrimaryCategory atomCategory   `xml:"primary_category"`
	Comment         string         `xml:"comment"`
	JournalRef      string         `xml:"journal_ref"`
	DOI             string         `xml:"doi"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// Client queries the arXiv Atom export API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient wires an HTTP client; a nil client gets a 30s timeout default.
func NewClient(client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: DefaultBaseURL, client: client}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// BuildQuery assembles the arXiv search expression from keywords and
// categories. Keywords are OR'd, categories are OR'd, and the two groups are
// AND'd; with neither configured the query matches everything.
func BuildQuery(keywords, categories []string) string {
	var parts []string

	if len(keywords) > 0 {
		terms := make([]string, len(keywords))
		for i, kw := range keywords {
			terms[i] = fmt.Sprintf("all:%q", kw)
		}
		parts = append(parts, "("+strings.Join(terms, " OR ")+")")
	}

	if len(categories) > 0 {
		terms := make([]string, len(categories))
		for i, cat := range categories {
			terms[i] = "cat:" + cat
		}
		parts = append(parts, "("+strings.Join(terms, " OR ")+")")
	}

	if len(parts) == 0 {
		return "all:*"
	}
	return strings.Join(parts, " AND ")
}

// Search executes the request and returns the parsed papers in feed order.
func (c *Client) Search(ctx context.Context, req Request) ([]core.Paper, error) {
	params := url.Values{}
	params.Set("search_query", req.Query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", req.MaxResults))
	params.Set("sortBy", normalizeSortBy(req.SortBy))
	params.Set("sortOrder", normalizeSortOrder(req.SortOrder))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "paperwatch/1.0")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("query arxiv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parse atom feed: %w", err)
	}

	papers := make([]core.Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		papers = append(papers, entry.toPaper())
	}

	logger.Info("Search complete", "query", req.Query, "papers", len(papers))
	return papers, nil
}

func (e atomEntry) toPaper() core.Paper {
	p := core.Paper{
		ArxivID:         idFromEntryURL(e.ID),
		Title:           collapseWhitespace(e.Title),
		Abstract:        strings.TrimSpace(e.Summary),
		Categories:      make([]string, 0, len(e.Categories)),
		PrimaryCategory: e.PrimaryCategory.Term,
		Comment:         strings.TrimSpace(e.Comment),
		JournalRef:      strings.TrimSpace(e.JournalRef),
		DOI:             strings.TrimSpace(e.DOI),
	}

	for _, a := range e.Authors {
		p.Authors = append(p.Authors, a.Name)
	}
	for _, cat := range e.Categories {
		p.Categories = append(p.Categories, cat.Term)
	}
	for _, link := range e.Links {
		p.Links = append(p.Links, link.Href)
		if link.Title == "pdf" {
			p.PDFURL = link.Href
		}
	}

	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		p.Published = t
	}
	if t, err := time.Parse(time.RFC3339, e.Updated); err == nil {
		p.Updated = t
	}

	return p
}

// idFromEntryURL strips the abs URL prefix from an entry id, e.g.
// "http://arxiv.org/abs/2401.01234v2" -> "2401.01234v2".
func idFromEntryURL(entryID string) string {
	if idx := strings.LastIndex(entryID, "/"); idx >= 0 {
		return entryID[idx+1:]
	}
	return entryID
}

// collapseWhitespace joins the multi-line titles arXiv wraps at 80 columns.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeSortBy(sortBy string) string {
	switch sortBy {
	case "lastUpdatedDate", "relevance", "submittedDate":
		return sortBy
	default:
		return "submittedDate"
	}
}

func normalizeSortOrder(order string) string {
	if order == "ascending" {
		return order
	}
	return "descending"
}
