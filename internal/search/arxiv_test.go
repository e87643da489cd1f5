package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <entry>
    <id>http://arxiv.org/abs/2401.01234v2</id>
    <updated>2024-01-10T08:30:00Z</updated>
    <published>2024-01-03T12:00:00Z</published>
    <title>Graph Neural Networks for
 Molecular Property Prediction</title>
    <summary>We study graph neural networks.</summary>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <arxiv:comment>14 pages, 3 figures</arxiv:comment>
    <arxiv:primary_category term="cs.LG"/>
    <category term="cs.LG"/>
    <category term="q-bio.BM"/>
    <link href="http://arxiv.org/abs/2401.01234v2" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2401.01234v2" rel="related" type="application/pdf"/>
  </entry>
</feed>`

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name       string
		keywords   []string
		categories []string
		want       string
	}{
		{
			name:     "keywords only",
			keywords: []string{"graph neural network", "transformer"},
			want:     `(all:"graph neural network" OR all:"transformer")`,
		},
		{
			name:       "categories only",
			categories: []string{"cs.AI", "cs.LG"},
			want:       "(cat:cs.AI OR cat:cs.LG)",
		},
		{
			name:       "both groups joined with AND",
			keywords:   []string{"diffusion"},
			categories: []string{"cs.CV"},
			want:       `(all:"diffusion") AND (cat:cs.CV)`,
		},
		{
			name: "empty matches everything",
			want: "all:*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildQuery(tt.keywords, tt.categories)
			if got != tt.want {
				t.Errorf("BuildQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchParsesAtomFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search_query"); got != "all:*" {
			t.Errorf("Expected search_query all:*, got %q", got)
		}
		if got := r.URL.Query().Get("sortBy"); got != "submittedDate" {
			t.Errorf("Expected default sortBy submittedDate, got %q", got)
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	client := NewClient(server.Client()).WithBaseURL(server.URL)
	papers, err := client.Search(context.Background(), Request{Query: "all:*", MaxResults: 10, SortBy: "bogus"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("Expected 1 paper, got %d", len(papers))
	}

	p := papers[0]
	if p.ArxivID != "2401.01234v2" {
		t.Errorf("Expected id 2401.01234v2, got %q", p.ArxivID)
	}
	if p.Title != "Graph Neural Networks for Molecular Property Prediction" {
		t.Errorf("Title whitespace not collapsed: %q", p.Title)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Ada Lovelace" {
		t.Errorf("Unexpected authors: %v", p.Authors)
	}
	if p.PrimaryCategory != "cs.LG" {
		t.Errorf("Expected primary category cs.LG, got %q", p.PrimaryCategory)
	}
	if len(p.Categories) != 2 {
		t.Errorf("Expected 2 categories, got %v", p.Categories)
	}
	if p.PDFURL != "http://arxiv.org/pdf/2401.01234v2" {
		t.Errorf("Unexpected pdf url: %q", p.PDFURL)
	}
	if p.Published.IsZero() || p.Updated.IsZero() {
		t.Error("Expected published and updated timestamps to be parsed")
	}
	if p.Comment != "14 pages, 3 figures" {
		t.Errorf("Unexpected comment: %q", p.Comment)
	}
}

func TestSearchErrorOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.Client()).WithBaseURL(server.URL)
	if _, err := client.Search(context.Background(), Request{Query: "all:*", MaxResults: 1}); err == nil {
		t.Fatal("Expected error for non-200 response")
	}
}
