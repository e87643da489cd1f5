// Package archive persists each run's papers to disk as JSON and/or CSV,
// and optionally downloads paper PDFs.
package archive

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"paperwatch/internal/core"
	"paperwatch/internal/logger"
)

const fileTimeLayout = "20060102_150405"

// Archiver writes run artifacts under the data directory.
type Archiver struct {
	dataDir string
	pdfDir  string
	format  string
	client  *http.Client
}

func New(dataDir, pdfDir, format string) *Archiver {
	return &Archiver{
		dataDir: dataDir,
		pdfDir:  pdfDir,
		format:  format,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// SavePapers writes the papers in the configured format (json, csv, or
// both) and returns the paths written.
func (a *Archiver) SavePapers(papers []core.Paper, now time.Time) ([]string, error) {
	if err := os.MkdirAll(a.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	stamp := now.Format(fileTimeLayout)
	var paths []string

	if a.format == "json" || a.format == "both" {
		path := filepath.Join(a.dataDir, "papers_"+stamp+".json")
		if err := a.saveJSON(path, papers); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	if a.format == "csv" || a.format == "both" {
		path := filepath.Join(a.dataDir, "papers_"+stamp+".csv")
		if err := a.saveCSV(path, papers); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	logger.Info("Papers archived", "count", len(papers), "files", strings.Join(paths, ", "))
	return paths, nil
}

func (a *Archiver) saveJSON(path string, papers []core.Paper) error {
	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal papers: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (a *Archiver) saveCSV(path string, papers []core.Paper) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"arxiv_id", "title", "authors", "published", "updated", "categories", "relevance_score", "pdf_url", "doi"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range papers {
		record := []string{
			p.ArxivID,
			p.Title,
			strings.Join(p.Authors, "; "),
			p.Published.Format(time.RFC3339),
			p.Updated.Format(time.RFC3339),
			strings.Join(p.Categories, "; "),
			strconv.FormatFloat(p.RelevanceScore, 'f', 3, 64),
			p.PDFURL,
			p.DOI,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// DownloadPDFs fetches each paper's PDF into the PDF directory. Failures
// are logged per paper and never abort the run.
func (a *Archiver) DownloadPDFs(ctx context.Context, papers []core.Paper) {
	if err := os.MkdirAll(a.pdfDir, 0o755); err != nil {
		logger.Warn("Failed to create PDF directory", "dir", a.pdfDir, "error", err.Error())
		return
	}

	downloaded := 0
	for _, p := range papers {
		if p.PDFURL == "" || p.ArxivID == "" {
			continue
		}
		path := filepath.Join(a.pdfDir, strings.ReplaceAll(p.ArxivID, "/", "_")+".pdf")
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := a.downloadOne(ctx, p.PDFURL, path); err != nil {
			logger.Warn("PDF download failed", "id", p.ArxivID, "error", err.Error())
			continue
		}
		downloaded++
	}
	logger.Info("PDF downloads finished", "downloaded", downloaded)
}

func (a *Archiver) downloadOne(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
