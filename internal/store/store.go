// Package store implements the persistent AI-artifact cache. Entries are
// keyed by a paper's composite cache key and validated against configuration
// fingerprints, so a prompt or model change invalidates reuse without
// touching the file.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"paperwatch/internal/core"
	"paperwatch/internal/logger"
)

// fileVersion is the on-disk cache format version.
const fileVersion = 1

// Entry holds the cached AI artifacts for one paper version. Entries are
// owned by the Store; Get returns copies and all mutation goes through the
// Put methods.
type Entry struct {
	CachedAt          time.Time            `json:"cached_at"`
	AIFingerprint     string               `json:"ai_fingerprint,omitempty"`
	FilterFingerprint string               `json:"filter_fingerprint,omitempty"`
	AISummary         *core.SummaryResult  `json:"ai_summary,omitempty"`
	Translation       *core.Translation    `json:"translation,omitempty"`
	Insights          *core.InsightsResult `json:"insights,omitempty"`
	Verdict           *core.FilterVerdict  `json:"filter_result,omitempty"`
}

// ValidSummary returns the cached summary if it was produced under the
// given fingerprint and succeeded, nil otherwise.
func (e Entry) ValidSummary(fingerprint string) *core.SummaryResult {
	if e.AIFingerprint != fingerprint || e.AISummary == nil || e.AISummary.Status != core.StatusSuccess {
		return nil
	}
	return e.AISummary
}

// ValidTranslation returns the cached translation if usable under the given
// fingerprint. Error-status translations are never served from cache.
func (e Entry) ValidTranslation(fingerprint string) *core.Translation {
	if e.AIFingerprint != fingerprint || e.Translation == nil || e.Translation.Status != core.StatusSuccess {
		return nil
	}
	return e.Translation
}

// ValidInsights returns the cached insights if usable under the given
// fingerprint.
func (e Entry) ValidInsights(fingerprint string) *core.InsightsResult {
	if e.AIFingerprint != fingerprint || e.Insights == nil || e.Insights.Status != core.StatusSuccess {
		return nil
	}
	return e.Insights
}

// ValidVerdict returns the cached filter verdict if usable under the given
// filter fingerprint.
func (e Entry) ValidVerdict(fingerprint string) *core.FilterVerdict {
	if e.FilterFingerprint != fingerprint || e.Verdict == nil || e.Verdict.Status != core.StatusSuccess {
		return nil
	}
	return e.Verdict
}

// cacheFile is the persisted layout: {version, items}.
type cacheFile struct {
	Version int               `json:"version"`
	Items   map[string]*Entry `json:"items"`
}

// Store is the cache. Put methods are safe for concurrent use by the
// worker pools; the on-disk file is only ever written by Flush.
type Store struct {
	mu       sync.Mutex
	path     string
	maxItems int
	enabled  bool
	dirty    bool
	items    map[string]*Entry
}

// New creates a store persisting to path, pruned to maxItems on flush.
// A disabled store never hits and never persists.
func New(path string, maxItems int, enabled bool) *Store {
	if maxItems <= 0 {
		maxItems = 5000
	}
	return &Store{
		path:     path,
		maxItems: maxItems,
		enabled:  enabled,
		items:    make(map[string]*Entry),
	}
}

// Load reads the persisted cache. A missing file yields an empty cache; a
// malformed file yields an empty cache with a warning. Neither is an error.
func (s *Store) Load() error {
	if !s.enabled || s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil || file.Items == nil {
		logger.Warn("Cache file malformed, starting empty", "path", s.path)
		return nil
	}

	s.mu.Lock()
	s.items = file.Items
	s.mu.Unlock()

	logger.Info("Cache loaded", "path", s.path, "entries", len(file.Items))
	return nil
}

// Get returns a copy of the entry for the paper. Papers without a cache
// identity never hit.
func (s *Store) Get(p core.Paper) (Entry, bool) {
	if !s.enabled {
		return Entry{}, false
	}
	key := core.CacheKey(p)
	if key == "" {
		return Entry{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[key]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// PutFilter upserts the filter verdict for the paper under the given filter
// fingerprint and marks the store dirty.
func (s *Store) PutFilter(p core.Paper, verdict core.FilterVerdict, fingerprint string) {
	s.update(p, func(e *Entry) {
		e.FilterFingerprint = fingerprint
		e.Verdict = &verdict
	})
}

// PutSummary upserts the AI summary under the given annotation fingerprint.
func (s *Store) PutSummary(p core.Paper, summary core.SummaryResult, fingerprint string) {
	s.update(p, func(e *Entry) {
		e.AIFingerprint = fingerprint
		e.AISummary = &summary
	})
}

// PutTranslation upserts the translation under the given annotation fingerprint.
func (s *Store) PutTranslation(p core.Paper, translation core.Translation, fingerprint string) {
	s.update(p, func(e *Entry) {
		e.AIFingerprint = fingerprint
		e.Translation = &translation
	})
}

// PutInsights upserts the insights under the given annotation fingerprint.
func (s *Store) PutInsights(p core.Paper, insights core.InsightsResult, fingerprint string) {
	s.update(p, func(e *Entry) {
		e.AIFingerprint = fingerprint
		e.Insights = &insights
	})
}

func (s *Store) update(p core.Paper, apply func(*Entry)) {
	if !s.enabled {
		return
	}
	key := core.CacheKey(p)
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[key]
	if !ok {
		entry = &Entry{}
		s.items[key] = entry
	}
	entry.CachedAt = time.Now().UTC()
	apply(entry)
	s.dirty = true
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Flush prunes the cache to its item cap and atomically persists it. It is
// a no-op when the store is clean or disabled.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || !s.dirty || s.path == "" {
		return nil
	}

	s.pruneLocked()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(cacheFile{Version: fileVersion, Items: s.items}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	// Write-then-rename so a crash mid-write never corrupts the cache.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}

	s.dirty = false
	logger.Info("Cache flushed", "path", s.path, "entries", len(s.items))
	return nil
}

// pruneLocked evicts the oldest entries by cached_at until the store fits
// its cap. Callers must hold s.mu.
func (s *Store) pruneLocked() {
	if len(s.items) <= s.maxItems {
		return
	}

	keys := make([]string, 0, len(s.items))
	for key := range s.items {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return s.items[keys[i]].CachedAt.After(s.items[keys[j]].CachedAt)
	})

	for _, key := range keys[s.maxItems:] {
		delete(s.items, key)
	}
	logger.Info("Cache pruned", "kept", s.maxItems)
}
