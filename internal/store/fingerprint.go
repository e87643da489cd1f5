package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Fingerprints bind cached artifacts to the AI configuration that produced
// them. The annotation and filter fingerprints are independent: changing the
// filter keywords invalidates cached verdicts but leaves summaries usable.

// AnnotationFingerprint hashes the configuration relevant to summarize,
// translate, and insights artifacts.
func AnnotationFingerprint(provider, model, baseURL string, maxTokens int, temperature float64, promptsSignature string) string {
	return hashPayload(map[string]any{
		"provider":          provider,
		"model":             model,
		"base_url":          baseURL,
		"max_tokens":        maxTokens,
		"temperature":       temperature,
		"prompts_signature": promptsSignature,
	})
}

// FilterFingerprint hashes the configuration relevant to filter verdicts.
func FilterFingerprint(provider, model, baseURL, filterKeywords, promptsSignature string) string {
	return hashPayload(map[string]any{
		"provider":          provider,
		"model":             model,
		"base_url":          baseURL,
		"filter_keywords":   filterKeywords,
		"prompts_signature": promptsSignature,
	})
}

// hashPayload produces a stable hex digest of the payload. The JSON is run
// through RFC 8785 canonicalization first so key order and number formatting
// cannot change the hash between runs.
func hashPayload(payload map[string]any) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		// Payloads are maps of scalars; marshal cannot fail for them.
		return fmt.Sprintf("unhashable:%v", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		canonical = raw
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
