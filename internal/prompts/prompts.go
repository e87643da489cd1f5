// Package prompts loads the AI prompt templates from a YAML file. The
// loader is constructed once by the orchestrator and passed to whoever
// needs it; there is no package-level instance.
package prompts

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"

	"github.com/gowebpki/jcs"
	"gopkg.in/yaml.v3"

	"paperwatch/internal/logger"
)

// Template kinds known to the pipeline.
const (
	KindSummarize = "summarize"
	KindTranslate = "translate"
	KindInsights  = "insights"
	KindFilter    = "filter"
)

// Template is one prompt: a system instruction plus a user template with
// {placeholder} variables.
type Template struct {
	System       string `yaml:"system" json:"system"`
	UserTemplate string `yaml:"user_template" json:"user_template"`
}

// Loader resolves prompt templates by kind.
type Loader struct {
	templates map[string]Template
	signature string
}

// NewLoader reads templates from path. A missing or unreadable file falls
// back to the built-in defaults with a warning; the loader itself never
// fails.
func NewLoader(path string) *Loader {
	templates := defaultTemplates()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			logger.Warn("Prompts file not found, using defaults", "path", path)
		case err != nil:
			logger.Warn("Failed to read prompts file, using defaults", "path", path, "error", err.Error())
		default:
			var loaded map[string]Template
			if err := yaml.Unmarshal(data, &loaded); err != nil {
				logger.Warn("Failed to parse prompts file, using defaults", "path", path, "error", err.Error())
			} else {
				for kind, tmpl := range loaded {
					templates[kind] = tmpl
				}
				logger.Info("Prompts loaded", "path", path)
			}
		}
	}

	return &Loader{
		templates: templates,
		signature: signatureOf(templates),
	}
}

// Prompt returns the system and interpolated user prompt for a kind.
// Unknown kinds return empty prompts with a warning.
func (l *Loader) Prompt(kind string, vars map[string]string) (system, user string) {
	tmpl, ok := l.templates[kind]
	if !ok {
		logger.Warn("Unknown prompt kind", "kind", kind)
		return "", ""
	}

	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return tmpl.System, strings.NewReplacer(pairs...).Replace(tmpl.UserTemplate)
}

// Signature is a stable hash over the pipeline-relevant templates. It feeds
// the cache fingerprints so editing a prompt invalidates cached artifacts.
func (l *Loader) Signature() string {
	return l.signature
}

func signatureOf(templates map[string]Template) string {
	relevant := map[string]Template{
		KindSummarize: templates[KindSummarize],
		KindTranslate: templates[KindTranslate],
		KindInsights:  templates[KindInsights],
		KindFilter:    templates[KindFilter],
	}

	raw, err := json.Marshal(relevant)
	if err != nil {
		return "unknown"
	}
	if canonical, err := jcs.Transform(raw); err == nil {
		raw = canonical
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func defaultTemplates() map[string]Template {
	return map[string]Template{
		KindSummarize: {
			System: "You are an expert at analyzing academic papers and distilling their core contributions.",
			UserTemplate: `Summarize the following paper. Cover:

1. **Core idea**: the main contribution in 2-3 sentences
2. **Method**: the technical approach or theoretical framework
3. **Key results**: the main experimental or theoretical findings
4. **Impact**: practical applications or academic significance

Paper:
Title: {title}
Authors: {authors}
Abstract: {summary}

Use a clear, structured format.`,
		},
		KindTranslate: {
			System:       "You are an expert academic translator.",
			UserTemplate: "Translate the following academic abstract into {lang_name}. Be accurate, fluent, and keep technical terms precise:\n\n{text}",
		},
		KindInsights: {
			System: "You are an expert at extracting key insights from research papers.",
			UserTemplate: `Extract 3-5 key insights from the following paper. Each insight should be one short sentence.

Paper:
Title: {title}
Abstract: {summary}

Respond in JSON:
{
  "insights": [
    "first insight",
    "second insight",
    "third insight"
  ]
}`,
		},
		KindFilter: {
			System: "You are a research assistant judging whether papers match a reader's interests.",
			UserTemplate: `Decide whether the following paper is relevant to these interests: {keywords}

Paper:
Title: {title}
Abstract: {summary}

Respond in JSON:
{
  "relevant": true or false,
  "confidence": 0.0 to 1.0,
  "reason": "one short sentence"
}`,
		},
	}
}
