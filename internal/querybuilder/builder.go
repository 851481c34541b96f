// Package querybuilder turns free-form user messages into structured
// catalog queries. The LLM path is primary; a regex extractor covers
// provider failures and unparseable completions.
package querybuilder

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/domain"
	"github.com/spurshop/storefront/internal/logger"
	"github.com/spurshop/storefront/internal/metrics"
	"github.com/spurshop/storefront/internal/normalize"
)

// TextCompleter produces a single text completion for a system+user
// prompt pair.
type TextCompleter interface {
	CompleteText(ctx context.Context, system, user string) (string, error)
}

// Builder converts natural language into a StructuredQuery.
type Builder struct {
	llm TextCompleter
}

// New creates a Builder backed by the given completer.
func New(llm TextCompleter) *Builder {
	return &Builder{llm: llm}
}

// Build normalizes the user query and extracts a structured query from it.
// Never fails: any LLM or parse error degrades to the regex extractor, and
// the result's Source field records which path produced it.
func (b *Builder) Build(ctx context.Context, userQuery string) domain.StructuredQuery {
	log := logger.FromContext(ctx)
	normalized := normalize.Query(userQuery)

	if q, ok := b.buildWithLLM(ctx, normalized); ok {
		metrics.QueryBuilderFallbackTotal.WithLabelValues(domain.QuerySourceLLM).Inc()
		return q
	}

	log.Debug("query builder falling back to regex extraction",
		zap.String("query", normalized))
	metrics.QueryBuilderFallbackTotal.WithLabelValues(domain.QuerySourceFallback).Inc()

	q := buildWithRegex(normalized)
	q.Source = domain.QuerySourceFallback
	return q.Normalize()
}

func (b *Builder) buildWithLLM(ctx context.Context, normalized string) (domain.StructuredQuery, bool) {
	log := logger.FromContext(ctx)

	text, err := b.llm.CompleteText(ctx, systemPrompt, normalized)
	if err != nil {
		log.Warn("query builder completion failed", zap.Error(err))
		return domain.StructuredQuery{}, false
	}

	blob := extractJSON(text)
	if blob == "" {
		log.Warn("query builder completion contained no JSON",
			zap.String("completion", text))
		return domain.StructuredQuery{}, false
	}

	var q domain.StructuredQuery
	if err := json.Unmarshal([]byte(blob), &q); err != nil {
		repaired := repairJSON(blob)
		if err2 := json.Unmarshal([]byte(repaired), &q); err2 != nil {
			log.Warn("query builder completion unparseable", zap.Error(err))
			return domain.StructuredQuery{}, false
		}
	}

	q.Source = domain.QuerySourceLLM
	return q.Normalize(), true
}

var (
	jsonBlockRe   = regexp.MustCompile(`(?s)\{.*\}`)
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe     = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// extractJSON pulls the outermost brace-delimited block out of a
// completion, tolerating markdown code fences around it.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return jsonBlockRe.FindString(text)
}

// repairJSON fixes the two malformations models actually produce:
// trailing commas and unquoted object keys.
func repairJSON(blob string) string {
	blob = trailingComma.ReplaceAllString(blob, "$1")
	blob = bareKeyRe.ReplaceAllString(blob, `$1"$2":`)
	return blob
}
