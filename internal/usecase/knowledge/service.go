// Package knowledge answers store policy questions by vector retrieval
// over ingested policy documents.
package knowledge

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/domain"
	"github.com/spurshop/storefront/internal/logger"
	"github.com/spurshop/storefront/internal/normalize"
)

const (
	noPolicyAnswer = "I don't have information about that policy. " +
		"Please contact customer support for more details."
	errorPolicyAnswer = "I encountered an error while searching for policy information. " +
		"Please try again or contact customer support."
)

// Service retrieves policy knowledge.
type Service struct {
	embedder domain.Embedder
	chunks   Chunks
}

// New creates a knowledge service.
func New(embedder domain.Embedder, chunks Chunks) *Service {
	return &Service{embedder: embedder, chunks: chunks}
}

// Search embeds the query once and returns the k nearest chunks.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]domain.KnowledgeChunk, error) {
	normalized := normalize.Query(query)

	emb, err := s.embedder.Embed(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("embed knowledge query: %w", err)
	}

	chunks, err := s.chunks.SearchKNN(ctx, emb.Embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("retrieve knowledge: %w", err)
	}
	return chunks, nil
}

// Answer is the total form of Search used by the chat tool layer: retrieval
// failures and empty results both produce a usable apology answer instead
// of an error.
func (s *Service) Answer(ctx context.Context, query string, limit int) domain.PolicyToolResult {
	log := logger.FromContext(ctx)

	chunks, err := s.Search(ctx, query, limit)
	if err != nil {
		log.Warn("policy retrieval failed", zap.Error(err))
		return domain.PolicyToolResult{
			Type:   domain.ToolResultTypePolicy,
			Answer: errorPolicyAnswer,
		}
	}

	if len(chunks) == 0 {
		return domain.PolicyToolResult{
			Type:   domain.ToolResultTypePolicy,
			Answer: noPolicyAnswer,
		}
	}

	contents := make([]string, len(chunks))
	sources := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
		if chunk.Title != "" {
			sources[i] = chunk.Title
		} else {
			sources[i] = chunk.Source
		}
	}

	return domain.PolicyToolResult{
		Type:    domain.ToolResultTypePolicy,
		Answer:  strings.Join(contents, "\n\n"),
		Sources: sources,
	}
}
