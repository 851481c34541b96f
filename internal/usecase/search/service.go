// Package search implements the product search pipeline: intent
// extraction, relational filtering and semantic re-ranking.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/domain"
	"github.com/spurshop/storefront/internal/logger"
	"github.com/spurshop/storefront/internal/normalize"
)

// Result is the outcome of one search: the query that drove it and the
// ranked products.
type Result struct {
	Query    domain.StructuredQuery
	Products []domain.Product
}

// Service runs the search pipeline.
type Service struct {
	builder  QueryBuilder
	catalog  Catalog
	embedder domain.Embedder
	cache    ResultCache
}

// New creates a search service. cache may be nil to disable caching.
func New(builder QueryBuilder, catalog Catalog, embedder domain.Embedder, cache ResultCache) *Service {
	return &Service{builder: builder, catalog: catalog, embedder: embedder, cache: cache}
}

// Search turns a user message into ranked products. The catalog is asked
// for twice the requested limit so semantic re-ranking has candidates to
// discard; an empty candidate set short-circuits before any embedding
// work.
func (s *Service) Search(ctx context.Context, userQuery string, limit int) (Result, error) {
	log := logger.FromContext(ctx)
	normalized := normalize.Query(userQuery)
	cacheKey := fmt.Sprintf("%s|%d", normalized, limit)

	if s.cache != nil {
		if products, ok := s.cache.Get(ctx, cacheKey); ok {
			log.Debug("search cache hit", zap.String("query", normalized))
			return Result{Products: products}, nil
		}
	}

	q := s.builder.Build(ctx, userQuery)
	q.Limit = limit * 2

	candidates, err := s.catalog.Search(ctx, q)
	if err != nil {
		return Result{}, fmt.Errorf("catalog search: %w", err)
	}
	if len(candidates) == 0 {
		return Result{Query: q}, nil
	}

	products, err := s.rerank(ctx, normalized, candidates, limit)
	if err != nil {
		return Result{}, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, products)
	}

	log.Info("search completed",
		zap.String("query", normalized),
		zap.String("query_source", q.Source),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(products)))

	return Result{Query: q, Products: products}, nil
}

// rerank orders candidates by semantic similarity to the query and keeps
// the top limit. A failed query embedding makes the whole search
// unavailable; without it there is nothing to rank against.
func (s *Service) rerank(ctx context.Context, normalized string, candidates []domain.Product, limit int) ([]domain.Product, error) {
	queryEmb, err := s.embedder.Embed(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("embed query: %v: %w", err, domain.ErrSearchUnavailable)
	}

	ranked := rank(ctx, s.embedder, queryEmb.Embedding, candidates)
	products := make([]domain.Product, 0, limit)
	for _, c := range ranked {
		products = append(products, c.Product)
		if len(products) == limit {
			break
		}
	}
	return products, nil
}
