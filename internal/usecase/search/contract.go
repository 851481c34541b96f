package search

import (
	"context"

	"github.com/spurshop/storefront/internal/domain"
)

// QueryBuilder extracts a structured query from a user message.
type QueryBuilder interface {
	Build(ctx context.Context, userQuery string) domain.StructuredQuery
}

// Catalog executes structured queries against the product catalog.
type Catalog interface {
	Search(ctx context.Context, q domain.StructuredQuery) ([]domain.Product, error)
}

// ResultCache caches ranked search results keyed by query text.
// Implementations are best-effort; a miss is never an error.
type ResultCache interface {
	Get(ctx context.Context, query string) ([]domain.Product, bool)
	Set(ctx context.Context, query string, products []domain.Product)
}
