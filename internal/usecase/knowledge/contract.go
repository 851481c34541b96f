package knowledge

import (
	"context"

	"github.com/spurshop/storefront/internal/domain"
)

// Chunks retrieves knowledge chunks by vector similarity.
type Chunks interface {
	SearchKNN(ctx context.Context, vector []float32, k int) ([]domain.KnowledgeChunk, error)
}
