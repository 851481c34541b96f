package search

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/domain"
	"github.com/spurshop/storefront/internal/logger"
)

// rank embeds each candidate's text concurrently, scores it against the
// query vector and returns candidates ordered by similarity. A failed
// product embedding scores 0 instead of failing the whole ranking. The
// sort is stable, so equal scores keep the catalog order.
func rank(ctx context.Context, embedder domain.Embedder, queryVec []float32, products []domain.Product) []domain.RankedCandidate {
	log := logger.FromContext(ctx)

	candidates := make([]domain.RankedCandidate, len(products))

	var wg sync.WaitGroup
	for i := range products {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			p := products[i]
			res, err := embedder.Embed(ctx, p.EmbeddingText())
			if err != nil {
				log.Warn("product embedding failed, scoring 0",
					zap.String("product_id", p.ID), zap.Error(err))
				candidates[i] = domain.RankedCandidate{Product: p}
				return
			}
			candidates[i] = domain.RankedCandidate{
				Product:    p,
				Similarity: domain.CosineSimilarity(queryVec, res.Embedding),
			}
		}(i)
	}
	wg.Wait()

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Similarity > candidates[b].Similarity
	})
	return candidates
}
