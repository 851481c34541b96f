package domain

import "context"

// EmbeddingResult carries an embedding vector together with token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder produces a vector representation of a single text.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder embeds many texts in one provider round trip.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([]EmbeddingResult, error)
}

// EmbedAll embeds texts through a batch embedder when available and falls
// back to sequential single embeds otherwise.
func EmbedAll(ctx context.Context, emb Embedder, texts []string) ([]EmbeddingResult, error) {
	if be, ok := emb.(BatchEmbedder); ok {
		return be.EmbedBatch(ctx, texts)
	}
	results := make([]EmbeddingResult, 0, len(texts))
	for _, text := range texts {
		res, err := emb.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
