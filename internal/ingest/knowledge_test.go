package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/domain"
)

type chunkCapture struct {
	chunks  []domain.KnowledgeChunk
	vectors [][]float32
	indexed bool
}

func (c *chunkCapture) EnsureIndex(_ context.Context) error {
	c.indexed = true
	return nil
}

func (c *chunkCapture) AddBatch(_ context.Context, chunks []domain.KnowledgeChunk, vectors [][]float32) error {
	c.chunks = chunks
	c.vectors = vectors
	return nil
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

func writePolicy(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
}

func TestKnowledge_IngestsMarkdownFiles(t *testing.T) {
	dir := t.TempDir()
	writePolicy(t, dir, "return.md", "# Return Policy\n\nReturns within 30 days.")
	writePolicy(t, dir, "shipping.md", "Shipping takes 3-5 days.")

	sink := &chunkCapture{}
	n, err := Knowledge(context.Background(), dir, stubEmbedder{}, sink, zap.NewNop())
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if n != 2 || len(sink.chunks) != 2 {
		t.Fatalf("expected 2 chunks, got n=%d chunks=%d", n, len(sink.chunks))
	}
	if !sink.indexed {
		t.Error("index never ensured")
	}
	if len(sink.vectors) != 2 || len(sink.vectors[0]) != 2 {
		t.Errorf("vectors not embedded: %+v", sink.vectors)
	}

	bySource := map[string]domain.KnowledgeChunk{}
	for _, c := range sink.chunks {
		bySource[c.Source] = c
	}
	if bySource["return"].Title != "Return Policy" {
		t.Errorf("title not taken from heading: %+v", bySource["return"])
	}
	if bySource["shipping"].Title != "shipping" {
		t.Errorf("headingless file must fall back to filename: %+v", bySource["shipping"])
	}
}

func TestKnowledge_EmptyDirFails(t *testing.T) {
	if _, err := Knowledge(context.Background(), t.TempDir(), stubEmbedder{}, &chunkCapture{}, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty policy directory")
	}
}
