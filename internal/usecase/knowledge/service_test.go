package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spurshop/storefront/internal/domain"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: f.vec}, nil
}

type fakeChunks struct {
	chunks []domain.KnowledgeChunk
	err    error
	lastK  int
}

func (f *fakeChunks) SearchKNN(_ context.Context, _ []float32, k int) ([]domain.KnowledgeChunk, error) {
	f.lastK = k
	return f.chunks, f.err
}

func TestSearch_PassesLimit(t *testing.T) {
	chunks := &fakeChunks{}
	svc := New(&fakeEmbedder{vec: []float32{1}}, chunks)

	if _, err := svc.Search(context.Background(), "shipping policy", 5); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if chunks.lastK != 5 {
		t.Errorf("expected k=5, got %d", chunks.lastK)
	}
}

func TestSearch_EmbedErrorPropagates(t *testing.T) {
	svc := New(&fakeEmbedder{err: errors.New("provider down")}, &fakeChunks{})

	if _, err := svc.Search(context.Background(), "returns", 5); err == nil {
		t.Fatal("expected embedding error to propagate")
	}
}

func TestAnswer_JoinsChunkContents(t *testing.T) {
	chunks := &fakeChunks{chunks: []domain.KnowledgeChunk{
		{Title: "Return window", Source: "returns-policy", Content: "Returns within 30 days."},
		{Source: "returns-policy", Content: "Refunds to original payment method."},
	}}
	svc := New(&fakeEmbedder{vec: []float32{1}}, chunks)

	res := svc.Answer(context.Background(), "what is the return policy", 5)

	if res.Type != domain.ToolResultTypePolicy {
		t.Errorf("unexpected type %q", res.Type)
	}
	if !strings.Contains(res.Answer, "Returns within 30 days.") ||
		!strings.Contains(res.Answer, "Refunds to original payment method.") {
		t.Errorf("answer missing chunk contents: %q", res.Answer)
	}
	if !strings.Contains(res.Answer, "\n\n") {
		t.Error("expected chunks joined by blank line")
	}
	if len(res.Sources) != 2 || res.Sources[0] != "Return window" || res.Sources[1] != "returns-policy" {
		t.Errorf("unexpected sources: %+v", res.Sources)
	}
}

func TestAnswer_NoChunks(t *testing.T) {
	svc := New(&fakeEmbedder{vec: []float32{1}}, &fakeChunks{})

	res := svc.Answer(context.Background(), "do you ship to the moon", 5)

	if !strings.Contains(res.Answer, "don't have information") {
		t.Errorf("expected no-information answer, got %q", res.Answer)
	}
	if len(res.Sources) != 0 {
		t.Errorf("expected no sources, got %+v", res.Sources)
	}
}

func TestAnswer_RetrievalErrorYieldsApology(t *testing.T) {
	svc := New(&fakeEmbedder{vec: []float32{1}}, &fakeChunks{err: errors.New("index gone")})

	res := svc.Answer(context.Background(), "shipping", 5)

	if !strings.Contains(res.Answer, "encountered an error") {
		t.Errorf("expected error apology, got %q", res.Answer)
	}
}
