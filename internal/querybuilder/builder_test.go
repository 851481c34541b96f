package querybuilder

import (
	"context"
	"errors"
	"testing"

	"github.com/spurshop/storefront/internal/domain"
)

type fakeCompleter struct {
	text string
	err  error
}

func (f *fakeCompleter) CompleteText(_ context.Context, _, _ string) (string, error) {
	return f.text, f.err
}

func TestBuild_LLMPath(t *testing.T) {
	b := New(&fakeCompleter{text: `{"category": "laptop", "maxPrice": 20000, "sortBy": "newest"}`})

	q := b.Build(context.Background(), "find me laptop under 20k")

	if q.Source != domain.QuerySourceLLM {
		t.Errorf("expected source 'llm', got %q", q.Source)
	}
	if q.Category != "laptop" {
		t.Errorf("expected category 'laptop', got %q", q.Category)
	}
	if q.MaxPrice != 20000 {
		t.Errorf("expected maxPrice 20000, got %f", q.MaxPrice)
	}
	if q.Limit != 20 {
		t.Errorf("expected default limit 20, got %d", q.Limit)
	}
}

func TestBuild_LLMPathWithCodeFence(t *testing.T) {
	b := New(&fakeCompleter{text: "```json\n{\"category\": \"mobile\", \"sortBy\": \"newest\"}\n```"})

	q := b.Build(context.Background(), "show me moblie phones")

	if q.Source != domain.QuerySourceLLM {
		t.Errorf("expected source 'llm', got %q", q.Source)
	}
	if q.Category != "mobile" {
		t.Errorf("expected category 'mobile', got %q", q.Category)
	}
}

func TestBuild_RepairsTrailingComma(t *testing.T) {
	b := New(&fakeCompleter{text: `{"category": "watch", "maxPrice": 5000,}`})

	q := b.Build(context.Background(), "watches under 5k")

	if q.Source != domain.QuerySourceLLM {
		t.Errorf("expected source 'llm' after repair, got %q", q.Source)
	}
	if q.Category != "watch" {
		t.Errorf("expected category 'watch', got %q", q.Category)
	}
}

func TestBuild_RepairsBareKeys(t *testing.T) {
	b := New(&fakeCompleter{text: `{category: "camera", maxPrice: 30000}`})

	q := b.Build(context.Background(), "camera under 30k")

	if q.Source != domain.QuerySourceLLM {
		t.Errorf("expected source 'llm' after repair, got %q", q.Source)
	}
	if q.Category != "camera" {
		t.Errorf("expected category 'camera', got %q", q.Category)
	}
}

func TestBuild_FallbackOnCompletionError(t *testing.T) {
	b := New(&fakeCompleter{err: errors.New("provider down")})

	q := b.Build(context.Background(), "find me laptop under 20k")

	if q.Source != domain.QuerySourceFallback {
		t.Errorf("expected source 'fallback', got %q", q.Source)
	}
	if q.Category != "laptop" {
		t.Errorf("expected category 'laptop', got %q", q.Category)
	}
	if q.MaxPrice != 20000 {
		t.Errorf("expected maxPrice 20000, got %f", q.MaxPrice)
	}
}

func TestBuild_FallbackSeesNormalizedQuery(t *testing.T) {
	b := New(&fakeCompleter{err: errors.New("provider down")})

	q := b.Build(context.Background(), "good JEWELLARY under 1000 rupees")

	if q.Source != domain.QuerySourceFallback {
		t.Errorf("expected source 'fallback', got %q", q.Source)
	}
	if q.Category != "jewellery" {
		t.Errorf("expected category 'jewellery', got %q", q.Category)
	}
	if q.MaxPrice != 1000 {
		t.Errorf("expected maxPrice 1000, got %f", q.MaxPrice)
	}
}

func TestBuild_FallbackOnNonJSONCompletion(t *testing.T) {
	b := New(&fakeCompleter{text: "Sure! Here are some laptops you might like."})

	q := b.Build(context.Background(), "best laptops under 50k")

	if q.Source != domain.QuerySourceFallback {
		t.Errorf("expected source 'fallback', got %q", q.Source)
	}
	if q.MinRating != 4.0 {
		t.Errorf("expected minRating 4.0 from 'best', got %f", q.MinRating)
	}
}

func TestBuild_UnknownSortByNormalized(t *testing.T) {
	b := New(&fakeCompleter{text: `{"category": "laptop", "sortBy": "cheapest_first"}`})

	q := b.Build(context.Background(), "laptops")

	if q.SortBy != domain.SortNewest {
		t.Errorf("expected unknown sortBy normalized to 'newest', got %q", q.SortBy)
	}
}
