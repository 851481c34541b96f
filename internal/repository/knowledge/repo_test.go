package knowledge

import (
	"context"
	"testing"

	"github.com/spurshop/storefront/internal/db"
	"github.com/spurshop/storefront/internal/domain"
)

type fakeStore struct {
	hashes       map[string]map[string]string
	createdIndex *db.IndexDefinition
	createErr    error
	knnResult    *db.SearchResult
	knnQuery     *db.KNNQuery
	knnErr       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{hashes: make(map[string]map[string]string)}
}

func (f *fakeStore) HSet(_ context.Context, key string, fields map[string]string) error {
	f.hashes[key] = fields
	return nil
}

func (f *fakeStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	for _, item := range items {
		f.hashes[item.Key] = item.Fields
	}
	return nil
}

func (f *fakeStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	return f.hashes[key], nil
}

func (f *fakeStore) Del(_ context.Context, key string) error {
	delete(f.hashes, key)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.hashes[key]
	return ok, nil
}

func (f *fakeStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.createdIndex = def
	return nil
}

func (f *fakeStore) DropIndex(_ context.Context, _ string) error { return nil }

func (f *fakeStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return f.createdIndex != nil, nil
}

func (f *fakeStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	f.knnQuery = q
	if f.knnErr != nil {
		return nil, f.knnErr
	}
	if f.knnResult == nil {
		return &db.SearchResult{}, nil
	}
	return f.knnResult, nil
}

func TestEnsureIndex(t *testing.T) {
	store := newFakeStore()
	repo := New(store, "storefront:", 1536)

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("ensure index failed: %v", err)
	}
	if store.createdIndex == nil {
		t.Fatal("expected index creation")
	}
	if store.createdIndex.Prefixes[0] != "storefront:knowledge:" {
		t.Errorf("unexpected prefix %q", store.createdIndex.Prefixes[0])
	}

	var vectorField *db.IndexField
	for i := range store.createdIndex.Fields {
		if store.createdIndex.Fields[i].Type == db.IndexFieldVector {
			vectorField = &store.createdIndex.Fields[i]
		}
	}
	if vectorField == nil {
		t.Fatal("expected a vector field")
	}
	if vectorField.VectorDim != 1536 {
		t.Errorf("expected dim 1536, got %d", vectorField.VectorDim)
	}
}

func TestEnsureIndex_AlreadyExists(t *testing.T) {
	store := newFakeStore()
	store.createErr = db.ErrIndexExists
	repo := New(store, "storefront:", 1536)

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("expected existing index tolerated, got %v", err)
	}
}

func TestAdd_StoresFieldsAndVector(t *testing.T) {
	store := newFakeStore()
	repo := New(store, "storefront:", 4)

	chunk := domain.KnowledgeChunk{
		ID:      "c1",
		Source:  "shipping-policy",
		Title:   "Delivery times",
		Content: "Standard delivery takes 3-5 business days.",
	}
	if err := repo.Add(context.Background(), chunk, []float32{0.1, 0.2, 0.3, 0.4}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	fields, ok := store.hashes["storefront:knowledge:c1"]
	if !ok {
		t.Fatal("expected chunk stored under prefixed key")
	}
	if fields["source"] != "shipping-policy" {
		t.Errorf("unexpected source %q", fields["source"])
	}
	if len(fields["vector"]) != 16 {
		t.Errorf("expected 16 vector bytes, got %d", len(fields["vector"]))
	}
}

func TestAddBatch_LengthMismatch(t *testing.T) {
	repo := New(newFakeStore(), "storefront:", 4)

	err := repo.AddBatch(context.Background(),
		[]domain.KnowledgeChunk{{ID: "a"}, {ID: "b"}},
		[][]float32{{0.1}},
	)
	if err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestSearchKNN_MapsEntries(t *testing.T) {
	store := newFakeStore()
	store.knnResult = &db.SearchResult{
		Total: 2,
		Entries: []db.SearchEntry{
			{
				Key:   "storefront:knowledge:c1",
				Score: 0.92,
				Fields: map[string]string{
					"source":  "returns-policy",
					"title":   "Return window",
					"content": "Returns are accepted within 30 days.",
				},
			},
			{
				Key:   "storefront:knowledge:c2",
				Score: 0.71,
				Fields: map[string]string{
					"source":  "returns-policy",
					"title":   "Refunds",
					"content": "Refunds are issued to the original payment method.",
				},
			},
		},
	}
	repo := New(store, "storefront:", 4)

	chunks, err := repo.SearchKNN(context.Background(), []float32{0.1, 0.2, 0.3, 0.4}, 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].ID != "c1" {
		t.Errorf("expected key prefix stripped, got %q", chunks[0].ID)
	}
	if chunks[0].Score != 0.92 {
		t.Errorf("expected score carried over, got %f", chunks[0].Score)
	}
	if store.knnQuery.K != 2 {
		t.Errorf("expected k=2, got %d", store.knnQuery.K)
	}
}
