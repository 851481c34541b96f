// Package knowledge stores policy document chunks as Redis hashes and
// retrieves them by vector similarity.
package knowledge

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/spurshop/storefront/internal/db"
	"github.com/spurshop/storefront/internal/domain"
)

const indexName = "idx:knowledge"

// Store is the narrow database surface the repository needs.
type Store interface {
	db.HashStore
	db.IndexManager
	db.Searcher
}

// Repo persists knowledge chunks and runs KNN retrieval over them.
type Repo struct {
	store  Store
	prefix string
	dim    int
}

// New creates a knowledge repository. dim is the embedding dimension the
// FT index is created with.
func New(store Store, keyPrefix string, dim int) *Repo {
	return &Repo{store: store, prefix: keyPrefix + "knowledge:", dim: dim}
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def := &db.IndexDefinition{
		Name:     indexName,
		Prefixes: []string{r.prefix},
		Fields: []db.IndexField{
			{Name: "source", Type: db.IndexFieldTag},
			{Name: "content", Type: db.IndexFieldText},
			{
				Name:           "vector",
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorFlat,
				VectorDim:      r.dim,
				VectorDistance: db.DistanceCosine,
			},
		},
	}

	err := r.store.CreateIndex(ctx, def)
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create knowledge index: %w", err)
	}
	return nil
}

// DropIndex removes the FT index, tolerating its absence.
func (r *Repo) DropIndex(ctx context.Context) error {
	err := r.store.DropIndex(ctx, indexName)
	if err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop knowledge index: %w", err)
	}
	return nil
}

// Add stores a single chunk with its embedding.
func (r *Repo) Add(ctx context.Context, chunk domain.KnowledgeChunk, vector []float32) error {
	if chunk.ID == "" {
		chunk.ID = uuid.NewString()
	}
	if err := r.store.HSet(ctx, r.key(chunk.ID), chunkFields(chunk, vector)); err != nil {
		return fmt.Errorf("store knowledge chunk: %w", err)
	}
	return nil
}

// AddBatch stores many chunks in one pipelined round trip. Chunks and
// vectors are parallel slices.
func (r *Repo) AddBatch(ctx context.Context, chunks []domain.KnowledgeChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}

	items := make([]db.HashSetItem, len(chunks))
	for i, chunk := range chunks {
		if chunk.ID == "" {
			chunk.ID = uuid.NewString()
		}
		items[i] = db.HashSetItem{
			Key:    r.key(chunk.ID),
			Fields: chunkFields(chunk, vectors[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store knowledge chunks: %w", err)
	}
	return nil
}

// SearchKNN returns the k chunks nearest to the query vector, with their
// similarity scores populated.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, k int) ([]domain.KnowledgeChunk, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"source", "title", "content", "__vector_score"},
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge search: %w", err)
	}

	chunks := make([]domain.KnowledgeChunk, 0, len(res.Entries))
	for _, entry := range res.Entries {
		chunks = append(chunks, domain.KnowledgeChunk{
			ID:      strings.TrimPrefix(entry.Key, r.prefix),
			Source:  entry.Fields["source"],
			Title:   entry.Fields["title"],
			Content: entry.Fields["content"],
			Score:   entry.Score,
		})
	}
	return chunks, nil
}

func (r *Repo) key(id string) string {
	return r.prefix + id
}

func chunkFields(chunk domain.KnowledgeChunk, vector []float32) map[string]string {
	return map[string]string{
		"source":  chunk.Source,
		"title":   chunk.Title,
		"content": chunk.Content,
		"vector":  encodeVector(vector),
	}
}

func encodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
