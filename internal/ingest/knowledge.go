package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/domain"
)

// ChunkSink receives embedded knowledge chunks.
type ChunkSink interface {
	EnsureIndex(ctx context.Context) error
	AddBatch(ctx context.Context, chunks []domain.KnowledgeChunk, vectors [][]float32) error
}

var titleRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// Knowledge ingests policy markdown files from dir: one chunk per file,
// title from the first heading, embedded and stored in the vector index.
// Returns the number of chunks ingested.
func Knowledge(ctx context.Context, dir string, embedder domain.Embedder, sink ChunkSink, logger *zap.Logger) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return 0, fmt.Errorf("list policy files: %w", err)
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no policy files found in %s", dir)
	}

	if err := sink.EnsureIndex(ctx); err != nil {
		return 0, err
	}

	chunks := make([]domain.KnowledgeChunk, 0, len(paths))
	texts := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("read policy %s: %w", path, err)
		}
		content := string(data)

		source := strings.TrimSuffix(filepath.Base(path), ".md")
		title := source
		if m := titleRe.FindStringSubmatch(content); m != nil {
			title = strings.TrimSpace(m[1])
		}

		chunks = append(chunks, domain.KnowledgeChunk{
			Source:  source,
			Title:   title,
			Content: content,
		})
		texts = append(texts, content)
	}

	results, err := domain.EmbedAll(ctx, embedder, texts)
	if err != nil {
		return 0, fmt.Errorf("embed policies: %w", err)
	}

	vectors := make([][]float32, len(results))
	for i, res := range results {
		vectors[i] = res.Embedding
	}

	if err := sink.AddBatch(ctx, chunks, vectors); err != nil {
		return 0, err
	}

	logger.Info("knowledge ingest completed", zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}
