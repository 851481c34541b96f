// Command ingest loads the product catalog from a CSV export and policy
// markdown files into the stores the chat API searches.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/config"
	dbRedis "github.com/spurshop/storefront/internal/db/redis"
	"github.com/spurshop/storefront/internal/ingest"
	logpkg "github.com/spurshop/storefront/internal/logger"
	knowledgerepo "github.com/spurshop/storefront/internal/repository/knowledge"
	productsrepo "github.com/spurshop/storefront/internal/repository/products"
	openaiTransport "github.com/spurshop/storefront/internal/transport/openai"
)

func main() {
	productsCSV := flag.String("products", "", "path to the product catalog CSV export")
	policiesDir := flag.String("policies", "", "directory with policy markdown files")
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if *productsCSV == "" && *policiesDir == "" {
		logger.Fatal("Nothing to ingest: pass -products and/or -policies")
	}

	ctx := context.Background()

	if *productsCSV != "" {
		ingestCatalog(ctx, cfg, *productsCSV, logger)
	}
	if *policiesDir != "" {
		ingestPolicies(ctx, cfg, *policiesDir, logger)
	}
}

func ingestCatalog(ctx context.Context, cfg config.Config, csvPath string, logger *zap.Logger) {
	repo, err := productsrepo.New(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to open catalog database", zap.Error(err))
	}
	defer repo.Close()

	f, err := os.Open(csvPath)
	if err != nil {
		logger.Fatal("Failed to open catalog CSV", zap.Error(err))
	}
	defer f.Close()

	stats, err := ingest.Catalog(ctx, f, repo, logger)
	if err != nil {
		logger.Fatal("Catalog ingest failed", zap.Error(err))
	}

	total, err := repo.Count(ctx)
	if err == nil {
		logger.Info("Catalog ready",
			zap.Int("inserted", stats.Inserted),
			zap.Int("skipped", stats.Skipped),
			zap.Int("total", total))
	}
}

func ingestPolicies(ctx context.Context, cfg config.Config, dir string, logger *zap.Logger) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create redis store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Redis not ready", zap.Error(err))
	}

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.Dimensions,
		Logger:     logger,
	})

	repo := knowledgerepo.New(store, cfg.Redis.KeyPrefix, cfg.OpenAI.Dimensions)
	if _, err := ingest.Knowledge(ctx, dir, embedder, repo, logger); err != nil {
		logger.Fatal("Knowledge ingest failed", zap.Error(err))
	}
}
