package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/config"
	dbRedis "github.com/spurshop/storefront/internal/db/redis"
	"github.com/spurshop/storefront/internal/domain"
	logpkg "github.com/spurshop/storefront/internal/logger"
	"github.com/spurshop/storefront/internal/metrics"
	"github.com/spurshop/storefront/internal/querybuilder"
	conversationsrepo "github.com/spurshop/storefront/internal/repository/conversations"
	"github.com/spurshop/storefront/internal/repository/embcache"
	knowledgerepo "github.com/spurshop/storefront/internal/repository/knowledge"
	productsrepo "github.com/spurshop/storefront/internal/repository/products"
	"github.com/spurshop/storefront/internal/repository/qcache"
	chiTransport "github.com/spurshop/storefront/internal/transport/chi"
	openaiTransport "github.com/spurshop/storefront/internal/transport/openai"
	chatuc "github.com/spurshop/storefront/internal/usecase/chat"
	healthuc "github.com/spurshop/storefront/internal/usecase/health"
	knowledgeuc "github.com/spurshop/storefront/internal/usecase/knowledge"
	searchuc "github.com/spurshop/storefront/internal/usecase/search"
	"github.com/spurshop/storefront/internal/version"
)

func main() {
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

	logger.Info("Starting storefront API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_path", cfg.Catalog.Path),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
	)

	// Relational stores (catalog + conversations share the SQLite file)
	catalogRepo, err := productsrepo.New(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to open catalog database", zap.Error(err))
	}
	defer catalogRepo.Close()

	convRepo, err := conversationsrepo.New(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to open conversation database", zap.Error(err))
	}
	defer convRepo.Close()

	// Redis: caches + knowledge vector index
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create redis store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Redis not ready", zap.Error(err))
	}
	logger.Info("Connected to redis")

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	// Provider clients
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.Dimensions,
		Logger:     logger,
	})
	var embedder domain.Embedder = embcache.New(
		baseEmbedder, store, cfg.Redis.KeyPrefix, metrics.EmbeddingCacheTotal, logger,
	)

	completer := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		ChatModel:  cfg.OpenAI.ChatModel,
		QueryModel: cfg.OpenAI.QueryModel,
		Logger:     logger,
	})
	logger.Info("Providers created",
		zap.String("chat_model", cfg.OpenAI.ChatModel),
		zap.String("embedding_model", cfg.OpenAI.EmbeddingModel),
		zap.Int("dimensions", cfg.OpenAI.Dimensions),
	)

	// Knowledge index
	knowRepo := knowledgerepo.New(store, cfg.Redis.KeyPrefix, cfg.OpenAI.Dimensions)
	if err := knowRepo.EnsureIndex(ctx); err != nil {
		logger.Warn("Knowledge index not available", zap.Error(err))
	}

	// Use case services
	builder := querybuilder.New(completer)
	resultCache := qcache.New(store, cfg.Redis.KeyPrefix, time.Duration(cfg.Chat.CacheTTLSec)*time.Second)
	searchSvc := searchuc.New(builder, catalogRepo, embedder, resultCache)
	knowledgeSvc := knowledgeuc.New(embedder, knowRepo)
	chatSvc := chatuc.New(completer, searchSvc, knowledgeSvc, convRepo, chatuc.Config{
		MaxProductItems:   cfg.Chat.MaxProductItems,
		MaxKnowledgeItems: cfg.Chat.MaxKnowledgeItems,
		HistoryLimit:      cfg.Chat.HistoryLimit,
	})
	healthSvc := healthuc.New(catalogRepo, store, newEmbeddingHealthChecker(baseEmbedder))

	server := chiTransport.NewServer(chatSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(interface{ HealthCheck(context.Context) error }); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
