// Package qcache caches product search results in Redis keyed by the
// normalized user query.
package qcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/db"
	"github.com/spurshop/storefront/internal/domain"
	"github.com/spurshop/storefront/internal/logger"
	"github.com/spurshop/storefront/internal/metrics"
)

// Cache stores ranked search results with a TTL. Lookups and writes are
// best-effort: a broken cache never fails a search.
type Cache struct {
	store  db.KVStore
	prefix string
	ttl    time.Duration
}

// New creates a search result cache.
func New(store db.KVStore, prefix string, ttl time.Duration) *Cache {
	return &Cache{store: store, prefix: prefix, ttl: ttl}
}

// Get returns cached results for a query, or ok=false on miss.
func (c *Cache) Get(ctx context.Context, query string) ([]domain.Product, bool) {
	log := logger.FromContext(ctx)

	data, err := c.store.Get(ctx, c.key(query))
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			log.Warn("search cache get failed", zap.Error(err))
		}
		metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		log.Warn("search cache entry corrupt", zap.Error(err))
		metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
	return products, true
}

// Set stores results for a query. Errors are logged, not returned.
func (c *Cache) Set(ctx context.Context, query string, products []domain.Product) {
	log := logger.FromContext(ctx)

	data, err := json.Marshal(products)
	if err != nil {
		log.Warn("search cache marshal failed", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, c.key(query), data, c.ttl); err != nil {
		log.Warn("search cache set failed", zap.Error(err))
	}
}

// key derives a fixed-length cache key from the query text.
func (c *Cache) key(query string) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%ssearch:%s", c.prefix, hex.EncodeToString(sum[:16]))
}
