package cache

import (
	"context"
	"time"

	"tbtc-market-service/internal/domain/interfaces"
	"tbtc-market-service/internal/infrastructure/logging"
	"tbtc-market-service/internal/infrastructure/metrics"
)

// InstrumentedCache wraps any Cache implementation with metrics and logs
type InstrumentedCache struct {
	cache   interfaces.Cache
	backend string
	logger  logging.CacheLogger
}

// NewInstrumentedCache creates a new instrumented cache wrapper
func NewInstrumentedCache(cache interfaces.Cache, backend string, logger logging.CacheLogger) *InstrumentedCache {
	return &InstrumentedCache{
		cache:   cache,
		backend: backend,
		logger:  logger,
	}
}

// Get retrieves a value and records hit/miss
func (ic *InstrumentedCache) Get(ctx context.Context, key string) (string, error) {
	value, err := ic.cache.Get(ctx, key)

	switch {
	case err == nil:
		metrics.RecordCacheOperation("get", "hit")
		ic.logger.Hit(ctx, key, logging.CacheOpGet)
	case IsMiss(err):
		metrics.RecordCacheOperation("get", "miss")
		ic.logger.Miss(ctx, key, logging.CacheOpGet)
	default:
		metrics.RecordCacheOperation("get", "error")
		ic.logger.CacheError(ctx, logging.CacheOpGet, key, err)
	}

	return value, err
}

// Set stores a value and records the result
func (ic *InstrumentedCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := ic.cache.Set(ctx, key, value, ttl); err != nil {
		metrics.RecordCacheOperation("set", "error")
		ic.logger.CacheError(ctx, logging.CacheOpSet, key, err)
		return err
	}

	metrics.RecordCacheOperation("set", "success")
	ic.logger.Set(ctx, key, ttl.Seconds())
	ic.updateKeys(ctx)
	return nil
}

// Delete removes a key and records the result
func (ic *InstrumentedCache) Delete(ctx context.Context, key string) error {
	if err := ic.cache.Delete(ctx, key); err != nil {
		metrics.RecordCacheOperation("delete", "error")
		ic.logger.CacheError(ctx, logging.CacheOpDelete, key, err)
		return err
	}

	metrics.RecordCacheOperation("delete", "success")
	ic.logger.Delete(ctx, key)
	ic.updateKeys(ctx)
	return nil
}

// Ping checks the backend
func (ic *InstrumentedCache) Ping(ctx context.Context) error {
	return ic.cache.Ping(ctx)
}

// Close closes any connections and cleans up resources
func (ic *InstrumentedCache) Close() error {
	return ic.cache.Close()
}

// Backend returns the backend name (memory/redis)
func (ic *InstrumentedCache) Backend() string {
	return ic.backend
}

func (ic *InstrumentedCache) updateKeys(ctx context.Context) {
	switch c := ic.cache.(type) {
	case *MemoryCache:
		metrics.UpdateCacheKeys(ic.backend, c.Size())
	case *RedisCache:
		if n, err := c.Size(ctx); err == nil {
			metrics.UpdateCacheKeys(ic.backend, int(n))
		}
	}
}
