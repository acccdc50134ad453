package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"

	"tbtc-market-service/internal/domain/interfaces"
	"tbtc-market-service/internal/infrastructure/config"
	"tbtc-market-service/internal/infrastructure/logging"
)

// CacheType represents the type of cache implementation
type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

const (
	redisPingTimeout  = 5 * time.Second
	redisRetryDelay   = 200 * time.Millisecond
	redisRetryMaxWait = 2 * time.Second
)

// Factory provides methods to create cache instances
type Factory struct {
	logger logging.CacheLogger
	// newRedisClient is swapped in tests
	newRedisClient func(opts *redis.Options) redisClient
}

// NewFactory creates a new cache factory
func NewFactory(logger logging.CacheLogger) *Factory {
	if logger == nil {
		logger = logging.Cache()
	}
	return &Factory{
		logger: logger,
		newRedisClient: func(opts *redis.Options) redisClient {
			return redis.NewClient(opts)
		},
	}
}

// CreateCache creates a cache backend based on configuration
func (f *Factory) CreateCache(ctx context.Context, cfg config.CacheConfig) (interfaces.Cache, error) {
	switch CacheType(strings.ToLower(cfg.Backend)) {
	case CacheTypeMemory:
		f.logger.Info(ctx, "Creating memory cache", logging.Fields{
			"type": "memory",
		})
		return NewInstrumentedCache(NewMemoryCache(), string(CacheTypeMemory), f.logger), nil

	case CacheTypeRedis:
		f.logger.Info(ctx, "Creating Redis cache", logging.Fields{
			"type":     "redis",
			"addr":     cfg.Redis.Addr,
			"database": cfg.Redis.DB,
		})
		backend, err := f.createRedisCache(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewInstrumentedCache(backend, string(CacheTypeRedis), f.logger), nil

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Backend)
	}
}

// CreateSnapshotStore builds the snapshot store for the configured backend.
// It returns nil when caching is disabled.
func (f *Factory) CreateSnapshotStore(ctx context.Context, cfg config.CacheConfig) (interfaces.SnapshotStore, interfaces.Cache, error) {
	if !cfg.Enabled {
		f.logger.Info(ctx, "Snapshot store disabled", nil)
		return nil, nil, nil
	}

	backend, err := f.CreateCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return NewSnapshotCache(backend, cfg.Prefix, cfg.TTL), backend, nil
}

// createRedisCache creates the client and waits for Redis to answer PING,
// retrying with backoff up to ConnectRetries attempts
func (f *Factory) createRedisCache(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	client := f.newRedisClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	err := retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
			defer cancel()
			return client.Ping(pingCtx).Err()
		},
		retry.Attempts(uint(attempts)),
		retry.Delay(redisRetryDelay),
		retry.MaxDelay(redisRetryMaxWait),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			f.logger.WarnWithError(ctx, "Redis not reachable, retrying", err, logging.Fields{
				"addr":    cfg.Addr,
				"attempt": n + 1,
			})
		}),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	f.logger.Info(ctx, "Redis connection established successfully", logging.Fields{
		"addr":     cfg.Addr,
		"database": cfg.DB,
	})
	return &RedisCache{client: client}, nil
}
