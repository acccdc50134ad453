package cache

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tbtc-market-service/internal/infrastructure/config"
	"tbtc-market-service/internal/infrastructure/logging"
)

func newTestFactory(t *testing.T) (*Factory, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	loggers, err := logging.NewLoggerFactory(logging.NewTestingConfig("tbtc-market-service", &buf))
	require.NoError(t, err)
	return NewFactory(loggers.GetCacheLogger()), &buf
}

func testCacheConfig(backend string) config.CacheConfig {
	cfg := config.GetDefaultConfig().Cache
	cfg.Backend = backend
	return cfg
}

func TestFactory_CreateCache_Memory(t *testing.T) {
	f, _ := newTestFactory(t)

	c, err := f.CreateCache(context.Background(), testCacheConfig("MEMORY"))
	require.NoError(t, err)

	instrumented, ok := c.(*InstrumentedCache)
	require.True(t, ok)
	assert.Equal(t, "memory", instrumented.Backend())
}

func TestFactory_CreateCache_Unsupported(t *testing.T) {
	f, _ := newTestFactory(t)

	_, err := f.CreateCache(context.Background(), testCacheConfig("memcached"))
	assert.ErrorContains(t, err, "unsupported cache type")
}

func TestFactory_CreateCache_RedisRetriesUntilReachable(t *testing.T) {
	f, buf := newTestFactory(t)

	client := new(MockRedisClient)
	client.On("Ping", mock.Anything).Return(errors.New("connection refused")).Twice()
	client.On("Ping", mock.Anything).Return(nil).Once()

	var gotOpts *redis.Options
	f.newRedisClient = func(opts *redis.Options) redisClient {
		gotOpts = opts
		return client
	}

	cfg := testCacheConfig("redis")
	cfg.Redis.Addr = "redis.internal:6380"
	cfg.Redis.DB = 2
	cfg.Redis.ConnectRetries = 3

	c, err := f.CreateCache(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "redis", c.(*InstrumentedCache).Backend())
	assert.Equal(t, "redis.internal:6380", gotOpts.Addr)
	assert.Equal(t, 2, gotOpts.DB)

	client.AssertNumberOfCalls(t, "Ping", 3)
	assert.Contains(t, buf.String(), "Redis not reachable, retrying")
}

func TestFactory_CreateCache_RedisGivesUp(t *testing.T) {
	f, _ := newTestFactory(t)

	client := new(MockRedisClient)
	client.On("Ping", mock.Anything).Return(errors.New("connection refused"))
	client.On("Close").Return(nil).Once()
	f.newRedisClient = func(opts *redis.Options) redisClient { return client }

	cfg := testCacheConfig("redis")
	cfg.Redis.ConnectRetries = 2

	start := time.Now()
	_, err := f.CreateCache(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to connect to Redis at localhost:6379")
	assert.ErrorContains(t, err, "connection refused")
	assert.Less(t, time.Since(start), 5*time.Second)

	client.AssertNumberOfCalls(t, "Ping", 2)
	client.AssertCalled(t, "Close")
}

func TestFactory_CreateSnapshotStore(t *testing.T) {
	f, _ := newTestFactory(t)

	t.Run("deshabilitado", func(t *testing.T) {
		cfg := testCacheConfig("memory")
		cfg.Enabled = false

		store, backend, err := f.CreateSnapshotStore(context.Background(), cfg)
		require.NoError(t, err)
		assert.Nil(t, store)
		assert.Nil(t, backend)
	})

	t.Run("memoria", func(t *testing.T) {
		store, backend, err := f.CreateSnapshotStore(context.Background(), testCacheConfig("memory"))
		require.NoError(t, err)
		require.NotNil(t, store)
		require.NotNil(t, backend)
		assert.Equal(t, "market:tbtc", store.(*SnapshotCache).Key())
		assert.NoError(t, store.Ping(context.Background()))
	})
}
