package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient is the subset of *redis.Client used by RedisCache
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	DBSize(ctx context.Context) *redis.IntCmd
	Close() error
}

// RedisCache implements the Cache interface using Redis
type RedisCache struct {
	client redisClient
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(addr, password string, db int) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

// NewRedisCacheWithClient creates a new Redis cache instance with an existing client
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

// Get retrieves a value from Redis
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set stores a value in Redis with TTL; ttl <= 0 keeps the key without expiration
func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key from Redis
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Ping checks if Redis connection is alive
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Size returns the number of keys in the Redis database
func (r *RedisCache) Size(ctx context.Context) (int64, error) {
	return r.client.DBSize(ctx).Result()
}
