package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRedisClient es un mock del cliente Redis
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	cmd := redis.NewStringCmd(ctx, "get", key)
	if args.Error(1) != nil {
		cmd.SetErr(args.Error(1))
	} else {
		cmd.SetVal(args.String(0))
	}
	return cmd
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	if args.Error(0) != nil {
		cmd.SetErr(args.Error(0))
	} else {
		cmd.SetVal("OK")
	}
	return cmd
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	cmd := redis.NewIntCmd(ctx, "del")
	if args.Error(1) != nil {
		cmd.SetErr(args.Error(1))
	} else {
		cmd.SetVal(int64(args.Int(0)))
	}
	return cmd
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	args := m.Called(ctx)
	cmd := redis.NewStatusCmd(ctx, "ping")
	if args.Error(0) != nil {
		cmd.SetErr(args.Error(0))
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRedisClient) DBSize(ctx context.Context) *redis.IntCmd {
	args := m.Called(ctx)
	cmd := redis.NewIntCmd(ctx, "dbsize")
	if args.Error(1) != nil {
		cmd.SetErr(args.Error(1))
	} else {
		cmd.SetVal(args.Get(0).(int64))
	}
	return cmd
}

func TestRedisCache_Get(t *testing.T) {
	tests := []struct {
		name      string
		mockValue string
		mockErr   error
		want      string
		wantErr   error
	}{
		{"valor existente", `{"price":42000}`, nil, `{"price":42000}`, nil},
		{"clave inexistente se traduce a ErrKeyNotFound", "", redis.Nil, "", ErrKeyNotFound},
		{"error de conexión se propaga", "", errors.New("connection refused"), "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockRedisClient)
			client.On("Get", mock.Anything, "market:tbtc").Return(tt.mockValue, tt.mockErr)
			c := &RedisCache{client: client}

			got, err := c.Get(context.Background(), "market:tbtc")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.mockErr != nil:
				assert.EqualError(t, err, tt.mockErr.Error())
				assert.False(t, IsMiss(err))
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			client.AssertExpectations(t)
		})
	}
}

func TestRedisCache_Set(t *testing.T) {
	client := new(MockRedisClient)
	client.On("Set", mock.Anything, "market:tbtc", "payload", 10*time.Minute).Return(nil).Once()
	client.On("Set", mock.Anything, "market:tbtc", "payload", time.Duration(0)).Return(nil).Once()
	client.On("Set", mock.Anything, "broken", "payload", time.Minute).Return(errors.New("READONLY")).Once()
	c := &RedisCache{client: client}
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "market:tbtc", "payload", 10*time.Minute))
	assert.NoError(t, c.Set(ctx, "market:tbtc", "payload", -time.Second), "TTL negativo se trata como sin expiración")
	assert.EqualError(t, c.Set(ctx, "broken", "payload", time.Minute), "READONLY")

	client.AssertExpectations(t)
}

func TestRedisCache_DeletePingCloseSize(t *testing.T) {
	client := new(MockRedisClient)
	client.On("Del", mock.Anything, []string{"market:tbtc"}).Return(1, nil)
	client.On("Ping", mock.Anything).Return(nil)
	client.On("DBSize", mock.Anything).Return(int64(3), nil)
	client.On("Close").Return(nil)
	c := &RedisCache{client: client}
	ctx := context.Background()

	assert.NoError(t, c.Delete(ctx, "market:tbtc"))
	assert.NoError(t, c.Ping(ctx))

	size, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)

	assert.NoError(t, c.Close())
	client.AssertExpectations(t)
}

func TestNewRedisCache_DoesNotConnect(t *testing.T) {
	c := NewRedisCache("localhost:0", "", 0)
	require.NotNil(t, c)
	assert.NoError(t, c.Close())
}
