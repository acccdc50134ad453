package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tbtc-market-service/internal/domain/entities"
)

// MockCache implementa interfaces.Cache para tests
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCache) Close() error {
	return m.Called().Error(0)
}

func TestSnapshotCache_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotCache(NewMemoryCache(), "market:", time.Minute)

	fetchedAt := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	doc := entities.NewMarketDocument([]byte(`{"marketId":"14","price":"42000.5"}`))
	require.NoError(t, store.Save(ctx, entities.NewMarketSnapshot(doc, fetchedAt, 750*time.Millisecond)))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.FetchedAt.Equal(fetchedAt))
	assert.Equal(t, 750*time.Millisecond, got.Duration)
	assert.JSONEq(t, `{"marketId":"14","price":"42000.5"}`, string(got.Document))
}

func TestSnapshotCache_LoadMissing(t *testing.T) {
	store := NewSnapshotCache(NewMemoryCache(), "market:", time.Minute)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, entities.ErrSnapshotNotFound)
}

func TestSnapshotCache_UsesPrefixedKeyAndTTL(t *testing.T) {
	backend := new(MockCache)
	backend.On("Set", mock.Anything, "custom:tbtc", mock.MatchedBy(func(v string) bool {
		return json.Valid([]byte(v))
	}), 3*time.Minute).Return(nil).Once()

	store := NewSnapshotCache(backend, "custom:", 3*time.Minute)
	doc := entities.NewMarketDocument([]byte(`{"a":1}`))

	require.NoError(t, store.Save(context.Background(), entities.NewMarketSnapshot(doc, time.Now(), time.Second)))
	backend.AssertExpectations(t)
}

func TestSnapshotCache_LoadErrors(t *testing.T) {
	t.Run("error del backend", func(t *testing.T) {
		backendErr := errors.New("redis: i/o timeout")
		backend := new(MockCache)
		backend.On("Get", mock.Anything, "market:tbtc").Return("", backendErr)

		_, err := NewSnapshotCache(backend, "market:", time.Minute).Load(context.Background())
		assert.ErrorIs(t, err, backendErr)
		assert.NotErrorIs(t, err, entities.ErrSnapshotNotFound)
	})

	t.Run("payload corrupto", func(t *testing.T) {
		backend := new(MockCache)
		backend.On("Get", mock.Anything, "market:tbtc").Return("not-json", nil)

		_, err := NewSnapshotCache(backend, "market:", time.Minute).Load(context.Background())
		assert.ErrorContains(t, err, "failed to decode market snapshot")
	})

	t.Run("clave expirada", func(t *testing.T) {
		backend := new(MockCache)
		backend.On("Get", mock.Anything, "market:tbtc").Return("", ErrKeyExpired)

		_, err := NewSnapshotCache(backend, "market:", time.Minute).Load(context.Background())
		assert.ErrorIs(t, err, entities.ErrSnapshotNotFound)
	})
}

func TestInstrumentedCache_Delegates(t *testing.T) {
	f, buf := newTestFactory(t)
	backend := new(MockCache)
	backend.On("Get", mock.Anything, "hit").Return("v", nil)
	backend.On("Get", mock.Anything, "miss").Return("", ErrKeyNotFound)
	backend.On("Set", mock.Anything, "k", "v", time.Minute).Return(nil)
	backend.On("Delete", mock.Anything, "k").Return(errors.New("boom"))
	backend.On("Ping", mock.Anything).Return(nil)
	backend.On("Close").Return(nil)

	c := NewInstrumentedCache(backend, "mock", f.logger)
	ctx := context.Background()

	v, err := c.Get(ctx, "hit")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	_, err = c.Get(ctx, "miss")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	assert.EqualError(t, c.Delete(ctx, "k"), "boom")
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())

	backend.AssertExpectations(t)
	assert.Contains(t, buf.String(), "boom")
}
