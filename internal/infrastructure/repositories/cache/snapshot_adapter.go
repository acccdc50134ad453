package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tbtc-market-service/internal/domain/entities"
	"tbtc-market-service/internal/domain/interfaces"
)

// snapshotKeySuffix is appended to the configured prefix: "market:" -> "market:tbtc"
const snapshotKeySuffix = "tbtc"

// SnapshotCache almacena el último MarketSnapshot en cualquier interfaces.Cache
// utilizando la clave <prefix>tbtc y TTL configurable.
type SnapshotCache struct {
	backend interfaces.Cache
	key     string
	ttl     time.Duration
}

// NewSnapshotCache crea un nuevo adaptador.
func NewSnapshotCache(backend interfaces.Cache, prefix string, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		backend: backend,
		key:     prefix + snapshotKeySuffix,
		ttl:     ttl,
	}
}

// Key returns the backend key the snapshot is stored under
func (s *SnapshotCache) Key() string {
	return s.key
}

// Save reemplaza el snapshot guardado.
func (s *SnapshotCache) Save(ctx context.Context, snapshot *entities.MarketSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode market snapshot: %w", err)
	}
	return s.backend.Set(ctx, s.key, string(payload), s.ttl)
}

// Load obtiene el snapshot si existe y no expiró.
func (s *SnapshotCache) Load(ctx context.Context) (*entities.MarketSnapshot, error) {
	payload, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if IsMiss(err) {
			return nil, entities.ErrSnapshotNotFound
		}
		return nil, err
	}

	var snapshot entities.MarketSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode market snapshot: %w", err)
	}
	return &snapshot, nil
}

// Ping checks the underlying backend
func (s *SnapshotCache) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}
