package interfaces

import (
	"context"
	"tbtc-market-service/internal/domain/entities"
	"time"
)

// Cache is the key/value backend behind the snapshot store
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// SnapshotStore guarda el último MarketSnapshot válido
type SnapshotStore interface {
	Save(ctx context.Context, snapshot *entities.MarketSnapshot) error
	Load(ctx context.Context) (*entities.MarketSnapshot, error)
	Ping(ctx context.Context) error
}
