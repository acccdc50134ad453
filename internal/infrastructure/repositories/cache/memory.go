package cache

import (
	"context"
	"sync"
	"time"
)

// cacheItem representa un elemento en el cache con su valor y tiempo de expiración
type cacheItem struct {
	value     string
	expiresAt time.Time
}

// isExpired verifica si el item ha expirado; ttl <= 0 significa sin expiración
func (item *cacheItem) isExpired(now time.Time) bool {
	return !item.expiresAt.IsZero() && now.After(item.expiresAt)
}

// MemoryCache implementa la interfaz Cache usando memoria local
type MemoryCache struct {
	items map[string]*cacheItem
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemoryCache crea una nueva instancia de cache en memoria
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]*cacheItem),
		now:   time.Now,
	}
}

// Get obtiene un valor del cache
func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return "", ErrKeyNotFound
	}

	if item.isExpired(c.now()) {
		c.removeExpired(key, item)
		return "", ErrKeyExpired
	}

	return item.value, nil
}

// Set almacena un valor en el cache con TTL y realiza una limpieza ligera de expirados
func (c *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.cleanupLocked(now)

	item := &cacheItem{value: value}
	if ttl > 0 {
		item.expiresAt = now.Add(ttl)
	}
	c.items[key] = item

	return nil
}

// Delete elimina un valor del cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Ping siempre tiene éxito para el backend en memoria
func (c *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

// Close no libera nada en el backend en memoria
func (c *MemoryCache) Close() error {
	return nil
}

// Size retorna el número de elementos en el cache
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// removeExpired borra la entrada solo si sigue siendo la que se leyó;
// un Set concurrente la habrá reemplazado por otra
func (c *MemoryCache) removeExpired(key string, stale *cacheItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if current, ok := c.items[key]; ok && current == stale {
		delete(c.items, key)
	}
}

func (c *MemoryCache) cleanupLocked(now time.Time) {
	for key, item := range c.items {
		if item.isExpired(now) {
			delete(c.items, key)
		}
	}
}
