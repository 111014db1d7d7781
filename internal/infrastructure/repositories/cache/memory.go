package cache

import (
	"context"
	"sync"
	"time"

	"ticker-cache-service/internal/domain/interfaces"
)

// cacheItem representa un elemento en el cache con su valor y tiempo de expiración
type cacheItem struct {
	value     string
	expiresAt time.Time // zero: no expira
}

func (item *cacheItem) isExpired(now time.Time) bool {
	return !item.expiresAt.IsZero() && now.After(item.expiresAt)
}

// MemoryCache implementa interfaces.Cache en memoria local
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
		_ = c.Delete(ctx, key)
		return "", ErrKeyExpired
	}
	return item.value, nil
}

// Set almacena un valor con TTL; ttl <= 0 guarda sin expiración.
// Aprovecha el lock para purgar expirados.
func (c *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, item := range c.items {
		if item.isExpired(now) {
			delete(c.items, k)
		}
	}

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

// Size retorna el número de elementos en el cache
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

var _ interfaces.Cache = (*MemoryCache)(nil)
