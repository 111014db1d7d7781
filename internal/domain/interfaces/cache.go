package interfaces

import (
	"context"
	"time"
)

// Cache is a string key/value store with per-key expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
