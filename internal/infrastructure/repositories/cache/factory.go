package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ticker-cache-service/internal/domain/interfaces"
	"ticker-cache-service/internal/infrastructure/logging"
)

// CacheType represents the mirror backend implementation
type CacheType string

const (
	CacheTypeNone   CacheType = "none"
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

// Config holds backend configuration options
type Config struct {
	Type        CacheType
	RedisAddr   string
	RedisDB     int
	Password    string
	PingTimeout time.Duration
}

// Factory creates mirror backends
type Factory struct {
	newClient func(opts *redis.Options) RedisClient
}

func NewFactory() *Factory {
	return &Factory{
		newClient: func(opts *redis.Options) RedisClient { return redis.NewClient(opts) },
	}
}

// CreateCache returns nil and no error for CacheTypeNone.
func (f *Factory) CreateCache(ctx context.Context, config Config) (interfaces.Cache, error) {
	switch config.Type {
	case CacheTypeNone, "":
		logging.Info(ctx, "Snapshot mirror disabled", logging.Fields{"type": "none"})
		return nil, nil

	case CacheTypeMemory:
		logging.Info(ctx, "Creating memory cache", logging.Fields{"type": "memory"})
		return NewMemoryCache(), nil

	case CacheTypeRedis:
		logging.Info(ctx, "Creating Redis cache", logging.Fields{
			"type":     "redis",
			"addr":     config.RedisAddr,
			"database": config.RedisDB,
		})
		rc, err := f.createRedisCache(ctx, config)
		if err != nil {
			return nil, err
		}
		return rc, nil

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", config.Type)
	}
}

// createRedisCache creates the client and checks the connection
func (f *Factory) createRedisCache(ctx context.Context, config Config) (*RedisCache, error) {
	client := f.newClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.Password,
		DB:       config.RedisDB,
	})

	timeout := config.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", config.RedisAddr, err)
	}

	logging.Info(ctx, "Redis connection established successfully", logging.Fields{
		"addr":     config.RedisAddr,
		"database": config.RedisDB,
	})
	return NewRedisCacheWithClient(client), nil
}
