// Package cache holds the short-lived shared state of the billing server.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gridledger/billing/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// IdempotencyStore remembers client request keys for a while so a retried
// write is recognised instead of applied twice
type IdempotencyStore interface {
	// Reserve claims key for ttl. It returns false when the key is already held.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees key so the request can be retried
	Release(ctx context.Context, key string) error
	Close() error
}

// NewIdempotencyStore returns a Redis-backed store when Redis is enabled,
// an in-memory one otherwise
func NewIdempotencyStore(cfg config.RedisConfig, logger *zap.Logger) (IdempotencyStore, error) {
	if !cfg.Enabled {
		logger.Warn("Redis disabled, idempotency keys are tracked in memory of this instance only")
		return NewInMemoryIdempotencyStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for idempotency keys: %w", err)
	}

	logger.Info("Idempotency keys backed by Redis", zap.String("addr", cfg.Addr()))
	return NewRedisIdempotencyStore(client, ""), nil
}
