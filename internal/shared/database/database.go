package database

import (
	"context"
	"fmt"
	"log/slog"

	"seatkeeper/internal/shared/config"
	"seatkeeper/pkg/cache"
	"seatkeeper/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// DB holds the backing store connections. The service keeps no records of
// its own; Redis only carries caches, rate limits and booking guards.
type DB struct {
	Redis *redis.Client
}

// InitDB opens the configured connections. With Redis disabled it returns an
// empty DB and every Redis-backed feature switches off.
func InitDB(cfg *config.Config) (*DB, error) {
	if !cfg.Redis.Enabled {
		logger.GetDefault().Info("Redis disabled: no caching, rate limiting or booking guard")
		return &DB{}, nil
	}

	rdb, err := cache.NewRedisClient(cache.Config{
		Address:  cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	logger.GetDefault().Info("Redis connected", slog.String("addr", cfg.Redis.Addr))
	return &DB{Redis: rdb}, nil
}

// Close closes all connections
func (db *DB) Close() error {
	if db == nil || db.Redis == nil {
		return nil
	}
	if err := db.Redis.Close(); err != nil {
		return fmt.Errorf("failed to close Redis: %w", err)
	}
	return nil
}

// HealthCheck pings every open connection
func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.Redis == nil {
		return nil
	}
	if err := db.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// GetRedisClient returns the Redis client, nil when Redis is disabled
func (db *DB) GetRedisClient() *redis.Client {
	if db == nil {
		return nil
	}
	return db.Redis
}
