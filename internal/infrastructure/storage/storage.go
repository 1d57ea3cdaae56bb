// Package storage opens the PostgreSQL and Redis connections shared by the
// server and the ingestion job.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ppopeskul/wa-inbox/internal/config"
)

const connMaxLifetime = 5 * time.Minute

// OpenDB connects to PostgreSQL and applies the pool limits from cfg.
func OpenDB(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	return db, nil
}

// NewRedisClient returns nil when the cache is disabled. An unreachable
// server is logged but not fatal: the chat cache falls back to the
// database and the health check reports degraded.
func NewRedisClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) *redis.Client {
	if !cfg.Cache.Enabled {
		logger.Info("Chat cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis is unreachable, chat cache will be bypassed", zap.Error(err))
	}

	return client
}
