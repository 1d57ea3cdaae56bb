package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/ppopeskul/wa-inbox/internal/api"
	"github.com/ppopeskul/wa-inbox/internal/config"
	"github.com/ppopeskul/wa-inbox/internal/metrics"
	"github.com/ppopeskul/wa-inbox/internal/models"
)

const (
	chatListCacheKey       = "chats:list"
	chatGenerationCacheKey = "chats:generation"
)

// errStaleGeneration aborts a cache write that raced with an invalidation.
var errStaleGeneration = errors.New("chat list generation changed")

// redisChatCache keeps the chat list under chatListCacheKey and a counter
// under chatGenerationCacheKey that every Invalidate bumps. A failed
// Invalidate leaves pendingInvalidate set; until a retry succeeds the
// cache neither serves nor stores lists.
type redisChatCache struct {
	client            *redis.Client
	ttl               time.Duration
	breaker           *CircuitBreaker
	logger            *zap.Logger
	pendingInvalidate atomic.Bool
}

// NewRedisChatCache caches the chat list in Redis. Cache failures are
// logged and never surface to callers.
func NewRedisChatCache(client *redis.Client, cfg *config.CacheConfig, logger *zap.Logger) ChatCache {
	return &redisChatCache{
		client:  client,
		ttl:     time.Duration(cfg.ChatListTTL) * time.Second,
		breaker: NewCircuitBreaker("chat-cache", &cfg.CircuitBreaker, logger),
		logger:  logger,
	}
}

func (c *redisChatCache) GetChats(ctx context.Context) ([]models.ChatSummary, int64, bool) {
	if c.pendingInvalidate.Load() && !c.invalidate(ctx) {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, 0, false
	}

	var (
		chats      []models.ChatSummary
		generation int64
		found      bool
	)

	err := c.breaker.Execute(ctx, func() error {
		values, err := c.client.MGet(ctx, chatListCacheKey, chatGenerationCacheKey).Result()
		if err != nil {
			return err
		}

		if raw, ok := values[1].(string); ok {
			if generation, err = strconv.ParseInt(raw, 10, 64); err != nil {
				return fmt.Errorf("failed to decode chat list generation: %w", err)
			}
		}

		raw, ok := values[0].(string)
		if !ok {
			return nil
		}
		if err := json.Unmarshal([]byte(raw), &chats); err != nil {
			return fmt.Errorf("failed to decode cached chats: %w", err)
		}
		found = true
		return nil
	})

	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("Failed to read chat list cache", zap.Error(err))
		return nil, 0, false
	case !found:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, generation, false
	default:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return chats, generation, true
	}
}

// SetChats stores chats only while the generation still equals the one
// read on the miss. The check and the write run in one WATCH transaction.
func (c *redisChatCache) SetChats(ctx context.Context, generation int64, chats []models.ChatSummary) {
	if c.pendingInvalidate.Load() {
		return
	}

	data, err := json.Marshal(chats)
	if err != nil {
		c.logger.Warn("Failed to encode chat list for cache", zap.Error(err))
		return
	}

	stale := false
	err = c.breaker.Execute(ctx, func() error {
		err := c.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.Get(ctx, chatGenerationCacheKey).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if current != generation {
				return errStaleGeneration
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, chatListCacheKey, data, c.ttl)
				return nil
			})
			return err
		}, chatGenerationCacheKey)

		if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
			stale = true
			return nil
		}
		return err
	})

	switch {
	case err != nil:
		c.logger.Warn("Failed to write chat list cache", zap.Error(err))
	case stale:
		c.logger.Debug("Skipped caching a chat list older than the last write")
	}
}

func (c *redisChatCache) Invalidate(ctx context.Context) {
	c.invalidate(ctx)
}

func (c *redisChatCache) invalidate(ctx context.Context) bool {
	err := c.breaker.Execute(ctx, func() error {
		_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Incr(ctx, chatGenerationCacheKey)
			pipe.Del(ctx, chatListCacheKey)
			return nil
		})
		return err
	})
	if err == nil {
		c.pendingInvalidate.Store(false)
		return true
	}

	c.pendingInvalidate.Store(true)
	c.logger.Warn("Failed to invalidate chat list cache", zap.Error(err))
	return false
}

func (c *redisChatCache) BreakerState() api.HealthResponseCacheBreakerState {
	return c.breaker.GetState()
}

type noopChatCache struct{}

// NewNoopChatCache returns a cache that never stores anything.
func NewNoopChatCache() ChatCache {
	return noopChatCache{}
}

func (noopChatCache) GetChats(context.Context) ([]models.ChatSummary, int64, bool) { return nil, 0, false }
func (noopChatCache) SetChats(context.Context, int64, []models.ChatSummary)        {}
func (noopChatCache) Invalidate(context.Context)                                   {}
func (noopChatCache) BreakerState() api.HealthResponseCacheBreakerState            { return "" }
