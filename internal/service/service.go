package service

import (
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/ppopeskul/wa-inbox/internal/config"
	"github.com/ppopeskul/wa-inbox/internal/repository"
)

type Service struct {
	Message MessageService
	Auth    AuthService
	Health  HealthService
}

// NewService wires the application services. redisClient is nil when the
// chat list cache is disabled.
func NewService(
	cfg *config.Config,
	repo repository.Repository,
	redisClient *redis.Client,
	logger *zap.Logger,
) *Service {
	cache := NewChatCache(&cfg.Cache, redisClient, logger)

	return &Service{
		Message: NewMessageService(repo, cache, logger),
		Auth:    NewAuthService(&cfg.Auth, repo, logger),
		Health:  NewHealthService(repo, redisClient, cache),
	}
}

// NewChatCache picks the Redis cache when it is enabled and reachable
// through a client, and the no-op cache otherwise.
func NewChatCache(cfg *config.CacheConfig, redisClient *redis.Client, logger *zap.Logger) ChatCache {
	if !cfg.Enabled || redisClient == nil {
		return NewNoopChatCache()
	}
	return NewRedisChatCache(redisClient, cfg, logger)
}
