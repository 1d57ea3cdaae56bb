package service

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ppopeskul/wa-inbox/internal/api"
	"github.com/ppopeskul/wa-inbox/internal/repository"
)

type healthService struct {
	repo        repository.Repository
	redisClient *redis.Client
	cache       ChatCache
}

// NewHealthService reports on the database and, when caching is enabled,
// on Redis and the cache circuit breaker. redisClient may be nil.
func NewHealthService(repo repository.Repository, redisClient *redis.Client, cache ChatCache) HealthService {
	return &healthService{
		repo:        repo,
		redisClient: redisClient,
		cache:       cache,
	}
}

func (s *healthService) GetHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:         api.Healthy,
		DatabaseStatus: s.checkDatabaseHealth(ctx),
	}

	if status.DatabaseStatus != api.HealthResponseDatabaseStatusConnected {
		status.Status = api.Unhealthy
		return status
	}

	if s.redisClient != nil {
		status.RedisStatus = s.checkRedisHealth(ctx)
		// The cache is optional, so losing Redis only degrades the service.
		if status.RedisStatus != api.HealthResponseRedisStatusConnected {
			status.Status = api.Degraded
		}
	}

	if s.cache != nil {
		status.CacheBreakerState = s.cache.BreakerState()
		if status.CacheBreakerState == api.Open {
			status.Status = api.Degraded
		}
	}

	return status
}

func (s *healthService) checkDatabaseHealth(ctx context.Context) api.HealthResponseDatabaseStatus {
	err := s.repo.Ping(ctx)
	if err != nil {
		return api.HealthResponseDatabaseStatusDisconnected
	}
	return api.HealthResponseDatabaseStatusConnected
}

func (s *healthService) checkRedisHealth(ctx context.Context) api.HealthResponseRedisStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		return api.HealthResponseRedisStatusDisconnected
	}

	return api.HealthResponseRedisStatusConnected
}
