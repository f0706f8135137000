package services

import (
	"context"
	"time"

	"goshop/pkg/cache"
)

// CacheService is the cache surface the services and repositories share.
// Implementations must treat a miss as an error so callers can fall through
// to the database.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *cache.RedisCache
}

func NewCacheService(client *cache.RedisCache) CacheService {
	return &redisCacheService{client: client}
}

func (s *redisCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return s.client.Get(ctx, key, dest)
}

func (s *redisCacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration)
}

func (s *redisCacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Delete(ctx, keys...)
}

func (s *redisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	return s.client.Exists(ctx, key)
}

func (s *redisCacheService) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, expiration)
}

func (s *redisCacheService) Increment(ctx context.Context, key string) (int64, error) {
	return s.client.Increment(ctx, key)
}

func (s *redisCacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
