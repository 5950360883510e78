package cache

import (
	"context"
	"errors"
	"fmt"

	"storefront-recipes/internal/infrastructure/config"
	"storefront-recipes/internal/metrics"
	"storefront-recipes/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// RedisCache Redis 提示詞快取
type RedisCache struct {
	client *redis.Client
	config config.CacheConfig
}

// NewRedisCache 創建 Redis 快取並測試連線
func NewRedisCache(ctx context.Context, cfg config.CacheConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCacheWithClient(client, cfg), nil
}

// NewRedisCacheWithClient 以既有連線建立快取
func NewRedisCacheWithClient(client *redis.Client, cfg config.CacheConfig) *RedisCache {
	return &RedisCache{client: client, config: cfg}
}

// Get 獲取緩存
func (s *RedisCache) Get(ctx context.Context, prompt string) (string, error) {
	val, err := s.client.Get(ctx, s.generateKey(prompt)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordPromptCache(false)
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	metrics.RecordPromptCache(true)
	return val, nil
}

// Set 設置緩存
func (s *RedisCache) Set(ctx context.Context, prompt, value string) error {
	if err := s.client.Set(ctx, s.generateKey(prompt), value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉連線
func (s *RedisCache) Close() error {
	return s.client.Close()
}

// generateKey 生成緩存鍵
func (s *RedisCache) generateKey(prompt string) string {
	return "ai:response:" + generateKey(prompt)
}
