package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yashrajoria/storefront/models"
)

const (
	CategoryCacheKey = "storefront:categories"
	DefaultTTL       = 5 * time.Minute
)

// RedisCategoryCache keeps the category list as one JSON value with a TTL.
type RedisCategoryCache struct {
	redis *redis.Client
	key   string
	ttl   time.Duration
}

func NewRedisCategoryCache(client *redis.Client, ttl time.Duration) *RedisCategoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCategoryCache{redis: client, key: CategoryCacheKey, ttl: ttl}
}

func (c *RedisCategoryCache) GetCategories(ctx context.Context) ([]models.Category, error) {
	cached, err := c.redis.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read category cache: %w", err)
	}

	var categories []models.Category
	if err := json.Unmarshal([]byte(cached), &categories); err != nil {
		zap.L().Warn("Failed to unmarshal cached categories", zap.Error(err))
		return nil, ErrMiss
	}
	return categories, nil
}

func (c *RedisCategoryCache) SetCategories(ctx context.Context, categories []models.Category) error {
	if categories == nil {
		categories = []models.Category{}
	}
	payload, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}
	if err := c.redis.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("write category cache: %w", err)
	}
	return nil
}

func (c *RedisCategoryCache) Invalidate(ctx context.Context) error {
	if err := c.redis.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}
