package cache

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/yashrajoria/storefront/models"
)

// CachedCategories serves categories from a cache, falling through to the
// fetcher on a miss or on any cache failure.
type CachedCategories struct {
	cache   CategoryCache
	fetcher CategoryFetcher
	log     *zap.Logger
}

func NewCachedCategories(c CategoryCache, f CategoryFetcher, log *zap.Logger) *CachedCategories {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedCategories{cache: c, fetcher: f, log: log}
}

func (c *CachedCategories) Categories(ctx context.Context) ([]models.Category, error) {
	if c.cache != nil {
		categories, err := c.cache.GetCategories(ctx)
		if err == nil {
			return categories, nil
		}
		if !errors.Is(err, ErrMiss) {
			c.log.Warn("category cache read failed", zap.Error(err))
		}
	}

	categories, err := c.fetcher.Categories(ctx)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.SetCategories(ctx, categories); err != nil {
			c.log.Warn("category cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}
