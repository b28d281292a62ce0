package cache

import (
	"context"
	"sync"
	"time"

	"github.com/yashrajoria/storefront/models"
)

// MemoryCategoryCache is a process-local cache used when no Redis is configured.
type MemoryCategoryCache struct {
	mu         sync.RWMutex
	categories []models.Category
	expires    time.Time
	ttl        time.Duration
	now        func() time.Time
}

func NewMemoryCategoryCache(ttl time.Duration) *MemoryCategoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCategoryCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCategoryCache) GetCategories(_ context.Context) ([]models.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.categories == nil || !c.now().Before(c.expires) {
		return nil, ErrMiss
	}
	out := make([]models.Category, len(c.categories))
	copy(out, c.categories)
	return out, nil
}

func (c *MemoryCategoryCache) SetCategories(_ context.Context, categories []models.Category) error {
	stored := make([]models.Category, len(categories))
	copy(stored, categories)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = stored
	c.expires = c.now().Add(c.ttl)
	return nil
}

func (c *MemoryCategoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = nil
	return nil
}
