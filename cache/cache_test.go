package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/storefront/models"
)

var sample = []models.Category{
	{ID: "c1", Name: "Văn học", Slug: "van-hoc"},
	{ID: "c2", Name: "Thiếu nhi", Slug: "thieu-nhi"},
}

type fakeFetcher struct {
	calls int
	out   []models.Category
	err   error
}

func (f *fakeFetcher) Categories(context.Context) ([]models.Category, error) {
	f.calls++
	return f.out, f.err
}

type brokenCache struct{}

func (brokenCache) GetCategories(context.Context) ([]models.Category, error) {
	return nil, errors.New("connection refused")
}
func (brokenCache) SetCategories(context.Context, []models.Category) error {
	return errors.New("connection refused")
}
func (brokenCache) Invalidate(context.Context) error { return nil }

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCategoryCache(time.Minute)
	c.now = func() time.Time { return now }

	_, err := c.GetCategories(ctx)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.SetCategories(ctx, sample))
	got, err := c.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample, got)

	now = now.Add(time.Minute)
	_, err = c.GetCategories(ctx)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCacheStoresEmptyList(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCategoryCache(time.Minute)
	require.NoError(t, c.SetCategories(ctx, nil))

	got, err := c.GetCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, c.Invalidate(ctx))
	_, err = c.GetCategories(ctx)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCachedCategoriesHitsFetcherOnce(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{out: sample}
	src := NewCachedCategories(NewMemoryCategoryCache(time.Minute), f, nil)

	for i := 0; i < 3; i++ {
		got, err := src.Categories(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}
	assert.Equal(t, 1, f.calls)
}

func TestCachedCategoriesFallsThroughOnCacheFailure(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{out: sample}
	src := NewCachedCategories(brokenCache{}, f, nil)

	got, err := src.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestCachedCategoriesFetchError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("upstream down")}
	src := NewCachedCategories(NewMemoryCategoryCache(time.Minute), f, nil)

	_, err := src.Categories(context.Background())
	assert.EqualError(t, err, "upstream down")
}
