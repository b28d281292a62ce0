// Package cache holds short-lived copies of catalog data that every page
// render needs, so the navbar does not hit the backend API on each request.
package cache

import (
	"context"
	"errors"

	"github.com/yashrajoria/storefront/models"
)

// ErrMiss is returned when no fresh entry exists.
var ErrMiss = errors.New("cache miss")

// CategoryCache stores the navbar category list.
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]models.Category, error)
	SetCategories(ctx context.Context, categories []models.Category) error
	Invalidate(ctx context.Context) error
}

// CategoryFetcher loads categories from the source of truth.
type CategoryFetcher interface {
	Categories(ctx context.Context) ([]models.Category, error)
}
