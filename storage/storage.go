// Package storage provides the durable key/value capability the cart record
// lives in. Implementations hold opaque string values (the cart keeps JSON).
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/yashrajoria/storefront/config"
)

// ErrNotFound indicates that no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is a string-keyed, string-valued durable store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Provider binds a Store to one request. Stores that are not request scoped
// ignore the arguments and return a shared instance.
type Provider func(w http.ResponseWriter, r *http.Request) Store

// NewProvider selects the cart storage backend named in cfg.
func NewProvider(cfg config.Config) (Provider, error) {
	switch cfg.Cart.Store {
	case config.CartStoreCookie:
		opts := CookieOptions{
			MaxAge: cfg.Cart.CookieMaxAge,
			Secure: cfg.Production(),
		}
		return func(w http.ResponseWriter, r *http.Request) Store {
			return NewCookieStore(w, r, opts)
		}, nil
	case config.CartStoreMemory:
		mem := NewMemoryStore()
		return func(http.ResponseWriter, *http.Request) Store { return mem }, nil
	default:
		return nil, fmt.Errorf("invalid cart store type %q", cfg.Cart.Store)
	}
}

// CookieOptions tunes the cookies written by CookieStore.
type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
	Path   string
}
