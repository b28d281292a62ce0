package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/yashrajoria/storefront/auth"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/storage"
)

const DefaultKeyPrefix = "cart"

var (
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")
	ErrCorruptRecord   = errors.New("cart: stored record is not valid JSON")
)

// Listener is notified after every persisted change of a cart record.
type Listener func(ctx context.Context, id auth.Identity, record Record)

// Store reads and writes cart records in a storage.Store. It is cheap to
// build and is meant to be constructed per request.
//
// Updates are read-modify-write without locking: two concurrent requests for
// the same key may lose one of the updates.
type Store struct {
	kv     storage.Store
	prefix string

	mu        sync.RWMutex
	listeners []Listener
}

type Option func(*Store)

// WithKeyPrefix changes the record key prefix (default "cart").
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func NewStore(kv storage.Store, opts ...Option) *Store {
	s := &Store{kv: kv, prefix: DefaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers l for change notifications.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Key is cart_<userId> for a signed-in shopper and the shared anonymous key
// otherwise.
func (s *Store) Key(id auth.Identity) string {
	if id.Anonymous() {
		return s.prefix
	}
	return s.prefix + "_" + id.UserID
}

// GetAll returns the record, empty when nothing is stored yet.
func (s *Store) GetAll(ctx context.Context, id auth.Identity) (Record, error) {
	raw, err := s.kv.Get(ctx, s.Key(id))
	if errors.Is(err, storage.ErrNotFound) {
		return Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart %s: %w", s.Key(id), err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, s.Key(id), err)
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, nil
}

// Add puts quantity units of product in the cart.
func (s *Store) Add(ctx context.Context, id auth.Identity, product models.Product, quantity int) (Record, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	rec, err := s.GetAll(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, id, rec.Add(product, quantity))
}

// UpdateQuantity sets the quantity of productID exactly. Nothing is written
// when the product is not in the cart; quantity <= 0 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, id auth.Identity, productID string, quantity int) (Record, error) {
	rec, err := s.GetAll(ctx, id)
	if err != nil {
		return nil, err
	}
	next, ok := rec.UpdateQuantity(productID, quantity)
	if !ok {
		return rec, nil
	}
	return s.save(ctx, id, next)
}

// Remove drops productID. Removing an absent product writes nothing.
func (s *Store) Remove(ctx context.Context, id auth.Identity, productID string) (Record, error) {
	rec, err := s.GetAll(ctx, id)
	if err != nil {
		return nil, err
	}
	next, ok := rec.Remove(productID)
	if !ok {
		return rec, nil
	}
	return s.save(ctx, id, next)
}

// Clear deletes the record entirely.
func (s *Store) Clear(ctx context.Context, id auth.Identity) error {
	if err := s.kv.Delete(ctx, s.Key(id)); err != nil {
		return fmt.Errorf("clear cart %s: %w", s.Key(id), err)
	}
	s.notify(ctx, id, Record{})
	return nil
}

func (s *Store) Count(ctx context.Context, id auth.Identity) (int, error) {
	rec, err := s.GetAll(ctx, id)
	if err != nil {
		return 0, err
	}
	return rec.Count(), nil
}

func (s *Store) Total(ctx context.Context, id auth.Identity) (float64, error) {
	rec, err := s.GetAll(ctx, id)
	if err != nil {
		return 0, err
	}
	return rec.Total(), nil
}

func (s *Store) save(ctx context.Context, id auth.Identity, rec Record) (Record, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, s.Key(id), string(raw)); err != nil {
		return nil, fmt.Errorf("save cart %s: %w", s.Key(id), err)
	}
	s.notify(ctx, id, rec)
	return rec, nil
}

func (s *Store) notify(ctx context.Context, id auth.Identity, rec Record) {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, id, rec)
	}
}
