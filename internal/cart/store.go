// Package cart holds the visitor's in-progress product selection. The full
// snapshot persists under the cart storage key on every mutation; the total
// is always recomputed from the entries and never stored.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/flicky/go-storefront-client/internal/event"
	"github.com/flicky/go-storefront-client/internal/model"
	"github.com/flicky/go-storefront-client/internal/storage"
)

// ErrDuplicateItem marks an add of a product already in the cart. The cart
// is left unchanged.
var ErrDuplicateItem = errors.New("product already in cart")

type Store struct {
	storage storage.Store
	bus     *event.Bus
	log     *slog.Logger

	mu    sync.Mutex
	items []model.Product
}

func NewStore(st storage.Store, bus *event.Bus, log *slog.Logger) *Store {
	return &Store{storage: st, bus: bus, log: log}
}

// Restore loads the persisted cart. An absent or malformed value means an
// empty cart; it is never an error.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.read(ctx)
}

// Reload re-reads the persisted cart and announces the change. Called when
// another process rewrote the cart key.
func (s *Store) Reload(ctx context.Context) {
	s.Restore(ctx)
	s.bus.Publish(event.TopicCartChanged)
}

// Add appends a product snapshot. At most one entry per product id: adding
// an id already present returns ErrDuplicateItem and changes nothing.
func (s *Store) Add(ctx context.Context, product model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == product.ID {
			return ErrDuplicateItem
		}
	}

	next := append(slices.Clone(s.items), product)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.items = next

	s.bus.Publish(event.TopicCartChanged)
	return nil
}

// Remove filters out the entry with the given product id. Removing an
// absent id is a no-op.
func (s *Store) Remove(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(s.items), func(p model.Product) bool {
		return p.ID == productID
	})
	if len(next) == len(s.items) {
		return nil
	}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.items = next

	s.bus.Publish(event.TopicCartChanged)
	return nil
}

// Clear empties the cart and deletes the persisted snapshot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, storage.KeyCart); err != nil {
		return fmt.Errorf("clear persisted cart: %w", err)
	}
	s.items = nil

	s.bus.Publish(event.TopicCartChanged)
	return nil
}

// Items returns the entries in insertion order.
func (s *Store) Items() []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Total sums the entry prices. Derived on every call so it cannot drift
// from the entries.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total decimal.Decimal
	for _, item := range s.items {
		total = total.Add(item.Price)
	}
	return total
}

// ProductIDs returns the entry ids in insertion order. Unique by the
// duplicate-add invariant.
func (s *Store) ProductIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.items))
	for _, item := range s.items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (s *Store) persist(ctx context.Context, items []model.Product) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyCart, string(data)); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func (s *Store) read(ctx context.Context) []model.Product {
	raw, ok, err := s.storage.Get(ctx, storage.KeyCart)
	if err != nil {
		s.log.Warn("read persisted cart", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var items []model.Product
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn("discard malformed persisted cart", "error", err)
		return nil
	}
	return items
}
