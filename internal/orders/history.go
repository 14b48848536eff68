// Package orders is the view-model for a user's past orders: fetched via
// the remote API, sorted newest first, with per-order expand state for the
// dashboard surface.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/flicky/go-storefront-client/internal/model"
	"github.com/flicky/go-storefront-client/internal/session"
)

// Fetcher is the slice of the remote API client the history needs.
type Fetcher interface {
	Orders(ctx context.Context, token string) ([]model.Order, error)
}

type History struct {
	session *session.Store
	api     Fetcher
	log     *slog.Logger

	mu       sync.Mutex
	orders   []model.Order
	expanded map[int64]bool
	loadErr  error
}

func NewHistory(sessionStore *session.Store, api Fetcher, log *slog.Logger) *History {
	return &History{session: sessionStore, api: api, log: log, expanded: make(map[int64]bool)}
}

// Load fetches the order list. Without a token it is a no-op. A fetch
// failure leaves the previous list in place and records a retryable error
// state; calling Load again is the retry.
func (h *History) Load(ctx context.Context) error {
	token := h.session.Token()
	if token == "" {
		return nil
	}

	fetched, err := h.api.Orders(ctx, token)
	if err != nil {
		h.mu.Lock()
		h.loadErr = err
		h.mu.Unlock()
		return fmt.Errorf("load orders: %w", err)
	}

	// Stable sort: orders sharing a date keep their fetch order.
	slices.SortStableFunc(fetched, func(a, b model.Order) int {
		return b.Date.Compare(a.Date)
	})

	h.mu.Lock()
	h.orders = fetched
	h.expanded = make(map[int64]bool)
	h.loadErr = nil
	h.mu.Unlock()
	return nil
}

// Orders returns the list sorted by date descending.
func (h *History) Orders() []model.Order {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.orders)
}

// Err reports the last failed load, nil after a successful one.
func (h *History) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loadErr
}

// Toggle flips the expand flag for an order. Orders start collapsed.
func (h *History) Toggle(orderID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.expanded[orderID] = !h.expanded[orderID]
}

func (h *History) Expanded(orderID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.expanded[orderID]
}
