// Package checkout coordinates the cart and session stores with the remote
// API to submit an order. Checkout is all-or-nothing from the client's view:
// nothing local changes unless the remote call succeeds.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flicky/go-storefront-client/internal/cart"
	"github.com/flicky/go-storefront-client/internal/model"
	"github.com/flicky/go-storefront-client/internal/session"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// OrderCreator is the slice of the remote API client checkout needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, token string, productIDs []int64) (*model.Order, error)
}

type Orchestrator struct {
	cart    *cart.Store
	session *session.Store
	api     OrderCreator
	log     *slog.Logger
}

func New(cartStore *cart.Store, sessionStore *session.Store, api OrderCreator, log *slog.Logger) *Orchestrator {
	return &Orchestrator{cart: cartStore, session: sessionStore, api: api, log: log}
}

// Checkout submits the cart's product ids as an order. Preconditions are
// checked before any network call: a non-empty cart and an authenticated
// session. On success the cart is cleared; on failure cart and session are
// left untouched and the user may simply retry.
func (o *Orchestrator) Checkout(ctx context.Context) (*model.Order, error) {
	if o.cart.Len() == 0 {
		return nil, ErrEmptyCart
	}

	token := o.session.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	order, err := o.api.CreateOrder(ctx, token, o.cart.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}

	if err := o.cart.Clear(ctx); err != nil {
		// The order exists remotely; a failed local cleanup must not turn
		// the checkout into a failure.
		o.log.Warn("clear cart after checkout", "order_id", order.ID, "error", err)
	}
	return order, nil
}
