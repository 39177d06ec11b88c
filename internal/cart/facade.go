// Package cart is the access layer the storefront uses for its cart. It gates
// every mutation on authentication and reports success as a bool; failures
// are logged and surfaced through Error.
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-cart/internal/auth"
	"storefront-cart/internal/cartstore"
	"storefront-cart/internal/domain"
	"storefront-cart/internal/logging"
)

// AuthState is the part of the auth session the facade reads.
type AuthState interface {
	IsAuthenticated() bool
	User() *auth.User
}

// Store is the cart state holder behind the facade.
type Store interface {
	Snapshot() cartstore.State
	Reset()
	FetchCart(ctx context.Context) error
	AddItem(ctx context.Context, productID string, quantity int, selectedFlavor string) error
	RemoveItem(ctx context.Context, productID string) error
	UpdateItemQuantity(ctx context.Context, productID string, quantity int) error
	ClearCart(ctx context.Context) error
}

type Facade struct {
	store  Store
	auth   AuthState
	logger *zap.SugaredLogger
}

func New(store Store, auth AuthState, logger *zap.SugaredLogger) *Facade {
	return &Facade{store: store, auth: auth, logger: logging.OrNop(logger)}
}

// AddItem adds quantity units of product. quantity must be positive.
func (f *Facade) AddItem(ctx context.Context, product *domain.Product, selectedFlavor string, quantity int) bool {
	id := product.Identifier()
	if id == "" || quantity <= 0 {
		f.logger.Warnw("invalid product or quantity", "product_id", id, "quantity", quantity)
		return false
	}
	if !f.auth.IsAuthenticated() {
		f.logger.Warn("user must be authenticated to add items to cart")
		return false
	}
	if err := f.store.AddItem(ctx, id, quantity, selectedFlavor); err != nil {
		f.logFailure("add item to cart", err)
		return false
	}
	return true
}

// UpdateItemQuantity sets the quantity for product. Zero removes the line.
func (f *Facade) UpdateItemQuantity(ctx context.Context, product *domain.Product, selectedFlavor string, newQuantity int) bool {
	id := product.Identifier()
	if id == "" || newQuantity < 0 {
		f.logger.Warnw("invalid product or quantity", "product_id", id, "quantity", newQuantity)
		return false
	}
	if !f.auth.IsAuthenticated() {
		f.logger.Warn("user must be authenticated to update cart")
		return false
	}

	var err error
	if newQuantity == 0 {
		err = f.store.RemoveItem(ctx, id)
	} else {
		err = f.store.UpdateItemQuantity(ctx, id, newQuantity)
	}
	if err != nil {
		f.logFailure("update cart item quantity", err)
		return false
	}
	return true
}

// RemoveItem removes the line addressed by a cart item key ("id" or
// "id_flavor").
func (f *Facade) RemoveItem(ctx context.Context, cartItemKey string) bool {
	id := domain.ProductIDFromKey(cartItemKey)
	if id == "" {
		f.logger.Warnw("invalid cart item key", "key", cartItemKey)
		return false
	}
	if !f.auth.IsAuthenticated() {
		f.logger.Warn("user must be authenticated to remove items from cart")
		return false
	}
	if err := f.store.RemoveItem(ctx, id); err != nil {
		f.logFailure("remove item from cart", err)
		return false
	}
	return true
}

func (f *Facade) ClearCart(ctx context.Context) bool {
	if !f.auth.IsAuthenticated() {
		f.logger.Warn("user must be authenticated to clear cart")
		return false
	}
	if err := f.store.ClearCart(ctx); err != nil {
		f.logFailure("clear cart", err)
		return false
	}
	return true
}

// GetItemQuantity returns the quantity held for product. Lines match on
// product id only; selectedFlavor does not take part.
func (f *Facade) GetItemQuantity(product *domain.Product, selectedFlavor string) int {
	id := product.Identifier()
	if id == "" {
		return 0
	}
	it, ok := domain.FindItem(f.store.Snapshot().Items, id)
	if !ok || it.Quantity < 0 {
		return 0
	}
	return it.Quantity
}

// GetItemCount sums quantities over the current items.
func (f *Facade) GetItemCount() int {
	n, _ := domain.Totals(f.store.Snapshot().Items)
	return n
}

func (f *Facade) Total() decimal.Decimal {
	return f.store.Snapshot().TotalAmount
}

func (f *Facade) Items() []domain.LineItem { return f.store.Snapshot().Items }
func (f *Facade) Loading() bool { return f.store.Snapshot().Loading }
func (f *Facade) Error() string { return f.store.Snapshot().Error }
func (f *Facade) IsAuthenticated() bool { return f.auth.IsAuthenticated() }

// SyncSession aligns the cart with the auth state: a signed-in user with an
// unsynced cart triggers one fetch, a signed-out session resets the cart.
func (f *Facade) SyncSession(ctx context.Context) error {
	if !f.auth.IsAuthenticated() {
		f.store.Reset()
		return nil
	}
	if f.auth.User() == nil || f.store.Snapshot().Synced {
		return nil
	}
	if err := f.store.FetchCart(ctx); err != nil {
		f.logFailure("fetch cart", err)
		return err
	}
	return nil
}

// Refresh refetches the cart whether or not it was synced.
func (f *Facade) Refresh(ctx context.Context) error {
	if !f.auth.IsAuthenticated() {
		return domain.ErrUnauthenticated
	}
	if err := f.store.FetchCart(ctx); err != nil {
		f.logFailure("fetch cart", err)
		return err
	}
	return nil
}

// Notifier reports login and logout events.
type Notifier interface {
	Subscribe(fn auth.Listener) func()
}

// Watch syncs the cart now and after every auth change until the returned
// func is called.
func (f *Facade) Watch(ctx context.Context, n Notifier) func() {
	_ = f.SyncSession(ctx)
	return n.Subscribe(func(bool) {
		_ = f.SyncSession(ctx)
	})
}

func (f *Facade) logFailure(action string, err error) {
	if errors.Is(err, cartstore.ErrSessionReset) {
		f.logger.Debugw("cart result discarded after reset", "action", action)
		return
	}
	f.logger.Errorw("failed to "+action, "error", err)
}
