package cart

import (
	"context"
	"time"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/inflight"
)

// QuantityControl drives the add/+/- control shown for one product. Clicks
// that arrive while a previous one is in flight, or within the cooldown after
// it, are ignored.
type QuantityControl struct {
	facade  *Facade
	product *domain.Product
	flavor  string
	guard   *inflight.Guard
}

func (f *Facade) NewQuantityControl(product *domain.Product, selectedFlavor string, cooldown time.Duration) *QuantityControl {
	return &QuantityControl{
		facade:  f,
		product: product,
		flavor:  selectedFlavor,
		guard:   inflight.New(cooldown),
	}
}

func (q *QuantityControl) Quantity() int {
	return q.facade.GetItemQuantity(q.product, q.flavor)
}

// Add puts one unit in the cart when the product is not in it yet.
func (q *QuantityControl) Add(ctx context.Context) bool {
	if !q.requireAuth() {
		return false
	}
	if q.Quantity() != 0 {
		return false
	}
	ok := false
	q.guard.Do(func() {
		ok = q.facade.AddItem(ctx, q.product, q.flavor, 1)
	})
	return ok
}

func (q *QuantityControl) Increment(ctx context.Context) bool {
	return q.step(ctx, 1)
}

// Decrement lowers the quantity by one, removing the line at zero.
func (q *QuantityControl) Decrement(ctx context.Context) bool {
	return q.step(ctx, -1)
}

func (q *QuantityControl) step(ctx context.Context, delta int) bool {
	if !q.requireAuth() {
		return false
	}
	ok := false
	q.guard.Do(func() {
		next := max(0, q.Quantity()+delta)
		ok = q.facade.UpdateItemQuantity(ctx, q.product, q.flavor, next)
	})
	return ok
}

func (q *QuantityControl) requireAuth() bool {
	if q.facade.IsAuthenticated() {
		return true
	}
	q.facade.logger.Warn("please log in to modify your cart")
	return false
}
