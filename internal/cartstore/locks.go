package cartstore

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// cartWeight is the number of product operations that may hold the cart at
// once; a whole-cart operation acquires all of it.
const cartWeight = 1 << 10

// productLocks serializes operations per product id while letting whole-cart
// operations (fetch, clear) exclude everything else. Acquisition honors ctx.
type productLocks struct {
	cart *semaphore.Weighted

	mu   sync.Mutex
	keys map[string]*keyLock
}

type keyLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newProductLocks() *productLocks {
	return &productLocks{
		cart: semaphore.NewWeighted(cartWeight),
		keys: make(map[string]*keyLock),
	}
}

// lockProduct holds productID exclusively and the cart in shared mode.
func (p *productLocks) lockProduct(ctx context.Context, productID string) (func(), error) {
	if err := p.cart.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	p.mu.Lock()
	kl, ok := p.keys[productID]
	if !ok {
		kl = &keyLock{sem: semaphore.NewWeighted(1)}
		p.keys[productID] = kl
	}
	kl.refs++
	p.mu.Unlock()

	if err := kl.sem.Acquire(ctx, 1); err != nil {
		p.release(productID, kl)
		p.cart.Release(1)
		return nil, err
	}
	return func() {
		kl.sem.Release(1)
		p.release(productID, kl)
		p.cart.Release(1)
	}, nil
}

// lockCart holds the whole cart exclusively.
func (p *productLocks) lockCart(ctx context.Context) (func(), error) {
	if err := p.cart.Acquire(ctx, cartWeight); err != nil {
		return nil, err
	}
	return func() { p.cart.Release(cartWeight) }, nil
}

func (p *productLocks) release(productID string, kl *keyLock) {
	p.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(p.keys, productID)
	}
	p.mu.Unlock()
}
