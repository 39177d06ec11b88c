package cartstore

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront-cart/internal/cartapi"
	"storefront-cart/internal/domain"
	"storefront-cart/internal/logging"
)

// ErrSessionReset is returned by an operation whose result arrived after the
// store was reset. The result is discarded.
var ErrSessionReset = errors.New("cart session was reset")

// API is the remote cart transport.
type API interface {
	FetchCart(ctx context.Context) (domain.Cart, error)
	AddItem(ctx context.Context, productID string, quantity int, selectedFlavor string) (domain.Cart, error)
	RemoveItem(ctx context.Context, productID string) (domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, productID string, quantity int) (domain.Cart, error)
	ClearCart(ctx context.Context) (domain.Cart, error)
}

// Store owns the cart state for one session. Every change goes through
// Dispatch and Reduce; operations on the same product run one at a time and
// fetch/clear run alone.
type Store struct {
	api    API
	logger *zap.SugaredLogger

	mu        sync.Mutex
	state     State
	epoch     uint64
	listeners map[int]func(State)
	nextID    int

	locks   *productLocks
	fetches singleflight.Group
}

type Option func(*Store)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) { s.logger = l }
}

func New(api API, opts ...Option) *Store {
	s := &Store{
		api:       api,
		state:     Initial(),
		listeners: make(map[int]func(State)),
		locks:     newProductLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to receive every new state. The returned func
// unregisters it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Dispatch applies a to the current state.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	if a.Op == OpReset {
		s.epoch++
	}
	s.state = Reduce(s.state, a)
	s.publishLocked()
}

// Reset returns the store to its initial state. Results of operations started
// before the reset are dropped.
func (s *Store) Reset() {
	s.Dispatch(Action{Op: OpReset})
}

// FetchCart loads the cart from the server. Concurrent calls share a single
// request, which is not bound to any one caller's cancellation; each caller
// stops waiting when its own ctx is done.
func (s *Store) FetchCart(ctx context.Context) error {
	shared := context.WithoutCancel(ctx)
	ch := s.fetches.DoChan("cart", func() (any, error) {
		unlock, err := s.locks.lockCart(shared)
		if err != nil {
			return nil, err
		}
		defer unlock()
		return nil, s.run(shared, OpFetch, s.api.FetchCart)
	})
	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debugw("joined in-flight cart fetch")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) AddItem(ctx context.Context, productID string, quantity int, selectedFlavor string) error {
	unlock, err := s.locks.lockProduct(ctx, productID)
	if err != nil {
		return err
	}
	defer unlock()
	return s.run(ctx, OpAdd, func(ctx context.Context) (domain.Cart, error) {
		return s.api.AddItem(ctx, productID, quantity, selectedFlavor)
	})
}

func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	unlock, err := s.locks.lockProduct(ctx, productID)
	if err != nil {
		return err
	}
	defer unlock()
	return s.run(ctx, OpRemove, func(ctx context.Context) (domain.Cart, error) {
		return s.api.RemoveItem(ctx, productID)
	})
}

func (s *Store) UpdateItemQuantity(ctx context.Context, productID string, quantity int) error {
	unlock, err := s.locks.lockProduct(ctx, productID)
	if err != nil {
		return err
	}
	defer unlock()
	return s.run(ctx, OpUpdate, func(ctx context.Context) (domain.Cart, error) {
		return s.api.UpdateItemQuantity(ctx, productID, quantity)
	})
}

func (s *Store) ClearCart(ctx context.Context) error {
	unlock, err := s.locks.lockCart(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return s.run(ctx, OpClear, s.api.ClearCart)
}

// run dispatches pending, performs call and settles the operation, unless the
// store was reset in the meantime.
func (s *Store) run(ctx context.Context, op Op, call func(context.Context) (domain.Cart, error)) error {
	epoch := s.begin(op)
	cart, err := call(ctx)
	if err != nil {
		if !s.settle(epoch, Action{Op: op, Phase: Rejected, Err: errorMessage(err)}) {
			s.logger.Debugw("dropped stale cart failure", "op", op, "error", err)
			return ErrSessionReset
		}
		return err
	}
	if !s.settle(epoch, Action{Op: op, Phase: Fulfilled, Items: cart.Items}) {
		s.logger.Debugw("dropped stale cart result", "op", op)
		return ErrSessionReset
	}
	return nil
}

func (s *Store) begin(op Op) uint64 {
	s.mu.Lock()
	epoch := s.epoch
	s.state = Reduce(s.state, Action{Op: op, Phase: Pending})
	s.publishLocked()
	return epoch
}

func (s *Store) settle(epoch uint64, a Action) bool {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return false
	}
	s.state = Reduce(s.state, a)
	s.publishLocked()
	return true
}

// publishLocked releases s.mu and notifies listeners with the new state.
func (s *Store) publishLocked() {
	state := s.state
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(state.Clone())
	}
}

func errorMessage(err error) string {
	var apiErr *cartapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
