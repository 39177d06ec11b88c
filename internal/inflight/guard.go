// Package inflight rate-limits user-triggered cart actions: while one action
// is running, and for a short cooldown after it finishes, further actions are
// ignored.
package inflight

import (
	"sync"
	"time"
)

// DefaultCooldown matches the storefront's click guard.
const DefaultCooldown = 180 * time.Millisecond

type Guard struct {
	cooldown time.Duration

	mu    sync.Mutex
	busy  bool
	gen   uint64 // bumped on every acquire and Stop; stale cooldowns compare it
	timer *time.Timer
}

// New returns a Guard that stays closed for cooldown after each action. A
// non-positive cooldown reopens it as soon as the action returns.
func New(cooldown time.Duration) *Guard {
	return &Guard{cooldown: cooldown}
}

// Do runs fn unless another action holds the guard. It reports whether fn ran.
func (g *Guard) Do(fn func()) bool {
	g.mu.Lock()
	ok := g.acquireLocked()
	g.mu.Unlock()
	if !ok {
		return false
	}

	defer g.release()
	fn()
	return true
}

func (g *Guard) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

// Stop cancels a pending cooldown and reopens the guard.
func (g *Guard) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
}

func (g *Guard) acquireLocked() bool {
	if g.busy {
		return false
	}
	g.busy = true
	g.gen++
	return true
}

func (g *Guard) stopLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.gen++
	g.busy = false
}

func (g *Guard) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cooldown <= 0 {
		g.busy = false
		return
	}
	gen := g.gen
	g.timer = time.AfterFunc(g.cooldown, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.gen != gen {
			return
		}
		g.busy = false
		g.timer = nil
	})
}
