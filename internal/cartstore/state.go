package cartstore

import (
	"github.com/shopspring/decimal"

	"storefront-cart/internal/domain"
)

// State is the canonical cart for a session.
type State struct {
	Items         []domain.LineItem
	TotalQuantity int
	TotalAmount   decimal.Decimal
	Loading       bool
	Error         string
	Synced        bool
}

// Op names an asynchronous cart operation.
type Op string

const (
	OpFetch  Op = "fetch"
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpUpdate Op = "update"
	OpClear  Op = "clear"
	OpReset  Op = "reset"
)

// Phase is the lifecycle step of an operation.
type Phase string

const (
	Pending   Phase = "pending"
	Fulfilled Phase = "fulfilled"
	Rejected  Phase = "rejected"
)

// Action is the only way state changes. Items is read on Fulfilled, Err on
// Rejected; Phase is ignored for OpReset.
type Action struct {
	Op    Op
	Phase Phase
	Items []domain.LineItem
	Err   string
}

// Initial returns the empty, unsynced state.
func Initial() State {
	return State{Items: []domain.LineItem{}, TotalAmount: decimal.Zero}
}

// Reduce applies a to s and returns the next state. It never mutates s.
func Reduce(s State, a Action) State {
	if a.Op == OpReset {
		return Initial()
	}
	next := s
	next.Items = cloneItems(s.Items)
	switch a.Phase {
	case Pending:
		next.Loading = true
		next.Error = ""
	case Fulfilled:
		next.Loading = false
		next.Items = cloneItems(a.Items)
		next.TotalQuantity, next.TotalAmount = domain.Totals(next.Items)
		if a.Op == OpFetch {
			next.Synced = true
		}
	case Rejected:
		next.Loading = false
		next.Error = a.Err
		if a.Op == OpFetch {
			next.Synced = false
		}
	}
	return next
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Items = cloneItems(s.Items)
	return s
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out
}
