package cartstore

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"storefront-cart/internal/domain"
)

func item(id string, qty int, price int64) domain.LineItem {
	return domain.LineItem{ProductID: id, Quantity: qty, Price: decimal.NewFromInt(price)}
}

func TestReducePendingClearsError(t *testing.T) {
	s := Initial()
	s.Error = "boom"
	next := Reduce(s, Action{Op: OpAdd, Phase: Pending})
	assert.True(t, next.Loading)
	assert.Empty(t, next.Error)
	assert.Equal(t, "boom", s.Error, "input state must not change")
}

func TestReduceFulfilledReplacesItemsAndTotals(t *testing.T) {
	s := Reduce(Initial(), Action{Op: OpFetch, Phase: Pending})
	next := Reduce(s, Action{Op: OpFetch, Phase: Fulfilled, Items: []domain.LineItem{item("a", 2, 10), item("b", 1, 5)}})
	assert.False(t, next.Loading)
	assert.True(t, next.Synced)
	assert.Equal(t, 3, next.TotalQuantity)
	assert.True(t, next.TotalAmount.Equal(decimal.NewFromInt(25)))

	after := Reduce(next, Action{Op: OpRemove, Phase: Fulfilled, Items: []domain.LineItem{item("b", 1, 5)}})
	assert.Equal(t, 1, after.TotalQuantity)
	assert.Len(t, next.Items, 2)
}

func TestReduceRejectedKeepsItems(t *testing.T) {
	s := Reduce(Initial(), Action{Op: OpFetch, Phase: Fulfilled, Items: []domain.LineItem{item("a", 1, 10)}})
	next := Reduce(s, Action{Op: OpAdd, Phase: Rejected, Err: "Out of stock"})
	assert.Equal(t, "Out of stock", next.Error)
	assert.False(t, next.Loading)
	assert.Len(t, next.Items, 1)
	assert.True(t, next.Synced, "a failed mutation does not unsync the cart")

	failedFetch := Reduce(next, Action{Op: OpFetch, Phase: Rejected, Err: "Failed to fetch cart"})
	assert.False(t, failedFetch.Synced)
}

func TestReduceReset(t *testing.T) {
	s := Reduce(Initial(), Action{Op: OpFetch, Phase: Fulfilled, Items: []domain.LineItem{item("a", 1, 10)}})
	s.Loading = true
	next := Reduce(s, Action{Op: OpReset})
	assert.Empty(t, next.Items)
	assert.Zero(t, next.TotalQuantity)
	assert.True(t, next.TotalAmount.IsZero())
	assert.False(t, next.Loading)
	assert.False(t, next.Synced)
}

func TestReduceDoesNotAliasInput(t *testing.T) {
	in := []domain.LineItem{item("a", 1, 10)}
	next := Reduce(Initial(), Action{Op: OpAdd, Phase: Fulfilled, Items: in})
	in[0].Quantity = 99
	assert.Equal(t, 1, next.Items[0].Quantity)
}
