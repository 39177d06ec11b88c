package cart

import (
	"context"

	"storefront-cart/internal/domain"
)

// Repository stores one cart per user with at most one line per product.
type Repository interface {
	Get(ctx context.Context, userID string) (domain.Cart, error)
	AddLine(ctx context.Context, userID, productID string, quantity int, selectedFlavor string) error
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveLine(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}
