package product

import (
	"context"

	"storefront-cart/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, key string, product domain.Product) (*domain.Product, error)
}
