package product

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"storefront-cart/internal/domain"
	productrepo "storefront-cart/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

// Get looks up a product; ids that are not UUIDs are reported as not found.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, parsed.String())
}
