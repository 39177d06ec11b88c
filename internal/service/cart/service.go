package cart

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"

	"storefront-cart/internal/domain"
	cartrepo "storefront-cart/internal/repository/cart"
)

type Service struct {
	repo        cartRepo
	productRepo productRepo
}

type cartRepo interface {
	Get(ctx context.Context, userID string) (domain.Cart, error)
	AddLine(ctx context.Context, userID, productID string, quantity int, selectedFlavor string) error
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveLine(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartrepo.Repository, productRepo productRepo) *Service {
	return &Service{repo: repo, productRepo: productRepo}
}

type AddItemInput struct {
	ProductID      string
	Quantity       int
	SelectedFlavor string
}

// Get returns the user's cart; a user without one gets an empty cart.
func (s *Service) Get(ctx context.Context, userID string) (domain.Cart, error) {
	return s.repo.Get(ctx, userID)
}

// AddItem merges quantity into the product's line, creating it if needed.
func (s *Service) AddItem(ctx context.Context, userID string, in AddItemInput) (domain.Cart, error) {
	productID, err := parseProductID(in.ProductID)
	if err != nil {
		return domain.Cart{}, err
	}
	if in.Quantity <= 0 {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}
	if s.productRepo == nil {
		return domain.Cart{}, errors.New("product repository unavailable")
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return domain.Cart{}, err
	}
	flavor := strings.TrimSpace(in.SelectedFlavor)
	if flavor != "" && len(product.Flavors) > 0 && !slices.Contains(product.Flavors, flavor) {
		return domain.Cart{}, domain.ErrInvalidFlavor
	}
	if err := s.repo.AddLine(ctx, userID, productID, in.Quantity, flavor); err != nil {
		return domain.Cart{}, err
	}
	return s.repo.Get(ctx, userID)
}

// UpdateQuantity overwrites the line's quantity. Zero removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	id, err := parseProductID(productID)
	if err != nil {
		return domain.Cart{}, err
	}
	if quantity < 0 {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}
	if err := s.repo.SetQuantity(ctx, userID, id, quantity); err != nil {
		return domain.Cart{}, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error) {
	id, err := parseProductID(productID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.repo.RemoveLine(ctx, userID, id); err != nil {
		return domain.Cart{}, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID string) (domain.Cart, error) {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return domain.Cart{}, err
	}
	return domain.EmptyCart(), nil
}

// parseProductID normalizes a product id. Ids that are not UUIDs cannot name a
// stored product.
func parseProductID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.ErrMissingProduct
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", domain.ErrNotFound
	}
	return id.String(), nil
}
