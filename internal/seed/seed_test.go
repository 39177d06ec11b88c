package seed

import (
	"context"
	"errors"
	"testing"

	"storefront-cart/internal/domain"
)

type stubUpserter struct {
	keys []string
	err  error
}

func (s *stubUpserter) Upsert(_ context.Context, key string, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.keys = append(s.keys, key)
	p.ID = "id-" + key
	return &p, nil
}

func TestApplyUpsertsCatalog(t *testing.T) {
	repo := &stubUpserter{}
	if err := Apply(context.Background(), repo, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(repo.keys) != len(Catalog()) {
		t.Fatalf("expected %d upserts, got %d", len(Catalog()), len(repo.keys))
	}
}

func TestCatalogHasSaleAndFlavoredItems(t *testing.T) {
	var sale, flavored bool
	for _, s := range Catalog() {
		if s.Product.SalePercentage.IsPositive() {
			sale = true
		}
		if len(s.Product.Flavors) > 0 {
			flavored = true
		}
	}
	if !sale || !flavored {
		t.Fatalf("catalog should include a sale item and a flavored item")
	}
}

func TestApplyStopsOnError(t *testing.T) {
	err := Apply(context.Background(), &stubUpserter{err: errors.New("boom")}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
}
