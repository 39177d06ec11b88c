package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/logging"
)

type productUpserter interface {
	Upsert(ctx context.Context, key string, product domain.Product) (*domain.Product, error)
}

// Item is a catalog entry keyed by a stable slug.
type Item struct {
	Key     string
	Product domain.Product
}

// Catalog is the demo catalog: a plain item, a discounted item and a
// flavored item.
func Catalog() []Item {
	return []Item{
		{
			Key: "creatine-monohydrate",
			Product: domain.Product{
				Name:        "Creatine Monohydrate",
				Description: "Micronized creatine, 300 g",
				Price:       decimal.RequireFromString("24.99"),
				ImageURL:    "/images/products/creatine.png",
			},
		},
		{
			Key: "shaker-bottle",
			Product: domain.Product{
				Name:           "Shaker Bottle",
				Description:    "Leak-proof shaker, 700 ml",
				Price:          decimal.RequireFromString("12.00"),
				SalePercentage: decimal.NewFromInt(25),
				ImageURL:       "/images/products/shaker.png",
			},
		},
		{
			Key: "whey-protein",
			Product: domain.Product{
				Name:           "Whey Protein",
				Description:    "Whey concentrate, 2 kg",
				Price:          decimal.RequireFromString("50.00"),
				SalePercentage: decimal.NewFromInt(20),
				Flavors:        []string{"vanilla", "chocolate", "strawberry"},
				ImageURL:       "/images/products/whey.png",
			},
		},
	}
}

// Apply upserts the demo catalog. It is idempotent.
func Apply(ctx context.Context, repo productUpserter, logger *zap.SugaredLogger) error {
	logger = logging.OrNop(logger)
	for _, s := range Catalog() {
		p, err := repo.Upsert(ctx, s.Key, s.Product)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", s.Key, err)
		}
		logger.Infow("seeded product", "key", s.Key, "id", p.ID)
	}
	return nil
}
