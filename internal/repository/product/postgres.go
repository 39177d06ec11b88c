package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.SugaredLogger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.SugaredLogger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

const selectColumns = `
SELECT id::text, name, COALESCE(description, ''), price::text, sale_percentage::text, flavors, COALESCE(image_url, ''), created_at
FROM products
`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, selectColumns+`ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Errorw("product repo: list", "error", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Errorw("product repo: list rows", "error", err)
		return nil, err
	}
	r.logger.Debugw("product repo: list", "count", len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectColumns+`WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debugw("product repo: not found", "id", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Errorw("product repo: get", "id", id, "error", err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, key string, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (key, name, description, price, sale_percentage, flavors, image_url)
VALUES ($1, $2, NULLIF($3, ''), $4::numeric, $5::numeric, $6, NULLIF($7, ''))
ON CONFLICT (key) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    sale_percentage = EXCLUDED.sale_percentage,
    flavors = EXCLUDED.flavors,
    image_url = EXCLUDED.image_url
RETURNING id::text, created_at
`
	flavors := product.Flavors
	if flavors == nil {
		flavors = []string{}
	}
	res := product
	err := r.pool.QueryRow(ctx, q,
		key,
		product.Name,
		product.Description,
		product.Price.String(),
		product.SalePercentage.String(),
		flavors,
		product.ImageURL,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Errorw("product repo: upsert", "key", key, "error", err)
		return nil, fmt.Errorf("upsert product %s: %w", key, err)
	}
	res.Flavors = flavors
	r.logger.Debugw("product repo: upserted", "key", key, "id", res.ID)
	return &res, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p           domain.Product
		price, sale string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &sale, &p.Flavors, &p.ImageURL, &p.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("product %s price: %w", p.ID, err)
	}
	if p.SalePercentage, err = decimal.NewFromString(sale); err != nil {
		return nil, fmt.Errorf("product %s sale: %w", p.ID, err)
	}
	return &p, nil
}
