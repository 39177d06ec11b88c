package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront-cart/internal/domain"
)

const foreignKeyViolation = "23503"

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context, userID string) (domain.Cart, error) {
	const q = `
SELECT l.product_id::text, l.quantity, p.price::text, p.sale_percentage::text,
       COALESCE(l.selected_flavor, ''), p.name, COALESCE(p.image_url, '')
FROM cart_lines l
JOIN carts c ON c.id = l.cart_id
JOIN products p ON p.id = l.product_id
WHERE c.user_id = $1
ORDER BY l.created_at ASC, l.id ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	defer rows.Close()

	items := []domain.LineItem{}
	for rows.Next() {
		var (
			it          domain.LineItem
			price, sale string
		)
		if err := rows.Scan(&it.ProductID, &it.Quantity, &price, &sale, &it.SelectedFlavor, &it.Name, &it.ImageURL); err != nil {
			return domain.Cart{}, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return domain.Cart{}, fmt.Errorf("line %s price: %w", it.ProductID, err)
		}
		if it.SalePercentage, err = decimal.NewFromString(sale); err != nil {
			return domain.Cart{}, fmt.Errorf("line %s sale: %w", it.ProductID, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, err
	}

	qty, total := domain.Totals(items)
	return domain.Cart{Items: items, Total: total, ItemCount: qty}, nil
}

func (r *postgresRepo) AddLine(ctx context.Context, userID, productID string, quantity int, selectedFlavor string) error {
	return r.inTx(ctx, userID, func(tx pgx.Tx, cartID string) error {
		_, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, quantity, selected_flavor)
VALUES ($1, $2, $3, NULLIF($4, ''))
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = cart_lines.quantity + EXCLUDED.quantity,
    selected_flavor = COALESCE(EXCLUDED.selected_flavor, cart_lines.selected_flavor)
`, cartID, productID, quantity, selectedFlavor)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return domain.ErrNotFound
		}
		return err
	})
}

func (r *postgresRepo) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return r.RemoveLine(ctx, userID, productID)
	}
	return r.inTx(ctx, userID, func(tx pgx.Tx, cartID string) error {
		cmd, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1
WHERE cart_id = $2 AND product_id = $3
`, quantity, cartID, productID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *postgresRepo) RemoveLine(ctx context.Context, userID, productID string) error {
	return r.inTx(ctx, userID, func(tx pgx.Tx, cartID string) error {
		cmd, err := tx.Exec(ctx, `
DELETE FROM cart_lines
WHERE cart_id = $1 AND product_id = $2
`, cartID, productID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) error {
	return r.inTx(ctx, userID, func(tx pgx.Tx, cartID string) error {
		_, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID)
		return err
	})
}

// inTx runs fn in a transaction against the user's cart, creating the cart on
// first use and bumping its updated_at.
func (r *postgresRepo) inTx(ctx context.Context, userID string, fn func(tx pgx.Tx, cartID string) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cartID, err := ensureCart(ctx, tx, userID)
	if err != nil {
		return err
	}
	if err := fn(tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func ensureCart(ctx context.Context, tx pgx.Tx, userID string) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
RETURNING id::text
`, userID).Scan(&id)
	return id, err
}
