package postgres

import (
	"context"
	"fmt"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) GetActiveCart(ctx context.Context, customerID string) (*domain.Cart, error) {
	const query = `SELECT id, customer_id FROM carts WHERE customer_id = $1 AND active = TRUE`

	var cart domain.Cart
	err := r.queryRow(ctx, query, customerID).Scan(&cart.ID, &cart.CustomerID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get active cart: %w", err)
	}
	cart.Active = true

	const itemQuery = `
SELECT product_id, quantity, unit_price_cents
FROM cart_items
WHERE cart_id = $1
ORDER BY product_id`

	rows, err := r.query(ctx, itemQuery, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

// ValidateForCheckout re-checks live stock and price for every cart line so
// an intent is never created from a cart that already cannot settle.
func (r *CartRepository) ValidateForCheckout(ctx context.Context, cart *domain.Cart) (domain.CartValidation, error) {
	const query = `SELECT stock, price_cents, sale_price_cents, active FROM products WHERE id = $1`

	result := domain.CartValidation{IsValid: true}
	for _, item := range cart.Items {
		var p domain.Product
		err := r.queryRow(ctx, query, item.ProductID).
			Scan(&p.Stock, &p.PriceCents, &p.SalePriceCents, &p.Active)
		if err != nil {
			if err == pgx.ErrNoRows {
				result.IsValid = false
				result.Errors = append(result.Errors, fmt.Sprintf("product %s no longer exists", item.ProductID))
				continue
			}
			return domain.CartValidation{}, fmt.Errorf("validate cart item: %w", err)
		}
		if !p.Active {
			result.IsValid = false
			result.Errors = append(result.Errors, fmt.Sprintf("product %s is no longer for sale", item.ProductID))
		}
		if p.Stock < item.Quantity {
			result.IsValid = false
			result.Errors = append(result.Errors, fmt.Sprintf("product %s has %d left, cart wants %d", item.ProductID, p.Stock, item.Quantity))
		}
		if p.EffectivePriceCents() != item.UnitPriceCents {
			result.IsValid = false
			result.Errors = append(result.Errors, fmt.Sprintf("product %s price changed", item.ProductID))
		}
	}
	return result, nil
}

func (r *CartRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *CartRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
