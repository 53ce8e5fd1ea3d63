package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderNumberPrefix = "ORD"

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const orderColumns = `id, order_number, customer_id, shipping_address_id, status, subtotal_cents,
discount_cents, shipping_cents, tax_cents, total_cents, payment_method, payment_reference, note,
created_at, updated_at`

// GetByReferenceForUpdate locks the order carrying a payment reference, if
// one exists. Concurrent settlements of the same reference serialize here.
func (r *OrderRepository) GetByReferenceForUpdate(ctx context.Context, reference string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_reference = $1 FOR UPDATE`

	order, err := r.scanOrder(r.queryRow(ctx, query, reference))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by reference: %w", err)
	}
	return &order, nil
}

func (r *OrderRepository) GetForUpdate(ctx context.Context, id string) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	order, err := r.scanOrder(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// NextOrderNumber computes the next date-scoped sequence value. The upsert
// takes a row lock on the day's counter, so two concurrent settlements can
// never pick the same number.
func (r *OrderRepository) NextOrderNumber(ctx context.Context, day time.Time) (string, error) {
	const stmt = `
INSERT INTO order_counters (day, value) VALUES ($1, 1)
ON CONFLICT (day) DO UPDATE SET value = order_counters.value + 1
RETURNING value`

	var seq int
	if err := r.queryRow(ctx, stmt, day.UTC().Truncate(24*time.Hour)).Scan(&seq); err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	return fmt.Sprintf("%s-%s-%04d", orderNumberPrefix, day.UTC().Format("20060102"), seq), nil
}

// Create inserts the order and its line items. A unique violation on the
// payment reference means another settlement already produced the order.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, order_number, customer_id, shipping_address_id, status, subtotal_cents,
	discount_cents, shipping_cents, tax_cents, total_cents, payment_method, payment_reference, note,
	created_at, updated_at)
VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`

	_, err := r.exec(ctx, stmt,
		order.ID,
		order.Number,
		order.CustomerID,
		order.ShippingAddressID,
		order.Status,
		order.SubtotalCents,
		order.DiscountCents,
		order.ShippingCents,
		order.TaxCents,
		order.TotalCents,
		order.PaymentMethod,
		order.PaymentReference,
		order.Note,
		order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSettlement
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create order: %w", err)
	}

	const itemStmt = `
INSERT INTO order_items (id, order_id, product_id, quantity, unit_price_cents, subtotal_cents)
VALUES ($1, $2, $3, $4, $5, $6)`

	for _, item := range order.Items {
		_, err := r.exec(ctx, itemStmt,
			item.ID, order.ID, item.ProductID, item.Quantity, item.UnitPriceCents, item.SubtotalCents)
		if err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) Items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const query = `
SELECT id, order_id, product_id, quantity, unit_price_cents, subtotal_cents
FROM order_items
WHERE order_id = $1
ORDER BY product_id`

	rows, err := r.query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPriceCents, &item.SubtotalCents); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, now time.Time) error {
	const stmt = `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, status, now)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// MarkCancelled flips the order to cancelada and records the reason.
func (r *OrderRepository) MarkCancelled(ctx context.Context, id, reason string, now time.Time) error {
	const stmt = `
UPDATE orders
SET status = 'cancelada',
	note = TRIM(BOTH FROM note || ' ' || $2),
	updated_at = $3
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, reason, now)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error) {
	const query = `SELECT id, name, stock, price_cents, sale_price_cents, active FROM products WHERE id = $1 FOR UPDATE`

	var p domain.Product
	err := r.queryRow(ctx, query, productID).
		Scan(&p.ID, &p.Name, &p.Stock, &p.PriceCents, &p.SalePriceCents, &p.Active)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrStockConflict
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// AdjustStock applies a delta to a product's stock. The stock >= 0 check in
// the schema is the last line of defense against concurrent decrements.
func (r *OrderRepository) AdjustStock(ctx context.Context, productID string, delta int) error {
	const stmt = `UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.exec(ctx, stmt, productID, delta)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrStockConflict
		}
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStockConflict
	}
	return nil
}

func (r *OrderRepository) DeactivateCart(ctx context.Context, cartID string) error {
	const stmt = `UPDATE carts SET active = FALSE, updated_at = NOW() WHERE id = $1`

	if _, err := r.exec(ctx, stmt, cartID); err != nil {
		return fmt.Errorf("deactivate cart: %w", err)
	}
	return nil
}

func (r *OrderRepository) scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		order             domain.Order
		shippingAddressID *string
	)
	err := row.Scan(
		&order.ID,
		&order.Number,
		&order.CustomerID,
		&shippingAddressID,
		&order.Status,
		&order.SubtotalCents,
		&order.DiscountCents,
		&order.ShippingCents,
		&order.TaxCents,
		&order.TotalCents,
		&order.PaymentMethod,
		&order.PaymentReference,
		&order.Note,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	if shippingAddressID != nil {
		order.ShippingAddressID = *shippingAddressID
	}
	return order, nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
