package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IntentRepository struct {
	pool *pgxpool.Pool
}

func NewIntentRepository(pool *pgxpool.Pool) *IntentRepository {
	return &IntentRepository{pool: pool}
}

func (r *IntentRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const intentColumns = `id, reference, customer_id, cart_id, shipping_address_id, payment_method, note,
cart_snapshot, customer_snapshot, shipping_snapshot, status, provider_tx_id, created_at, updated_at, expires_at`

func (r *IntentRepository) Create(ctx context.Context, intent domain.CheckoutIntent) error {
	cartJSON, err := json.Marshal(intent.Cart)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}
	customerJSON, err := json.Marshal(intent.Customer)
	if err != nil {
		return fmt.Errorf("marshal customer snapshot: %w", err)
	}
	var shippingJSON []byte
	if intent.Shipping != nil {
		shippingJSON, err = json.Marshal(intent.Shipping)
		if err != nil {
			return fmt.Errorf("marshal shipping snapshot: %w", err)
		}
	}

	const stmt = `
INSERT INTO checkout_intents (id, reference, customer_id, cart_id, shipping_address_id, payment_method, note,
	cart_snapshot, customer_snapshot, shipping_snapshot, status, created_at, updated_at, expires_at)
VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8, $9, $10, $11, $12, $12, $13)`

	_, err = r.exec(ctx, stmt,
		intent.ID,
		intent.Reference,
		intent.CustomerID,
		intent.CartID,
		intent.ShippingAddressID,
		intent.PaymentMethod,
		intent.Note,
		cartJSON,
		customerJSON,
		shippingJSON,
		intent.Status,
		intent.CreatedAt,
		intent.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrReferenceTaken
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create intent: %w", err)
	}
	return nil
}

func (r *IntentRepository) GetByReference(ctx context.Context, reference string) (*domain.CheckoutIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM checkout_intents WHERE reference = $1`

	intent, err := r.scanIntent(r.queryRow(ctx, query, reference))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get intent by reference: %w", err)
	}
	return &intent, nil
}

// GetApprovedForUpdate locks the intent row, filtered to APPROVED. Settlement
// serializes on this lock.
func (r *IntentRepository) GetApprovedForUpdate(ctx context.Context, id string) (domain.CheckoutIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM checkout_intents WHERE id = $1 AND status = 'APPROVED' FOR UPDATE`

	intent, err := r.scanIntent(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.CheckoutIntent{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.CheckoutIntent{}, domain.ErrIntentNotApproved
		}
		return domain.CheckoutIntent{}, fmt.Errorf("get approved intent: %w", err)
	}
	return intent, nil
}

// UpdateStatus records a provider transition. Terminal states never regress
// and re-applying the current state is a no-op, so replayed webhooks are
// harmless. The one transition allowed out of APPROVED is ERROR, recorded
// when settlement itself fails. The provider transaction id is kept once
// learned.
func (r *IntentRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus, providerTxID string, now time.Time) error {
	const stmt = `
UPDATE checkout_intents
SET status = $2,
	provider_tx_id = COALESCE(NULLIF($3, ''), provider_tx_id),
	updated_at = $4
WHERE id = $1 AND (status = 'PENDING' OR status = $2 OR (status = 'APPROVED' AND $2 = 'ERROR'))`

	tag, err := r.exec(ctx, stmt, id, status, providerTxID, now)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update intent status: %w", err)
	}
	// Zero rows means either an unknown intent or a terminal state that is
	// not re-entered; both are resolved by the caller's earlier lookup.
	_ = tag
	return nil
}

// ListPendingSince returns PENDING intents created after the cutoff, oldest
// first. Intents older than the cutoff are presumed abandoned.
func (r *IntentRepository) ListPendingSince(ctx context.Context, cutoff time.Time, limit int) ([]domain.CheckoutIntent, error) {
	query := `SELECT ` + intentColumns + `
FROM checkout_intents
WHERE status = 'PENDING' AND created_at >= $1
ORDER BY created_at
LIMIT $2`

	rows, err := r.query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending intents: %w", err)
	}
	defer rows.Close()

	var out []domain.CheckoutIntent
	for rows.Next() {
		intent, err := r.scanIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending intent: %w", err)
		}
		out = append(out, intent)
	}
	return out, rows.Err()
}

func (r *IntentRepository) scanIntent(row pgx.Row) (domain.CheckoutIntent, error) {
	var (
		intent            domain.CheckoutIntent
		shippingAddressID *string
		providerTxID      *string
		cartJSON          []byte
		customerJSON      []byte
		shippingJSON      []byte
	)
	err := row.Scan(
		&intent.ID,
		&intent.Reference,
		&intent.CustomerID,
		&intent.CartID,
		&shippingAddressID,
		&intent.PaymentMethod,
		&intent.Note,
		&cartJSON,
		&customerJSON,
		&shippingJSON,
		&intent.Status,
		&providerTxID,
		&intent.CreatedAt,
		&intent.UpdatedAt,
		&intent.ExpiresAt,
	)
	if err != nil {
		return domain.CheckoutIntent{}, err
	}
	if shippingAddressID != nil {
		intent.ShippingAddressID = *shippingAddressID
	}
	if providerTxID != nil {
		intent.ProviderTxID = *providerTxID
	}
	if err := json.Unmarshal(cartJSON, &intent.Cart); err != nil {
		return domain.CheckoutIntent{}, fmt.Errorf("decode cart snapshot: %w", err)
	}
	if err := intent.Cart.Validate(); err != nil {
		return domain.CheckoutIntent{}, err
	}
	if err := json.Unmarshal(customerJSON, &intent.Customer); err != nil {
		return domain.CheckoutIntent{}, fmt.Errorf("decode customer snapshot: %w", err)
	}
	if len(shippingJSON) > 0 {
		var shipping domain.ShippingSnapshot
		if err := json.Unmarshal(shippingJSON, &shipping); err != nil {
			return domain.CheckoutIntent{}, fmt.Errorf("decode shipping snapshot: %w", err)
		}
		intent.Shipping = &shipping
	}
	return intent, nil
}

func (r *IntentRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *IntentRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *IntentRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
