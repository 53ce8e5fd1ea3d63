package postgres

import (
	"context"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettlementRepository exposes the intent and order operations the settlement
// coordinator needs inside one transaction.
type SettlementRepository struct {
	*IntentRepository
	*OrderRepository
	pool *pgxpool.Pool
}

func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{
		IntentRepository: NewIntentRepository(pool),
		OrderRepository:  NewOrderRepository(pool),
		pool:             pool,
	}
}

func (r *SettlementRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// Both embedded repositories expose UpdateStatus and Create; the explicit
// forwarders below pin which one each name means here.

func (r *SettlementRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus, providerTxID string, now time.Time) error {
	return r.IntentRepository.UpdateStatus(ctx, id, status, providerTxID, now)
}

func (r *SettlementRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, now time.Time) error {
	return r.OrderRepository.UpdateStatus(ctx, id, status, now)
}

func (r *SettlementRepository) Create(ctx context.Context, order domain.Order) error {
	return r.OrderRepository.Create(ctx, order)
}
