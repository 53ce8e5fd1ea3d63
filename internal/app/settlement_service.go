package app

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/clock"
	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
	"github.com/google/uuid"
)

// SettlementRepository is every store operation one confirmation or
// cancellation transaction touches.
type SettlementRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetApprovedForUpdate(ctx context.Context, id string) (domain.CheckoutIntent, error)
	UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus, providerTxID string, now time.Time) error
	GetByReferenceForUpdate(ctx context.Context, reference string) (*domain.Order, error)
	GetForUpdate(ctx context.Context, id string) (domain.Order, error)
	Items(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	NextOrderNumber(ctx context.Context, day time.Time) (string, error)
	Create(ctx context.Context, order domain.Order) error
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, now time.Time) error
	MarkCancelled(ctx context.Context, id, reason string, now time.Time) error
	GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error)
	AdjustStock(ctx context.Context, productID string, delta int) error
	DeactivateCart(ctx context.Context, cartID string) error
}

// ShippingQuoter prices delivery for a subtotal and destination city. Pure.
type ShippingQuoter interface {
	Cost(subtotalCents int64, city string) int64
}

// Notifier delivers order state changes. Implementations must never block
// settlement on delivery failure.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, n domain.OrderNotification)
}

// SettlementService is the one place an approved intent becomes an order.
// The webhook ingestor, the reconciliation sweeper and the manual status
// query all call Confirm; none of them creates orders any other way.
type SettlementService struct {
	repo     SettlementRepository
	shipping ShippingQuoter
	notifier Notifier
	clock    clock.Clock
	logger   *log.Logger
}

func NewSettlementService(repo SettlementRepository, shipping ShippingQuoter, notifier Notifier, clk clock.Clock, logger *log.Logger) *SettlementService {
	if logger == nil {
		logger = log.Default()
	}
	return &SettlementService{
		repo:     repo,
		shipping: shipping,
		notifier: notifier,
		clock:    clk,
		logger:   logger,
	}
}

// Confirm turns an APPROVED intent into exactly one order. Safe to call any
// number of times, concurrently or not: the row locks on the intent and on
// any order with the same payment reference serialize callers, and a replay
// returns the already-created order.
func (s *SettlementService) Confirm(ctx context.Context, intentID string) (domain.Order, error) {
	now := s.clock.Now()
	var (
		out    domain.Order
		notify *domain.OrderNotification
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		intent, err := s.repo.GetApprovedForUpdate(txCtx, intentID)
		if err != nil {
			return err
		}

		existing, err := s.repo.GetByReferenceForUpdate(txCtx, intent.Reference)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Status == domain.OrderPending {
				if err := s.repo.UpdateOrderStatus(txCtx, existing.ID, domain.OrderConfirmed, now); err != nil {
					return err
				}
				existing.Status = domain.OrderConfirmed
				notify = &domain.OrderNotification{
					CustomerID:  existing.CustomerID,
					OrderID:     existing.ID,
					OrderNumber: existing.Number,
					NewStatus:   string(existing.Status),
				}
			}
			out = *existing
			return nil
		}

		order, err := s.createFromSnapshot(txCtx, intent, now)
		if err != nil {
			// A concurrent settlement can win the insert race between our
			// reference lookup and the insert; hand back its order.
			if errors.Is(err, domain.ErrDuplicateSettlement) {
				winner, lookupErr := s.repo.GetByReferenceForUpdate(txCtx, intent.Reference)
				if lookupErr != nil {
					return lookupErr
				}
				if winner != nil {
					out = *winner
					return nil
				}
			}
			return err
		}

		out = order
		notify = &domain.OrderNotification{
			CustomerID:  order.CustomerID,
			OrderID:     order.ID,
			OrderNumber: order.Number,
			NewStatus:   string(order.Status),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrStockConflict) {
			s.markIntentError(ctx, intentID, now)
		}
		return domain.Order{}, err
	}

	if notify != nil {
		s.notifier.OrderStatusChanged(ctx, *notify)
	}
	return out, nil
}

// createFromSnapshot is the only stock-decrementing path. It runs entirely
// inside the caller's transaction: product locks, stock and price checks,
// order number, order + items, stock decrement, cart deactivation.
func (s *SettlementService) createFromSnapshot(ctx context.Context, intent domain.CheckoutIntent, now time.Time) (domain.Order, error) {
	lines := make([]domain.CartLine, len(intent.Cart.Lines))
	copy(lines, intent.Cart.Lines)
	// Lock products in a stable order so overlapping settlements cannot
	// deadlock on each other.
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	for _, line := range lines {
		product, err := s.repo.GetProductForUpdate(ctx, line.ProductID)
		if err != nil {
			return domain.Order{}, err
		}
		if !product.Active || product.Stock < line.Quantity {
			return domain.Order{}, domain.ErrStockConflict
		}
		if product.EffectivePriceCents() != line.UnitPriceCents {
			// The snapshot raced a price edit. Failing beats silently
			// charging one price and recording another.
			return domain.Order{}, domain.ErrStockConflict
		}
	}

	number, err := s.repo.NextOrderNumber(ctx, now)
	if err != nil {
		return domain.Order{}, err
	}

	subtotal := intent.Cart.SubtotalCents()
	var city string
	if intent.Shipping != nil {
		city = intent.Shipping.City
	}
	shippingCost := s.shipping.Cost(subtotal, city)

	order := domain.Order{
		ID:                uuid.NewString(),
		Number:            number,
		CustomerID:        intent.CustomerID,
		ShippingAddressID: intent.ShippingAddressID,
		Status:            domain.OrderPending,
		SubtotalCents:     subtotal,
		DiscountCents:     0,
		ShippingCents:     shippingCost,
		TaxCents:          0,
		PaymentMethod:     intent.PaymentMethod,
		PaymentReference:  intent.Reference,
		Note:              intent.Note,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	order.TotalCents = order.SubtotalCents - order.DiscountCents + order.ShippingCents + order.TaxCents
	for _, line := range lines {
		order.Items = append(order.Items, domain.OrderItem{
			ID:             uuid.NewString(),
			OrderID:        order.ID,
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			SubtotalCents:  line.SubtotalCents,
		})
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return domain.Order{}, err
	}
	for _, line := range lines {
		if err := s.repo.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
			return domain.Order{}, err
		}
	}
	if err := s.repo.DeactivateCart(ctx, intent.CartID); err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.UpdateOrderStatus(ctx, order.ID, domain.OrderConfirmed, now); err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderConfirmed
	return order, nil
}

// markIntentError records a failed settlement outside the rolled-back
// transaction so the conflict is visible to operators and the sweeper stops
// retrying it.
func (s *SettlementService) markIntentError(ctx context.Context, intentID string, now time.Time) {
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.UpdateStatus(txCtx, intentID, domain.TransactionError, "", now)
	})
	if err != nil {
		s.logger.Printf("ERROR: mark intent %s as error: %v", intentID, err)
	}
}

// Cancel reverses a pending order: stock goes back line by line and the
// order flips to cancelada, atomically. Cancelling an already-cancelled
// order is a no-op.
func (s *SettlementService) Cancel(ctx context.Context, orderID, reason string) (domain.Order, error) {
	now := s.clock.Now()
	var (
		out    domain.Order
		notify *domain.OrderNotification
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.Status == domain.OrderCancelled {
			out = order
			return nil
		}
		if order.Status != domain.OrderPending {
			return domain.ErrOrderNotCancellable
		}

		items, err := s.repo.Items(txCtx, order.ID)
		if err != nil {
			return err
		}
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
		for _, item := range items {
			if err := s.repo.AdjustStock(txCtx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := s.repo.MarkCancelled(txCtx, order.ID, reason, now); err != nil {
			return err
		}
		order.Status = domain.OrderCancelled
		order.UpdatedAt = now
		out = order
		notify = &domain.OrderNotification{
			CustomerID:  order.CustomerID,
			OrderID:     order.ID,
			OrderNumber: order.Number,
			NewStatus:   string(order.Status),
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if notify != nil {
		s.notifier.OrderStatusChanged(ctx, *notify)
	}
	return out, nil
}
