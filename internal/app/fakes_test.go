package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
)

// memStore is an in-memory SettlementRepository. WithTx holds one lock for
// the whole callback, which mirrors how row locks serialize concurrent
// settlement transactions.
type memStore struct {
	mu sync.Mutex

	intents    map[string]domain.CheckoutIntent
	orders     map[string]domain.Order
	ordersRef  map[string]string
	orderItems map[string][]domain.OrderItem
	products   map[string]domain.Product
	cartActive map[string]bool
	counter    int

	// createHook, when set, runs instead of the normal insert.
	createHook func(domain.Order) error
}

func newMemStore() *memStore {
	return &memStore{
		intents:    make(map[string]domain.CheckoutIntent),
		orders:     make(map[string]domain.Order),
		ordersRef:  make(map[string]string),
		orderItems: make(map[string][]domain.OrderItem),
		products:   make(map[string]domain.Product),
		cartActive: make(map[string]bool),
	}
}

func (m *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

func (m *memStore) GetApprovedForUpdate(_ context.Context, id string) (domain.CheckoutIntent, error) {
	intent, ok := m.intents[id]
	if !ok || intent.Status != domain.TransactionApproved {
		return domain.CheckoutIntent{}, domain.ErrIntentNotApproved
	}
	return intent, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id string, status domain.TransactionStatus, providerTxID string, now time.Time) error {
	intent, ok := m.intents[id]
	if !ok {
		return nil
	}
	allowed := intent.Status == domain.TransactionPending ||
		intent.Status == status ||
		(intent.Status == domain.TransactionApproved && status == domain.TransactionError)
	if !allowed {
		return nil
	}
	intent.Status = status
	if providerTxID != "" {
		intent.ProviderTxID = providerTxID
	}
	intent.UpdatedAt = now
	m.intents[id] = intent
	return nil
}

func (m *memStore) GetByReferenceForUpdate(_ context.Context, reference string) (*domain.Order, error) {
	id, ok := m.ordersRef[reference]
	if !ok {
		return nil, nil
	}
	order := m.orders[id]
	return &order, nil
}

func (m *memStore) GetForUpdate(_ context.Context, id string) (domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (m *memStore) Items(_ context.Context, orderID string) ([]domain.OrderItem, error) {
	return m.orderItems[orderID], nil
}

func (m *memStore) NextOrderNumber(_ context.Context, day time.Time) (string, error) {
	m.counter++
	return fmt.Sprintf("ORD-%s-%04d", day.Format("20060102"), m.counter), nil
}

func (m *memStore) Create(_ context.Context, order domain.Order) error {
	if m.createHook != nil {
		return m.createHook(order)
	}
	return m.insertOrder(order)
}

func (m *memStore) insertOrder(order domain.Order) error {
	if _, taken := m.ordersRef[order.PaymentReference]; taken {
		return domain.ErrDuplicateSettlement
	}
	m.orders[order.ID] = order
	m.ordersRef[order.PaymentReference] = order.ID
	m.orderItems[order.ID] = order.Items
	return nil
}

func (m *memStore) UpdateOrderStatus(_ context.Context, id string, status domain.OrderStatus, now time.Time) error {
	order, ok := m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = now
	m.orders[id] = order
	return nil
}

func (m *memStore) MarkCancelled(_ context.Context, id, reason string, now time.Time) error {
	order, ok := m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = domain.OrderCancelled
	if reason != "" {
		order.Note = order.Note + " " + reason
	}
	order.UpdatedAt = now
	m.orders[id] = order
	return nil
}

func (m *memStore) GetProductForUpdate(_ context.Context, productID string) (domain.Product, error) {
	product, ok := m.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrStockConflict
	}
	return product, nil
}

func (m *memStore) AdjustStock(_ context.Context, productID string, delta int) error {
	product, ok := m.products[productID]
	if !ok {
		return domain.ErrStockConflict
	}
	if product.Stock+delta < 0 {
		return domain.ErrStockConflict
	}
	product.Stock += delta
	m.products[productID] = product
	return nil
}

func (m *memStore) DeactivateCart(_ context.Context, cartID string) error {
	m.cartActive[cartID] = false
	return nil
}

// intentStatus reads an intent's state outside any transaction.
func (m *memStore) intentStatus(id string) domain.TransactionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intents[id].Status
}

func (m *memStore) stock(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[productID].Stock
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// GetByReference satisfies WebhookIntentStore on top of the same data.
func (m *memStore) GetByReference(_ context.Context, reference string) (*domain.CheckoutIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, intent := range m.intents {
		if intent.Reference == reference {
			out := intent
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListPendingSince(_ context.Context, cutoff time.Time, limit int) ([]domain.CheckoutIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CheckoutIntent
	for _, intent := range m.intents {
		if intent.Status == domain.TransactionPending && !intent.CreatedAt.Before(cutoff) {
			out = append(out, intent)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// fixedQuoter charges a flat fee whenever a destination city is present.
type fixedQuoter struct {
	cents int64
}

func (q fixedQuoter) Cost(_ int64, city string) int64 {
	if city == "" {
		return 0
	}
	return q.cents
}

// recordingNotifier captures notifications in order.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.OrderNotification
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, notification domain.OrderNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}
