package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/clock"
	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
	"github.com/google/uuid"
)

const defaultIntentTTL = 15 * time.Minute

// CartReader is the cart service boundary: the active cart and a live
// stock/price re-check right before an intent is created.
type CartReader interface {
	GetActiveCart(ctx context.Context, customerID string) (*domain.Cart, error)
	ValidateForCheckout(ctx context.Context, cart *domain.Cart) (domain.CartValidation, error)
}

type IntentRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, intent domain.CheckoutIntent) error
	GetByReference(ctx context.Context, reference string) (*domain.CheckoutIntent, error)
}

// IntentService stages checkout attempts. One intent per attempt; the
// reference it mints is the token the provider echoes back for the rest of
// the payment's life.
type IntentService struct {
	carts      CartReader
	shipping   ShippingQuoter
	repo       IntentRepository
	clock      clock.Clock
	defaultTTL time.Duration
	methodTTLs map[string]time.Duration
}

type IntentServiceOption func(*IntentService)

// WithIntentTTL overrides the default expiry for new intents.
func WithIntentTTL(d time.Duration) IntentServiceOption {
	return func(s *IntentService) {
		if d > 0 {
			s.defaultTTL = d
		}
	}
}

// WithMethodTTL sets a payment-method-specific expiry, e.g. bank transfers
// that allow a longer window than cards.
func WithMethodTTL(method string, d time.Duration) IntentServiceOption {
	return func(s *IntentService) {
		if d > 0 {
			s.methodTTLs[strings.ToUpper(method)] = d
		}
	}
}

func NewIntentService(carts CartReader, shipping ShippingQuoter, repo IntentRepository, clk clock.Clock, opts ...IntentServiceOption) *IntentService {
	svc := &IntentService{
		carts:      carts,
		shipping:   shipping,
		repo:       repo,
		clock:      clk,
		defaultTTL: defaultIntentTTL,
		methodTTLs: make(map[string]time.Duration),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type BeginCheckoutInput struct {
	CustomerID        string
	PaymentMethod     string
	Note              string
	ShippingAddressID string
	Customer          domain.CustomerSnapshot
	Shipping          *domain.ShippingSnapshot
}

type BeginCheckoutResult struct {
	Intent domain.CheckoutIntent
	// AmountCents is the total the provider will charge: snapshot subtotal
	// plus shipping.
	AmountCents int64
}

// BeginCheckout snapshots the buyer's active cart into a new PENDING intent.
func (s *IntentService) BeginCheckout(ctx context.Context, in BeginCheckoutInput) (BeginCheckoutResult, error) {
	if in.CustomerID == "" {
		return BeginCheckoutResult{}, domain.ErrInvalidID
	}
	if in.PaymentMethod == "" {
		return BeginCheckoutResult{}, domain.ErrPaymentMethodRequired
	}
	if err := in.Customer.Validate(); err != nil {
		return BeginCheckoutResult{}, err
	}
	if in.Shipping != nil && !in.Shipping.Complete() {
		// An incomplete block would be silently dropped at redirect time;
		// refuse it up front instead.
		return BeginCheckoutResult{}, fmt.Errorf("%w: incomplete shipping block", domain.ErrInvalidSnapshot)
	}

	cart, err := s.carts.GetActiveCart(ctx, in.CustomerID)
	if err != nil {
		return BeginCheckoutResult{}, err
	}
	if cart == nil {
		return BeginCheckoutResult{}, domain.ErrCartNotFound
	}
	if len(cart.Items) == 0 {
		return BeginCheckoutResult{}, domain.ErrCartEmpty
	}

	validation, err := s.carts.ValidateForCheckout(ctx, cart)
	if err != nil {
		return BeginCheckoutResult{}, err
	}
	if !validation.IsValid {
		return BeginCheckoutResult{}, fmt.Errorf("%w: %s", domain.ErrCartInvalid, strings.Join(validation.Errors, "; "))
	}

	now := s.clock.Now()
	snapshot := domain.CartSnapshot{CartID: cart.ID}
	for _, item := range cart.Items {
		snapshot.Lines = append(snapshot.Lines, domain.CartLine{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			SubtotalCents:  int64(item.Quantity) * item.UnitPriceCents,
		})
	}
	if err := snapshot.Validate(); err != nil {
		return BeginCheckoutResult{}, err
	}

	intent := domain.CheckoutIntent{
		ID:                uuid.NewString(),
		Reference:         newReference(),
		CustomerID:        in.CustomerID,
		CartID:            cart.ID,
		ShippingAddressID: in.ShippingAddressID,
		PaymentMethod:     strings.ToUpper(in.PaymentMethod),
		Note:              in.Note,
		Cart:              snapshot,
		Customer:          in.Customer,
		Shipping:          in.Shipping,
		Status:            domain.TransactionPending,
		CreatedAt:         now,
		UpdatedAt:         now,
		ExpiresAt:         now.Add(s.ttlFor(in.PaymentMethod)),
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, intent)
	})
	if err != nil {
		return BeginCheckoutResult{}, err
	}

	subtotal := snapshot.SubtotalCents()
	var city string
	if in.Shipping != nil {
		city = in.Shipping.City
	}
	return BeginCheckoutResult{
		Intent:      intent,
		AmountCents: subtotal + s.shipping.Cost(subtotal, city),
	}, nil
}

// GetByReference exposes intent lookup to the status endpoint.
func (s *IntentService) GetByReference(ctx context.Context, reference string) (*domain.CheckoutIntent, error) {
	return s.repo.GetByReference(ctx, reference)
}

func (s *IntentService) ttlFor(method string) time.Duration {
	if ttl, ok := s.methodTTLs[strings.ToUpper(method)]; ok {
		return ttl
	}
	return s.defaultTTL
}

// newReference mints the externally-visible payment token: unique, never
// reused, and within the provider's length and character limits.
func newReference() string {
	return "CAT-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
