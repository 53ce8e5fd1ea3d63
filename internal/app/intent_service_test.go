package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/clock"
	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
)

type fakeCartReader struct {
	cart       *domain.Cart
	cartErr    error
	validation domain.CartValidation
}

func (r *fakeCartReader) GetActiveCart(_ context.Context, _ string) (*domain.Cart, error) {
	return r.cart, r.cartErr
}

func (r *fakeCartReader) ValidateForCheckout(_ context.Context, _ *domain.Cart) (domain.CartValidation, error) {
	return r.validation, nil
}

type fakeIntentRepo struct {
	created   []domain.CheckoutIntent
	createErr error
}

func (r *fakeIntentRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *fakeIntentRepo) Create(_ context.Context, intent domain.CheckoutIntent) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, intent)
	return nil
}

func (r *fakeIntentRepo) GetByReference(_ context.Context, reference string) (*domain.CheckoutIntent, error) {
	for _, intent := range r.created {
		if intent.Reference == reference {
			out := intent
			return &out, nil
		}
	}
	return nil, nil
}

func validCart() *domain.Cart {
	return &domain.Cart{
		ID:         "cart-1",
		CustomerID: "customer-1",
		Active:     true,
		Items: []domain.CartItem{
			{ProductID: "prod-a", Quantity: 2, UnitPriceCents: 30000},
			{ProductID: "prod-b", Quantity: 1, UnitPriceCents: 40000},
		},
	}
}

func validInput() BeginCheckoutInput {
	return BeginCheckoutInput{
		CustomerID:    "customer-1",
		PaymentMethod: "card",
		Customer:      domain.CustomerSnapshot{Email: "ana@example.com", FullName: "Ana Gomez"},
		Shipping:      &domain.ShippingSnapshot{AddressLine1: "Calle 1", Country: "CO", City: "Bogota", PhoneNumber: "300", Region: "Cund"},
	}
}

func TestBeginCheckout(t *testing.T) {
	ctx := context.Background()

	newService := func(carts *fakeCartReader, repo *fakeIntentRepo, opts ...IntentServiceOption) *IntentService {
		return NewIntentService(carts, fixedQuoter{cents: 18000}, repo, clock.NewFixed(testTime), opts...)
	}

	t.Run("snapshots the cart into a pending intent", func(t *testing.T) {
		carts := &fakeCartReader{cart: validCart(), validation: domain.CartValidation{IsValid: true}}
		repo := &fakeIntentRepo{}
		svc := newService(carts, repo)

		result, err := svc.BeginCheckout(ctx, validInput())
		if err != nil {
			t.Fatalf("begin checkout: %v", err)
		}
		intent := result.Intent
		if intent.Status != domain.TransactionPending {
			t.Errorf("status = %s, want PENDING", intent.Status)
		}
		if intent.PaymentMethod != "CARD" {
			t.Errorf("payment method = %s, want CARD", intent.PaymentMethod)
		}
		if intent.CartID != "cart-1" {
			t.Errorf("cart id = %s", intent.CartID)
		}
		if len(intent.Cart.Lines) != 2 {
			t.Fatalf("lines = %d, want 2", len(intent.Cart.Lines))
		}
		if intent.Cart.Lines[0].SubtotalCents != 60000 {
			t.Errorf("line subtotal = %d, want 60000", intent.Cart.Lines[0].SubtotalCents)
		}
		if result.AmountCents != 118000 {
			t.Errorf("amount = %d, want 118000 (100000 subtotal + 18000 shipping)", result.AmountCents)
		}
		if intent.ExpiresAt != testTime.Add(15*time.Minute) {
			t.Errorf("expires at = %s", intent.ExpiresAt)
		}
		if len(repo.created) != 1 {
			t.Errorf("created = %d intents", len(repo.created))
		}
	})

	t.Run("references are unique and well-formed", func(t *testing.T) {
		carts := &fakeCartReader{cart: validCart(), validation: domain.CartValidation{IsValid: true}}
		repo := &fakeIntentRepo{}
		svc := newService(carts, repo)

		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			result, err := svc.BeginCheckout(ctx, validInput())
			if err != nil {
				t.Fatalf("begin checkout %d: %v", i, err)
			}
			ref := result.Intent.Reference
			if seen[ref] {
				t.Fatalf("reference %s minted twice", ref)
			}
			seen[ref] = true
			if !strings.HasPrefix(ref, "CAT-") || len(ref) > 64 {
				t.Fatalf("malformed reference %q", ref)
			}
		}
	})

	t.Run("method specific expiry", func(t *testing.T) {
		carts := &fakeCartReader{cart: validCart(), validation: domain.CartValidation{IsValid: true}}
		repo := &fakeIntentRepo{}
		svc := newService(carts, repo, WithMethodTTL("BANCOLOMBIA_TRANSFER", 30*time.Minute))

		in := validInput()
		in.PaymentMethod = "bancolombia_transfer"
		result, err := svc.BeginCheckout(ctx, in)
		if err != nil {
			t.Fatalf("begin checkout: %v", err)
		}
		if result.Intent.ExpiresAt != testTime.Add(30*time.Minute) {
			t.Errorf("expires at = %s, want +30m", result.Intent.ExpiresAt)
		}
	})

	t.Run("no shipping means no shipping charge", func(t *testing.T) {
		carts := &fakeCartReader{cart: validCart(), validation: domain.CartValidation{IsValid: true}}
		svc := newService(carts, &fakeIntentRepo{})

		in := validInput()
		in.Shipping = nil
		result, err := svc.BeginCheckout(ctx, in)
		if err != nil {
			t.Fatalf("begin checkout: %v", err)
		}
		if result.AmountCents != 100000 {
			t.Errorf("amount = %d, want 100000", result.AmountCents)
		}
	})

	t.Run("incomplete shipping block rejected", func(t *testing.T) {
		carts := &fakeCartReader{cart: validCart(), validation: domain.CartValidation{IsValid: true}}
		svc := newService(carts, &fakeIntentRepo{})

		in := validInput()
		in.Shipping = &domain.ShippingSnapshot{City: "Bogota"}
		if _, err := svc.BeginCheckout(ctx, in); !errors.Is(err, domain.ErrInvalidSnapshot) {
			t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
		}
	})

	t.Run("input validation", func(t *testing.T) {
		carts := &fakeCartReader{cart: validCart(), validation: domain.CartValidation{IsValid: true}}
		svc := newService(carts, &fakeIntentRepo{})

		in := validInput()
		in.CustomerID = ""
		if _, err := svc.BeginCheckout(ctx, in); !errors.Is(err, domain.ErrInvalidID) {
			t.Errorf("missing customer: %v", err)
		}

		in = validInput()
		in.PaymentMethod = ""
		if _, err := svc.BeginCheckout(ctx, in); !errors.Is(err, domain.ErrPaymentMethodRequired) {
			t.Errorf("missing method: %v", err)
		}

		in = validInput()
		in.Customer = domain.CustomerSnapshot{}
		if _, err := svc.BeginCheckout(ctx, in); !errors.Is(err, domain.ErrInvalidSnapshot) {
			t.Errorf("missing buyer snapshot: %v", err)
		}
	})

	t.Run("missing cart", func(t *testing.T) {
		svc := newService(&fakeCartReader{}, &fakeIntentRepo{})
		if _, err := svc.BeginCheckout(ctx, validInput()); !errors.Is(err, domain.ErrCartNotFound) {
			t.Fatalf("expected ErrCartNotFound, got %v", err)
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		cart := validCart()
		cart.Items = nil
		svc := newService(&fakeCartReader{cart: cart}, &fakeIntentRepo{})
		if _, err := svc.BeginCheckout(ctx, validInput()); !errors.Is(err, domain.ErrCartEmpty) {
			t.Fatalf("expected ErrCartEmpty, got %v", err)
		}
	})

	t.Run("cart failing the live re-check", func(t *testing.T) {
		carts := &fakeCartReader{
			cart:       validCart(),
			validation: domain.CartValidation{IsValid: false, Errors: []string{"prod-a: only 1 left"}},
		}
		svc := newService(carts, &fakeIntentRepo{})

		_, err := svc.BeginCheckout(ctx, validInput())
		if !errors.Is(err, domain.ErrCartInvalid) {
			t.Fatalf("expected ErrCartInvalid, got %v", err)
		}
		if !strings.Contains(err.Error(), "only 1 left") {
			t.Errorf("validation detail lost: %v", err)
		}
	})

	t.Run("reference collision surfaces", func(t *testing.T) {
		carts := &fakeCartReader{cart: validCart(), validation: domain.CartValidation{IsValid: true}}
		repo := &fakeIntentRepo{createErr: domain.ErrReferenceTaken}
		svc := newService(carts, repo)

		if _, err := svc.BeginCheckout(ctx, validInput()); !errors.Is(err, domain.ErrReferenceTaken) {
			t.Fatalf("expected ErrReferenceTaken, got %v", err)
		}
	})
}
