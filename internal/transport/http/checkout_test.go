package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/app"
	"github.com/Noushen23/CatalogoAPP-sub000/internal/checkout"
	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
)

func TestHandleBeginCheckout(t *testing.T) {
	t.Parallel()

	expiresAt := time.Date(2025, 6, 1, 10, 15, 0, 0, time.UTC)
	result := app.BeginCheckoutResult{
		Intent: domain.CheckoutIntent{
			ID:        "intent-1",
			Reference: "CAT-abc123",
			Status:    domain.TransactionPending,
			ExpiresAt: expiresAt,
		},
		AmountCents: 118000,
	}

	okBody := `{"customer_id":"customer-1","payment_method":"CARD","customer":{"email":"ana@example.com","full_name":"Ana Gomez"}}`

	tests := []struct {
		name           string
		method         string
		body           string
		serviceErr     error
		buildErr       error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "created",
			method:         http.MethodPost,
			body:           okBody,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"reference":"CAT-abc123"`,
		},
		{
			name:           "method not allowed",
			method:         http.MethodGet,
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "invalid body",
			method:         http.MethodPost,
			body:           `{"customer_id":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown field rejected",
			method:         http.MethodPost,
			body:           `{"customer_id":"customer-1","surprise":true}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing customer id",
			method:         http.MethodPost,
			body:           `{"payment_method":"CARD"}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeMissingRequiredField,
		},
		{
			name:           "payment method required",
			method:         http.MethodPost,
			body:           okBody,
			serviceErr:     domain.ErrPaymentMethodRequired,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "cart not found",
			method:         http.MethodPost,
			body:           okBody,
			serviceErr:     domain.ErrCartNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "cart empty",
			method:         http.MethodPost,
			body:           okBody,
			serviceErr:     domain.ErrCartEmpty,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "cart failed the live re-check",
			method:         http.MethodPost,
			body:           okBody,
			serviceErr:     domain.ErrCartInvalid,
			expectedStatus: http.StatusConflict,
			expectedSubstr: codeCartInvalid,
		},
		{
			name:           "redirect cannot be built",
			method:         http.MethodPost,
			body:           okBody,
			buildErr:       domain.ErrInvalidAmount,
			expectedStatus: http.StatusBadGateway,
			expectedSubstr: codeCheckoutUnavailable,
		},
		{
			name:           "internal error",
			method:         http.MethodPost,
			body:           okBody,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCheckoutStarter{result: result, err: tt.serviceErr}
			buildURL := func(in checkout.Input) (string, error) {
				if tt.buildErr != nil {
					return "", tt.buildErr
				}
				return "https://checkout.example.com/p/?reference=" + in.Reference, nil
			}

			req := httptest.NewRequest(tt.method, "/checkout", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			HandleBeginCheckout(svc, buildURL).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (%s)", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}

	t.Run("redirect input carries the intent", func(t *testing.T) {
		t.Parallel()
		svc := &stubCheckoutStarter{result: result}
		var got checkout.Input
		buildURL := func(in checkout.Input) (string, error) {
			got = in
			return "https://checkout.example.com/p/", nil
		}

		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(okBody))
		rec := httptest.NewRecorder()
		HandleBeginCheckout(svc, buildURL).ServeHTTP(rec, req)

		if got.Reference != "CAT-abc123" {
			t.Errorf("reference = %q", got.Reference)
		}
		if got.AmountCents != 118000 {
			t.Errorf("amount = %d", got.AmountCents)
		}
		if got.ExpiresAt == nil || !got.ExpiresAt.Equal(expiresAt) {
			t.Errorf("expires at = %v", got.ExpiresAt)
		}
	})
}

type stubCheckoutStarter struct {
	result app.BeginCheckoutResult
	err    error
}

func (s *stubCheckoutStarter) BeginCheckout(_ context.Context, _ app.BeginCheckoutInput) (app.BeginCheckoutResult, error) {
	return s.result, s.err
}
