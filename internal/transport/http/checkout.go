package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/app"
	"github.com/Noushen23/CatalogoAPP-sub000/internal/checkout"
	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
)

// CheckoutStarter is the minimal interface needed to begin a checkout.
type CheckoutStarter interface {
	BeginCheckout(ctx context.Context, in app.BeginCheckoutInput) (app.BeginCheckoutResult, error)
}

// RedirectBuilder turns an intent into the hosted-checkout URL.
type RedirectBuilder func(in checkout.Input) (string, error)

// HandleBeginCheckout returns an HTTP handler that stages a checkout intent
// and hands the buyer the provider redirect.
func HandleBeginCheckout(svc CheckoutStarter, buildURL RedirectBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req beginCheckoutRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.CustomerID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "customer_id is required")
			return
		}

		res, err := svc.BeginCheckout(r.Context(), app.BeginCheckoutInput{
			CustomerID:        req.CustomerID,
			PaymentMethod:     req.PaymentMethod,
			Note:              req.Note,
			ShippingAddressID: req.ShippingAddressID,
			Customer:          req.Customer,
			Shipping:          req.Shipping,
		})
		if err != nil {
			writeCheckoutError(w, err)
			return
		}

		expiresAt := res.Intent.ExpiresAt
		redirectURL, err := buildURL(checkout.Input{
			Reference:   res.Intent.Reference,
			AmountCents: res.AmountCents,
			ExpiresAt:   &expiresAt,
			Customer:    res.Intent.Customer,
			Shipping:    res.Intent.Shipping,
		})
		if err != nil {
			// The intent exists but the redirect cannot be built; the buyer
			// gets a generic failure, operators get the cause.
			writeError(w, http.StatusBadGateway, codeCheckoutUnavailable, "payment could not be started")
			return
		}

		writeJSON(w, http.StatusCreated, beginCheckoutResponse{
			Reference:   res.Intent.Reference,
			RedirectURL: redirectURL,
			AmountCents: res.AmountCents,
			ExpiresAt:   res.Intent.ExpiresAt,
		})
	}
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrPaymentMethodRequired):
		writeError(w, http.StatusBadRequest, codePaymentMethodMissing, err.Error())
	case errors.Is(err, domain.ErrInvalidSnapshot):
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
	case errors.Is(err, domain.ErrCartNotFound):
		writeError(w, http.StatusNotFound, codeCartNotFound, err.Error())
	case errors.Is(err, domain.ErrCartEmpty):
		writeError(w, http.StatusConflict, codeCartEmpty, err.Error())
	case errors.Is(err, domain.ErrCartInvalid):
		writeError(w, http.StatusConflict, codeCartInvalid, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type beginCheckoutRequest struct {
	CustomerID        string                   `json:"customer_id"`
	PaymentMethod     string                   `json:"payment_method"`
	Note              string                   `json:"note"`
	ShippingAddressID string                   `json:"shipping_address_id"`
	Customer          domain.CustomerSnapshot  `json:"customer"`
	Shipping          *domain.ShippingSnapshot `json:"shipping"`
}

type beginCheckoutResponse struct {
	Reference   string    `json:"reference"`
	RedirectURL string    `json:"redirect_url"`
	AmountCents int64     `json:"amount_in_cents"`
	ExpiresAt   time.Time `json:"expires_at"`
}
