package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
)

// OrderCanceller is the minimal interface needed to cancel a pending order.
type OrderCanceller interface {
	Cancel(ctx context.Context, orderID, reason string) (domain.Order, error)
}

// HandleCancelOrder returns an HTTP handler for cancelling pending orders.
func HandleCancelOrder(svc OrderCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orderID, ok := parseCancelPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var req cancelOrderRequest
		if r.Body != nil && r.ContentLength != 0 {
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
		}

		order, err := svc.Cancel(r.Context(), orderID, req.Reason)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrOrderNotFound):
				writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
			case errors.Is(err, domain.ErrOrderNotCancellable):
				writeError(w, http.StatusConflict, codeOrderNotCancellable, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, cancelOrderResponse{
			ID:        order.ID,
			Number:    order.Number,
			Status:    string(order.Status),
			UpdatedAt: order.UpdatedAt,
		})
	}
}

func parseCancelPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "orders" || parts[2] != "cancel" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type cancelOrderResponse struct {
	ID        string    `json:"id"`
	Number    string    `json:"order_number"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}
