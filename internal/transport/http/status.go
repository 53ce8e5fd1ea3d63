package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
)

// StatusChecker resolves a payment reference to its current intent state,
// polling the provider when still pending.
type StatusChecker interface {
	Check(ctx context.Context, reference string) (domain.CheckoutIntent, error)
}

// HandlePaymentStatus returns the manual status-query endpoint.
func HandlePaymentStatus(svc StatusChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		reference, ok := parsePaymentPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		intent, err := svc.Check(r.Context(), reference)
		if err != nil {
			if errors.Is(err, domain.ErrIntentNotFound) {
				writeError(w, http.StatusNotFound, codeIntentNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, paymentStatusResponse{
			Reference:     intent.Reference,
			Status:        string(intent.Status),
			TransactionID: intent.ProviderTxID,
			ExpiresAt:     intent.ExpiresAt,
		})
	}
}

func parsePaymentPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] != "payments" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type paymentStatusResponse struct {
	Reference     string    `json:"reference"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}
