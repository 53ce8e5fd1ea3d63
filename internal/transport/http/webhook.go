package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
)

const (
	signatureHeader = "X-Event-Checksum"
	maxEventBytes   = 1 << 20
)

// WebhookVerifier checks an inbound event checksum against the shared
// events secret.
type WebhookVerifier interface {
	VerifyWebhook(payload map[string]any, supplied string, properties []string, timestamp int64) bool
}

// EventProcessor applies a normalized provider event.
type EventProcessor interface {
	Process(ctx context.Context, ev domain.ProviderEvent) error
}

// HandleProviderEvents returns the webhook endpoint. Only an invalid
// signature is rejected outright; once a signature checks out the provider
// always gets a 2xx, even when processing fails internally.
func HandleProviderEvents(events EventProcessor, verifier WebhookVerifier, skipVerification bool, logger *log.Logger) http.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "unreadable body")
			return
		}

		var event providerEventBody
		if err := json.Unmarshal(body, &event); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid event body")
			return
		}

		if !skipVerification {
			var payload map[string]any
			if err := json.Unmarshal(body, &payload); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid event body")
				return
			}
			// The header carries the checksum; older provider versions embed
			// it in the body instead.
			checksum := r.Header.Get(signatureHeader)
			if checksum == "" {
				checksum = event.Signature.Checksum
			}
			data, _ := payload["data"].(map[string]any)
			if !verifier.VerifyWebhook(data, checksum, event.Signature.Properties, event.Timestamp) {
				logger.Printf("WARN: rejected event %q with bad signature (tx %s)", event.Event, event.Data.Transaction.ID)
				writeError(w, http.StatusUnauthorized, codeSignatureInvalid, domain.ErrSignatureInvalid.Error())
				return
			}
		}

		ev := domain.ProviderEvent{
			TransactionID: event.Data.Transaction.ID,
			Reference:     event.Data.Transaction.Reference,
			Status:        domain.TransactionStatus(event.Data.Transaction.Status),
			AmountCents:   event.Data.Transaction.AmountInCents,
			Currency:      event.Data.Transaction.Currency,
			PaymentMethod: event.Data.Transaction.PaymentMethodType,
			Message:       event.Data.Transaction.StatusMessage,
		}

		if err := events.Process(r.Context(), ev); err != nil {
			if errors.Is(err, domain.ErrEventIncomplete) {
				writeError(w, http.StatusBadRequest, codeEventIncomplete, err.Error())
				return
			}
			// Internal trouble: acknowledge anyway so the provider stops
			// retrying; the processor already surfaced it to operators.
			logger.Printf("ERROR: process event for reference %s: %v", ev.Reference, err)
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
	}
}

type providerEventBody struct {
	Event string `json:"event"`
	Data  struct {
		Transaction struct {
			ID                string `json:"id"`
			Reference         string `json:"reference"`
			Status            string `json:"status"`
			AmountInCents     int64  `json:"amount_in_cents"`
			Currency          string `json:"currency"`
			PaymentMethodType string `json:"payment_method_type"`
			StatusMessage     string `json:"status_message"`
		} `json:"transaction"`
	} `json:"data"`
	Signature struct {
		Checksum   string   `json:"checksum"`
		Properties []string `json:"properties"`
	} `json:"signature"`
	Timestamp int64 `json:"timestamp"`
}
