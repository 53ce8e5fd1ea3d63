package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeMissingRequiredField = "missing_required_field"
	codeInvalidID            = "invalid_id"
	codePaymentMethodMissing = "payment_method_required"
	codeCartNotFound         = "cart_not_found"
	codeCartEmpty            = "cart_empty"
	codeCartInvalid          = "cart_invalid"
	codeCheckoutUnavailable  = "checkout_unavailable"
	codeIntentNotFound       = "payment_not_found"
	codeOrderNotFound        = "order_not_found"
	codeOrderNotCancellable  = "order_not_cancellable"
	codeSignatureInvalid     = "signature_invalid"
	codeEventIncomplete      = "event_incomplete"
	codeForbidden            = "forbidden"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
