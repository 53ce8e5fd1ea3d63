// Package signature computes and verifies the integrity digests shared with
// the hosted-checkout provider.
package signature

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
)

// Engine signs and verifies with a single shared secret. The checkout
// redirect and inbound webhooks use different secrets, so each gets its own
// engine.
type Engine struct {
	secret string
}

// NewEngine fails rather than sign with an empty secret.
func NewEngine(secret string) (*Engine, error) {
	if secret == "" {
		return nil, domain.ErrSecretRequired
	}
	return &Engine{secret: secret}, nil
}

// Sign binds (reference, amount, currency, optional expiry) to the secret.
// The amount must be the exact integer minor-unit value sent to the provider.
func (e *Engine) Sign(reference string, amountCents int64, currency string, expiresAt *time.Time) string {
	var b strings.Builder
	b.WriteString(reference)
	b.WriteString(strconv.FormatInt(amountCents, 10))
	b.WriteString(currency)
	if expiresAt != nil {
		b.WriteString(expiresAt.UTC().Format(time.RFC3339))
	}
	b.WriteString(e.secret)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// VerifyWebhook recomputes the checksum from the payload properties the
// provider names, appends the event timestamp and the secret, and compares in
// constant time. Any missing property fails closed.
func (e *Engine) VerifyWebhook(payload map[string]any, supplied string, properties []string, timestamp int64) bool {
	if supplied == "" || len(properties) == 0 {
		return false
	}

	var b strings.Builder
	for _, prop := range properties {
		value, ok := lookup(payload, prop)
		if !ok {
			return false
		}
		b.WriteString(value)
	}
	b.WriteString(strconv.FormatInt(timestamp, 10))
	b.WriteString(e.secret)

	sum := sha256.Sum256([]byte(b.String()))
	want := hex.EncodeToString(sum[:])
	got := strings.ToLower(supplied)
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

// lookup resolves a dotted property path ("transaction.amount_in_cents")
// inside a decoded JSON payload and renders the leaf as the provider does:
// integers without an exponent, strings verbatim.
func lookup(payload map[string]any, path string) (string, bool) {
	var current any = payload
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current, ok = obj[part]
		if !ok {
			return "", false
		}
	}

	switch v := current.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatInt(int64(v), 10), true
	case bool:
		return strconv.FormatBool(v), true
	case nil:
		return "", false
	default:
		return fmt.Sprintf("%v", v), true
	}
}
