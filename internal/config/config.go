// Package config loads the payment-provider settings. Missing secrets are a
// startup failure: the service must never sign with an empty secret or
// accept webhooks it cannot verify.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
)

type Provider struct {
	PublicKey       string
	PrivateKey      string
	IntegritySecret string
	EventsSecret    string
	APIBaseURL      string
	CheckoutBaseURL string
	RedirectURL     string
	Currency        string
	MinAmountCents  int64
	// SkipWebhookVerification disables signature checks. Local testing
	// only; refuse to set it in production.
	SkipWebhookVerification bool
}

func LoadProvider() (Provider, error) {
	p := Provider{
		PublicKey:       os.Getenv("PAYMENTS_PUBLIC_KEY"),
		PrivateKey:      os.Getenv("PAYMENTS_PRIVATE_KEY"),
		IntegritySecret: getEnvOrFile("PAYMENTS_INTEGRITY_SECRET"),
		EventsSecret:    getEnvOrFile("PAYMENTS_EVENTS_SECRET"),
		APIBaseURL:      getEnvDefault("PAYMENTS_API_URL", "https://sandbox.wompi.co"),
		CheckoutBaseURL: getEnvDefault("PAYMENTS_CHECKOUT_URL", "https://checkout.wompi.co/p/"),
		RedirectURL:     os.Getenv("PAYMENTS_REDIRECT_URL"),
		Currency:        getEnvDefault("PAYMENTS_CURRENCY", "COP"),
	}

	minAmount := getEnvDefault("PAYMENTS_MIN_AMOUNT_CENTS", "150000")
	parsed, err := strconv.ParseInt(minAmount, 10, 64)
	if err != nil || parsed < 0 {
		return Provider{}, fmt.Errorf("PAYMENTS_MIN_AMOUNT_CENTS: invalid value %q", minAmount)
	}
	p.MinAmountCents = parsed

	p.SkipWebhookVerification = strings.EqualFold(os.Getenv("PAYMENTS_SKIP_WEBHOOK_VERIFY"), "true")

	if p.PublicKey == "" {
		return Provider{}, errors.New("PAYMENTS_PUBLIC_KEY is required")
	}
	if p.IntegritySecret == "" {
		return Provider{}, fmt.Errorf("PAYMENTS_INTEGRITY_SECRET: %w", domain.ErrSecretRequired)
	}
	if p.EventsSecret == "" && !p.SkipWebhookVerification {
		return Provider{}, fmt.Errorf("PAYMENTS_EVENTS_SECRET: %w", domain.ErrSecretRequired)
	}
	return p, nil
}

func getEnvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvOrFile reads KEY, falling back to the file named by KEY_FILE. The
// file form is how container secrets usually arrive.
func getEnvOrFile(key string) string {
	if path := os.Getenv(key + "_FILE"); path != "" {
		if content, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return os.Getenv(key)
}
