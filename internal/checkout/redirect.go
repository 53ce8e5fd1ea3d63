// Package checkout builds the hosted-checkout redirect URL for a payment
// intent. Construction is a pure function of its inputs.
package checkout

import (
	"fmt"
	"net/netip"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
	"github.com/Noushen23/CatalogoAPP-sub000/internal/signature"
)

const maxReferenceLength = 64

var referencePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Config is the provider-facing checkout configuration.
type Config struct {
	// BaseURL is the provider's hosted checkout page.
	BaseURL string
	// PublicKey identifies the merchant account.
	PublicKey string
	// Currency is the ISO 4217 code for every amount sent.
	Currency string
	// MinAmountCents is the provider's minimum chargeable amount.
	MinAmountCents int64
	// RedirectURL is where the buyer lands after paying. Optional, but when
	// set it must be reachable from outside the merchant's network.
	RedirectURL string
}

// Input carries everything the redirect needs from a checkout intent.
type Input struct {
	Reference   string
	AmountCents int64
	ExpiresAt   *time.Time
	Customer    domain.CustomerSnapshot
	Shipping    *domain.ShippingSnapshot
}

// BuildRedirectURL composes the hosted checkout URL, signing the amount with
// the integrity engine. It never mutates state.
func BuildRedirectURL(cfg Config, engine *signature.Engine, in Input) (string, error) {
	if cfg.BaseURL == "" || cfg.PublicKey == "" || cfg.Currency == "" {
		return "", fmt.Errorf("%w: checkout base url, public key and currency required", domain.ErrSecretRequired)
	}
	if in.Reference == "" || len(in.Reference) > maxReferenceLength || !referencePattern.MatchString(in.Reference) {
		return "", domain.ErrInvalidReference
	}
	if in.AmountCents < cfg.MinAmountCents {
		return "", fmt.Errorf("%w: %d below provider minimum %d", domain.ErrInvalidAmount, in.AmountCents, cfg.MinAmountCents)
	}
	if cfg.RedirectURL != "" {
		if err := checkExternalURL(cfg.RedirectURL); err != nil {
			return "", err
		}
	}

	params := url.Values{}
	params.Set("public-key", cfg.PublicKey)
	params.Set("currency", cfg.Currency)
	params.Set("amount-in-cents", strconv.FormatInt(in.AmountCents, 10))
	params.Set("reference", in.Reference)
	params.Set("signature:integrity", engine.Sign(in.Reference, in.AmountCents, cfg.Currency, in.ExpiresAt))

	if cfg.RedirectURL != "" {
		params.Set("redirect-url", cfg.RedirectURL)
	}
	if in.ExpiresAt != nil {
		params.Set("expiration-time", in.ExpiresAt.UTC().Format(time.RFC3339))
	}

	addCustomer(params, in.Customer)
	if in.Shipping != nil && in.Shipping.Complete() {
		addShipping(params, *in.Shipping)
	}

	return cfg.BaseURL + "?" + params.Encode(), nil
}

func addCustomer(params url.Values, c domain.CustomerSnapshot) {
	if c.Email != "" {
		params.Set("customer-data:email", c.Email)
	}
	if c.FullName != "" {
		params.Set("customer-data:full-name", c.FullName)
	}
	// A phone without its prefix is unusable by the provider; drop both.
	if c.Phone != "" && c.PhonePrefix != "" {
		params.Set("customer-data:phone-number", c.Phone)
		params.Set("customer-data:phone-number-prefix", c.PhonePrefix)
	}
	if c.LegalID != "" && c.LegalIDType != "" {
		params.Set("customer-data:legal-id", c.LegalID)
		params.Set("customer-data:legal-id-type", c.LegalIDType)
	}
}

func addShipping(params url.Values, s domain.ShippingSnapshot) {
	params.Set("shipping-address:address-line-1", s.AddressLine1)
	params.Set("shipping-address:country", s.Country)
	params.Set("shipping-address:city", s.City)
	params.Set("shipping-address:phone-number", s.PhoneNumber)
	params.Set("shipping-address:region", s.Region)
	if s.Name != "" {
		params.Set("shipping-address:name", s.Name)
	}
	if s.PostalCode != "" {
		params.Set("shipping-address:postal-code", s.PostalCode)
	}
	if s.AddressLine2 != "" {
		params.Set("shipping-address:address-line-2", s.AddressLine2)
	}
}

// checkExternalURL rejects addresses the provider's redirect could never
// reach: loopback, private and link-local IPs, and local-only hostnames.
func checkExternalURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRedirectURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", domain.ErrInvalidRedirectURL, parsed.Scheme)
	}
	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", domain.ErrInvalidRedirectURL)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified() {
			return fmt.Errorf("%w: %s", domain.ErrInvalidRedirectURL, host)
		}
		return nil
	}

	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") || strings.HasSuffix(lower, ".local") || !strings.Contains(lower, ".") {
		return fmt.Errorf("%w: %s", domain.ErrInvalidRedirectURL, host)
	}
	return nil
}
