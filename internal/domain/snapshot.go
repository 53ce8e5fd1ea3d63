package domain

import "fmt"

// CartLine is one cart item frozen at intent-creation time. Prices are minor
// currency units (cents); unit price is never re-read from the catalog.
type CartLine struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	SubtotalCents  int64  `json:"subtotal_cents"`
}

type CartSnapshot struct {
	CartID string     `json:"cart_id"`
	Lines  []CartLine `json:"lines"`
}

func (s CartSnapshot) Validate() error {
	if s.CartID == "" {
		return fmt.Errorf("%w: missing cart id", ErrInvalidSnapshot)
	}
	if len(s.Lines) == 0 {
		return fmt.Errorf("%w: no lines", ErrInvalidSnapshot)
	}
	for i, line := range s.Lines {
		if line.ProductID == "" {
			return fmt.Errorf("%w: line %d missing product id", ErrInvalidSnapshot, i)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: line %d quantity %d", ErrInvalidSnapshot, i, line.Quantity)
		}
		if line.UnitPriceCents < 0 {
			return fmt.Errorf("%w: line %d negative unit price", ErrInvalidSnapshot, i)
		}
		if line.SubtotalCents != int64(line.Quantity)*line.UnitPriceCents {
			return fmt.Errorf("%w: line %d subtotal mismatch", ErrInvalidSnapshot, i)
		}
	}
	return nil
}

func (s CartSnapshot) SubtotalCents() int64 {
	var total int64
	for _, line := range s.Lines {
		total += line.SubtotalCents
	}
	return total
}

// CustomerSnapshot carries the buyer data forwarded to the payment provider.
type CustomerSnapshot struct {
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Phone       string `json:"phone,omitempty"`
	PhonePrefix string `json:"phone_prefix,omitempty"`
	LegalID     string `json:"legal_id,omitempty"`
	LegalIDType string `json:"legal_id_type,omitempty"`
}

func (s CustomerSnapshot) Validate() error {
	if s.Email == "" || s.FullName == "" {
		return fmt.Errorf("%w: customer email and full name required", ErrInvalidSnapshot)
	}
	if s.Phone != "" && s.PhonePrefix == "" {
		return fmt.Errorf("%w: phone requires a prefix", ErrInvalidSnapshot)
	}
	return nil
}

// ShippingSnapshot is the delivery block forwarded to the provider. The five
// required fields travel together or not at all.
type ShippingSnapshot struct {
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	Country      string `json:"country"`
	City         string `json:"city"`
	PhoneNumber  string `json:"phone_number"`
	Region       string `json:"region"`
	Name         string `json:"name,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
}

// Complete reports whether all required shipping fields are present.
func (s ShippingSnapshot) Complete() bool {
	return s.AddressLine1 != "" && s.Country != "" && s.City != "" &&
		s.PhoneNumber != "" && s.Region != ""
}
