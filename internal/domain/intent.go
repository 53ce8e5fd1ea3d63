package domain

import "time"

type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "PENDING"
	TransactionApproved TransactionStatus = "APPROVED"
	TransactionDeclined TransactionStatus = "DECLINED"
	TransactionVoided   TransactionStatus = "VOIDED"
	TransactionError    TransactionStatus = "ERROR"
)

// Terminal reports whether a status can never change again.
func (s TransactionStatus) Terminal() bool {
	switch s {
	case TransactionApproved, TransactionDeclined, TransactionVoided, TransactionError:
		return true
	}
	return false
}

// CheckoutIntent stages a payment attempt before any order exists. The cart,
// customer and shipping snapshots are frozen at creation time so settlement
// never depends on live catalog data.
type CheckoutIntent struct {
	ID                string
	Reference         string
	CustomerID        string
	CartID            string
	ShippingAddressID string
	PaymentMethod     string
	Note              string
	Cart              CartSnapshot
	Customer          CustomerSnapshot
	Shipping          *ShippingSnapshot
	Status            TransactionStatus
	ProviderTxID      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ExpiresAt         time.Time
}
