package domain

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmada"
	OrderShipped   OrderStatus = "enviada"
	OrderDelivered OrderStatus = "entregada"
	OrderCancelled OrderStatus = "cancelada"
)

// Order is a settled purchase. Totals are fixed at creation from the intent
// snapshot; TotalCents always equals subtotal - discount + shipping + tax.
type Order struct {
	ID                string
	Number            string
	CustomerID        string
	ShippingAddressID string
	Status            OrderStatus
	SubtotalCents     int64
	DiscountCents     int64
	ShippingCents     int64
	TaxCents          int64
	TotalCents        int64
	PaymentMethod     string
	PaymentReference  string
	Note              string
	Items             []OrderItem
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem copies quantity and unit price from the intent snapshot.
type OrderItem struct {
	ID             string
	OrderID        string
	ProductID      string
	Quantity       int
	UnitPriceCents int64
	SubtotalCents  int64
}
