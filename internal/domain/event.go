package domain

// ProviderEvent is a payment-status notification normalized from either a
// webhook delivery or a direct provider query.
type ProviderEvent struct {
	TransactionID string
	Reference     string
	Status        TransactionStatus
	AmountCents   int64
	Currency      string
	PaymentMethod string
	Message       string
}

// OrderNotification is emitted to the notification service on every order
// state change. Delivery is fire-and-forget.
type OrderNotification struct {
	CustomerID  string `json:"customer_id"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	NewStatus   string `json:"new_status"`
}
