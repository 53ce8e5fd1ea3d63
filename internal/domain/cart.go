package domain

// Cart is the active shopping cart as seen by the checkout path.
type Cart struct {
	ID         string
	CustomerID string
	Active     bool
	Items      []CartItem
}

type CartItem struct {
	ProductID      string
	Quantity       int
	UnitPriceCents int64
}

// CartValidation is the result of re-checking live stock and prices against
// the cart right before an intent is created.
type CartValidation struct {
	IsValid bool
	Errors  []string
}
