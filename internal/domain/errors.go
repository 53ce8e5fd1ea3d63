package domain

import "errors"

var (
	ErrSecretRequired        = errors.New("signing secret required")
	ErrInvalidReference      = errors.New("invalid payment reference")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidRedirectURL    = errors.New("redirect url not externally reachable")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInvalidSnapshot       = errors.New("invalid snapshot")
	ErrInvalidID             = errors.New("invalid id")
	ErrCartNotFound          = errors.New("active cart not found")
	ErrCartEmpty             = errors.New("cart is empty")
	ErrCartInvalid           = errors.New("cart failed checkout validation")
	ErrReferenceTaken        = errors.New("payment reference already exists")
	ErrIntentNotFound        = errors.New("checkout intent not found")
	ErrIntentNotApproved     = errors.New("checkout intent not approved")
	ErrDuplicateSettlement   = errors.New("order already exists for reference")
	ErrStockConflict         = errors.New("insufficient stock or price changed")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderNotCancellable   = errors.New("order can no longer be cancelled")
	ErrEventIncomplete       = errors.New("payment event missing reference or status")
	ErrSignatureInvalid      = errors.New("event signature invalid")
	ErrProviderUnavailable   = errors.New("payment provider unavailable")
	ErrTransactionNotFound   = errors.New("provider transaction not found")
	ErrPaymentMethodRequired = errors.New("payment method required")
)
