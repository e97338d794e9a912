package domain

import "errors"

// Errors
var (
	ErrMalformedProductID  = errors.New("malformed product id")
	ErrProductNotStocked   = errors.New("product not stocked in this store")
	ErrProductNotFound     = errors.New("product not found in catalog")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrPriceMismatch       = errors.New("price mismatch")
	ErrTotalMismatch       = errors.New("total amount mismatch")
	ErrStockUnderflow      = errors.New("stock underflow")
	ErrConflict            = errors.New("concurrent update conflict")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidMovementType = errors.New("invalid movement type")
	ErrEmptyCart           = errors.New("cart has no items")
	ErrLedgerNotFound      = errors.New("stock ledger not found")
	ErrSaleNotFound        = errors.New("sale not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCurrency     = errors.New("invalid currency code")
	ErrCurrencyMismatch    = errors.New("currency mismatch")
)
