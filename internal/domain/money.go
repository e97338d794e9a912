package domain

import (
	"fmt"
)

// Money represents a monetary value stored in the smallest currency unit
// (cents) to avoid floating point drift in price and profit arithmetic.
type Money struct {
	Amount   int64  `bson:"amount" json:"amount"`
	Currency string `bson:"currency" json:"currency"`
}

// PriceToleranceCents is the maximum absolute difference, in cents, allowed
// between a client-asserted price or total and the server-computed value.
const PriceToleranceCents int64 = 1

// NewMoney creates a Money value. Negative amounts are rejected; signed
// arithmetic (profit) is done on raw cents via Diff.
func NewMoney(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidAmount)
	}
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// ZeroMoney creates a zero money value in the given currency.
func ZeroMoney(currency string) Money {
	return Money{Amount: 0, Currency: currency}
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// Add adds two money values (must have same currency).
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Multiply multiplies the amount by a quantity.
func (m Money) Multiply(qty int) (Money, error) {
	if qty < 0 {
		return Money{}, ErrInvalidQuantity
	}
	return Money{Amount: m.Amount * int64(qty), Currency: m.Currency}, nil
}

// Diff returns the signed difference m - other in cents. Used for profit
// calculation, where the result may legitimately be negative.
func (m Money) Diff(other Money) (int64, error) {
	if m.Currency != other.Currency {
		return 0, ErrCurrencyMismatch
	}
	return m.Amount - other.Amount, nil
}

// WithinTolerance reports whether other differs from m by at most
// tolerance cents in either direction.
func (m Money) WithinTolerance(other Money, tolerance int64) bool {
	if m.Currency != other.Currency {
		return false
	}
	d := m.Amount - other.Amount
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

// String formats the amount as a decimal with the currency code.
func (m Money) String() string {
	sign := ""
	if m.Amount < 0 {
		sign = "-"
	}
	a := abs64(m.Amount)
	return fmt.Sprintf("%s%d.%02d %s", sign, a/100, a%100, m.Currency)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
