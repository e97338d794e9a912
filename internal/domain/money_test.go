package domain

import (
	"errors"
	"testing"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		currency string
		wantErr  error
	}{
		{name: "valid amount", amount: 1999, currency: "USD"},
		{name: "zero amount", amount: 0, currency: "USD"},
		{name: "negative amount", amount: -1, currency: "USD", wantErr: ErrInvalidAmount},
		{name: "bad currency code", amount: 100, currency: "US", wantErr: ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoney(tt.amount, tt.currency)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if err == nil && (m.Amount != tt.amount || m.Currency != tt.currency) {
				t.Errorf("unexpected value: %+v", m)
			}
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	price, _ := NewMoney(1250, "USD")
	cost, _ := NewMoney(1500, "USD")
	foreign, _ := NewMoney(100, "EUR")

	sum, err := price.Add(cost)
	if err != nil || sum.Amount != 2750 {
		t.Errorf("Add: got %+v, %v", sum, err)
	}
	if _, err := price.Add(foreign); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Add across currencies: expected ErrCurrencyMismatch, got %v", err)
	}

	line, err := price.Multiply(3)
	if err != nil || line.Amount != 3750 {
		t.Errorf("Multiply: got %+v, %v", line, err)
	}
	if _, err := price.Multiply(-1); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Multiply negative: expected ErrInvalidQuantity, got %v", err)
	}

	// selling below cost: the difference is signed
	profit, err := price.Diff(cost)
	if err != nil || profit != -250 {
		t.Errorf("Diff: got %d, %v", profit, err)
	}
	if _, err := price.Diff(foreign); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Diff across currencies: expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestMoney_WithinTolerance(t *testing.T) {
	base, _ := NewMoney(1000, "USD")

	tests := []struct {
		name  string
		other Money
		want  bool
	}{
		{name: "exact match", other: Money{Amount: 1000, Currency: "USD"}, want: true},
		{name: "one cent under", other: Money{Amount: 999, Currency: "USD"}, want: true},
		{name: "one cent over", other: Money{Amount: 1001, Currency: "USD"}, want: true},
		{name: "two cents off", other: Money{Amount: 1002, Currency: "USD"}, want: false},
		{name: "currency mismatch", other: Money{Amount: 1000, Currency: "EUR"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.WithinTolerance(tt.other, PriceToleranceCents); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		want   string
	}{
		{"positive", 1205, "12.05 USD"},
		{"zero", 0, "0.00 USD"},
		{"negative under a unit", -50, "-0.50 USD"},
		{"negative with units", -1205, "-12.05 USD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Money{Amount: tt.amount, Currency: "USD"}
			if got := m.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
