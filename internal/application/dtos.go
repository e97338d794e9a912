package application

import "time"

// MoneyDTO represents a monetary amount in cents
type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// LedgerDTO represents a stock ledger in responses
type LedgerDTO struct {
	StoreID      string     `json:"storeId"`
	ProductID    string     `json:"productId"`
	Quantity     int        `json:"quantity"`
	ReorderLevel int        `json:"reorderLevel"`
	MaxStock     int        `json:"maxStock"`
	Status       string     `json:"status"`
	LastSold     *time.Time `json:"lastSold,omitempty"`
	UpdatedBy    string     `json:"updatedBy,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// MovementDTO represents one entry of a ledger's audit trail
type MovementDTO struct {
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	Delta       int       `json:"delta"`
	Reason      string    `json:"reason"`
	Reference   string    `json:"reference,omitempty"`
	PerformedBy string    `json:"performedBy"`
	Timestamp   time.Time `json:"timestamp"`
}

// SaleItemDTO represents one line of a committed sale
type SaleItemDTO struct {
	ProductID  string   `json:"productId"`
	Name       string   `json:"name"`
	Category   string   `json:"category,omitempty"`
	Quantity   int      `json:"quantity"`
	UnitPrice  MoneyDTO `json:"unitPrice"`
	TotalPrice MoneyDTO `json:"totalPrice"`
	Profit     int64    `json:"profit"`
}

// SaleDTO represents a committed sale in responses
type SaleDTO struct {
	TransactionID string        `json:"transactionId"`
	StoreID       string        `json:"storeId"`
	StaffID       string        `json:"staffId,omitempty"`
	CustomerID    string        `json:"customerId,omitempty"`
	Items         []SaleItemDTO `json:"items"`
	Subtotal      MoneyDTO      `json:"subtotal"`
	TotalAmount   MoneyDTO      `json:"totalAmount"`
	TotalProfit   int64         `json:"totalProfit"`
	Status        string        `json:"status"`
	SaleDate      time.Time     `json:"saleDate"`
	ReceiptURL    string        `json:"receiptUrl,omitempty"`
}
