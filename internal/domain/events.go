package domain

import "time"

// DomainEvent is implemented by all domain events raised by aggregates.
type DomainEvent interface {
	EventType() string
}

// SaleCompletedEvent is raised when a sale transaction commits.
type SaleCompletedEvent struct {
	TransactionID string    `json:"transactionId"`
	StoreID       string    `json:"storeId"`
	StaffID       string    `json:"staffId"`
	TotalAmount   int64     `json:"totalAmount"` // cents
	Currency      string    `json:"currency"`
	ItemCount     int       `json:"itemCount"`
	CompletedAt   time.Time `json:"completedAt"`
}

func (e *SaleCompletedEvent) EventType() string { return "sale.completed" }

// LowStockAlertEvent is raised when a deduction leaves a ledger at or
// below its reorder level.
type LowStockAlertEvent struct {
	StoreID      string    `json:"storeId"`
	ProductID    string    `json:"productId"`
	Quantity     int       `json:"quantity"`
	ReorderLevel int       `json:"reorderLevel"`
	AlertedAt    time.Time `json:"alertedAt"`
}

func (e *LowStockAlertEvent) EventType() string { return "inventory.low_stock" }

// StockDepletedEvent is raised when a deduction empties a ledger.
type StockDepletedEvent struct {
	StoreID    string    `json:"storeId"`
	ProductID  string    `json:"productId"`
	DepletedAt time.Time `json:"depletedAt"`
}

func (e *StockDepletedEvent) EventType() string { return "inventory.out_of_stock" }

// StockReceivedEvent is raised when inbound stock is booked into a ledger.
type StockReceivedEvent struct {
	StoreID    string    `json:"storeId"`
	ProductID  string    `json:"productId"`
	Quantity   int       `json:"quantity"`
	Reference  string    `json:"reference,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
}

func (e *StockReceivedEvent) EventType() string { return "inventory.received" }
