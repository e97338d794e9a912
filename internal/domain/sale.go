package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SaleStatus is the lifecycle state of a committed sale.
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusVoided    SaleStatus = "voided"
)

// SaleItem is one line of a committed sale. Name and prices are snapshots
// taken at the moment of sale so later catalog edits cannot rewrite
// history. Profit is signed cents: selling below cost is recorded as is.
type SaleItem struct {
	ProductID  string `bson:"productId" json:"productId"`
	Name       string `bson:"name" json:"name"`
	Category   string `bson:"category,omitempty" json:"category,omitempty"`
	Quantity   int    `bson:"quantity" json:"quantity"`
	UnitPrice  Money  `bson:"unitPrice" json:"unitPrice"`
	TotalPrice Money  `bson:"totalPrice" json:"totalPrice"`
	CostPrice  Money  `bson:"costPrice" json:"costPrice"`
	Profit     int64  `bson:"profit" json:"profit"`
}

// SaleRecord is the immutable record of one committed sale. It is created
// exactly once, as the terminal step of a successful sale transaction,
// and references the ledgers decremented in the same atomic unit.
type SaleRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	StoreID       string             `bson:"storeId" json:"storeId"`
	StaffID       string             `bson:"staffId,omitempty" json:"staffId,omitempty"`
	CustomerID    string             `bson:"customerId,omitempty" json:"customerId,omitempty"`
	Items         []SaleItem         `bson:"items" json:"items"`
	Subtotal      Money              `bson:"subtotal" json:"subtotal"`
	TotalAmount   Money              `bson:"totalAmount" json:"totalAmount"`
	TotalCost     Money              `bson:"totalCost" json:"totalCost"`
	TotalProfit   int64              `bson:"totalProfit" json:"totalProfit"`
	Status        SaleStatus         `bson:"status" json:"status"`
	SaleDate      time.Time          `bson:"saleDate" json:"saleDate"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`

	DomainEvents []DomainEvent `bson:"-" json:"-"`
}

// NewSaleRecord builds a completed sale from validated lines, computing
// all totals server-side. Invariants: totalAmount equals the sum of the
// item totals, and each item total equals unitPrice * quantity (the
// validated lines carry exactly that product).
func NewSaleRecord(transactionID, storeID, staffID, customerID string, lines []ValidatedLine) (*SaleRecord, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	currency := lines[0].UnitPrice.Currency
	items := make([]SaleItem, len(lines))
	total := ZeroMoney(currency)
	totalCost := ZeroMoney(currency)
	var totalProfit int64

	for i, line := range lines {
		lineCost, err := line.CostPrice.Multiply(line.Quantity)
		if err != nil {
			return nil, err
		}
		profit, err := line.TotalPrice.Diff(lineCost)
		if err != nil {
			return nil, err
		}

		items[i] = SaleItem{
			ProductID:  line.ProductID,
			Name:       line.Name,
			Category:   line.Category,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice,
			CostPrice:  line.CostPrice,
			Profit:     profit,
		}

		if total, err = total.Add(line.TotalPrice); err != nil {
			return nil, err
		}
		if totalCost, err = totalCost.Add(lineCost); err != nil {
			return nil, err
		}
		totalProfit += profit
	}

	now := time.Now()
	sale := &SaleRecord{
		TransactionID: transactionID,
		StoreID:       storeID,
		StaffID:       staffID,
		CustomerID:    customerID,
		Items:         items,
		Subtotal:      total,
		TotalAmount:   total,
		TotalCost:     totalCost,
		TotalProfit:   totalProfit,
		Status:        SaleStatusCompleted,
		SaleDate:      now,
		CreatedAt:     now,
		DomainEvents:  make([]DomainEvent, 0),
	}

	sale.DomainEvents = append(sale.DomainEvents, &SaleCompletedEvent{
		TransactionID: transactionID,
		StoreID:       storeID,
		StaffID:       staffID,
		TotalAmount:   total.Amount,
		Currency:      currency,
		ItemCount:     len(items),
		CompletedAt:   now,
	})

	return sale, nil
}

// TakeDomainEvents drains the accumulated domain events.
func (s *SaleRecord) TakeDomainEvents() []DomainEvent {
	events := s.DomainEvents
	s.DomainEvents = make([]DomainEvent, 0)
	return events
}
