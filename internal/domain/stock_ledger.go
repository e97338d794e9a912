package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StockStatus is the derived classification of a ledger's quantity
// relative to its reorder/max thresholds.
type StockStatus string

const (
	StatusOutOfStock StockStatus = "out_of_stock"
	StatusLowStock   StockStatus = "low_stock"
	StatusOverstock  StockStatus = "overstock"
	StatusInStock    StockStatus = "in_stock"
)

// Default thresholds used when a ledger is lazily created without
// caller-supplied values.
const (
	DefaultReorderLevel = 10
	DefaultMaxStock     = 100
)

// StockLedger is the aggregate root for the stock of one product in one
// store. Quantity is the single source of truth for on-hand units and is
// only ever changed through the movement methods, each of which records
// exactly one StockMovement. The invariant is that Quantity equals the net
// sum of all movement deltas since ledger creation.
type StockLedger struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	StoreID      string             `bson:"storeId" json:"storeId"`
	ProductID    string             `bson:"productId" json:"productId"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	ReorderLevel int                `bson:"reorderLevel" json:"reorderLevel"`
	MaxStock     int                `bson:"maxStock" json:"maxStock"`
	LastSold     *time.Time         `bson:"lastSold,omitempty" json:"lastSold,omitempty"`
	UpdatedBy    string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	Version      int64              `bson:"version" json:"-"` // optimistic concurrency token
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// PendingMovements holds movements recorded since the aggregate was
	// loaded; the repository appends them to the movement log and drains
	// them on save.
	PendingMovements []StockMovement `bson:"-" json:"-"`
	DomainEvents     []DomainEvent   `bson:"-" json:"-"`
}

// NewStockLedger creates a ledger for a (store, product) pair. Ledgers are
// created lazily on the first stock event; non-positive thresholds fall
// back to system defaults.
func NewStockLedger(storeID, productID string, reorderLevel, maxStock int) *StockLedger {
	if reorderLevel <= 0 {
		reorderLevel = DefaultReorderLevel
	}
	if maxStock <= 0 {
		maxStock = DefaultMaxStock
	}
	now := time.Now()
	return &StockLedger{
		StoreID:          storeID,
		ProductID:        productID,
		Quantity:         0,
		ReorderLevel:     reorderLevel,
		MaxStock:         maxStock,
		Version:          0,
		CreatedAt:        now,
		UpdatedAt:        now,
		PendingMovements: make([]StockMovement, 0),
		DomainEvents:     make([]DomainEvent, 0),
	}
}

// Receive books inbound stock (delivery, purchase-order receipt).
func (l *StockLedger) Receive(quantity int, reason, reference, actor string) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	l.record(MovementIn, quantity, quantity, reason, reference, actor)

	l.AddDomainEvent(&StockReceivedEvent{
		StoreID:    l.StoreID,
		ProductID:  l.ProductID,
		Quantity:   quantity,
		Reference:  reference,
		ReceivedAt: time.Now(),
	})
	return nil
}

// Deduct removes outbound stock. The resulting quantity must stay >= 0;
// otherwise the ledger is left untouched and ErrStockUnderflow is returned.
func (l *StockLedger) Deduct(quantity int, reason, reference, actor string) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if l.Quantity < quantity {
		return ErrStockUnderflow
	}
	l.record(MovementOut, quantity, -quantity, reason, reference, actor)

	if reason == ReasonSale {
		now := time.Now()
		l.LastSold = &now
	}

	switch l.Status() {
	case StatusOutOfStock:
		l.AddDomainEvent(&StockDepletedEvent{
			StoreID:    l.StoreID,
			ProductID:  l.ProductID,
			DepletedAt: time.Now(),
		})
	case StatusLowStock:
		l.AddDomainEvent(&LowStockAlertEvent{
			StoreID:      l.StoreID,
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			ReorderLevel: l.ReorderLevel,
			AlertedAt:    time.Now(),
		})
	}
	return nil
}

// AdjustTo corrects the quantity to a counted value (cycle counts,
// damage write-offs). The movement records the signed difference.
func (l *StockLedger) AdjustTo(newQuantity int, reason, reference, actor string) error {
	if newQuantity < 0 {
		return ErrInvalidQuantity
	}
	diff := newQuantity - l.Quantity
	if diff == 0 {
		return ErrInvalidQuantity
	}
	magnitude := diff
	if magnitude < 0 {
		magnitude = -magnitude
	}
	l.record(MovementAdjustment, magnitude, diff, reason, reference, actor)
	return nil
}

// TransferOut removes stock being moved to another store.
func (l *StockLedger) TransferOut(quantity int, reference, actor string) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if l.Quantity < quantity {
		return ErrStockUnderflow
	}
	l.record(MovementTransfer, quantity, -quantity, ReasonTransferOut, reference, actor)
	return nil
}

// TransferIn books stock received from another store.
func (l *StockLedger) TransferIn(quantity int, reference, actor string) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	l.record(MovementTransfer, quantity, quantity, ReasonTransferIn, reference, actor)
	return nil
}

// record appends one movement and applies its delta. Every quantity
// change goes through here; nothing writes Quantity directly.
func (l *StockLedger) record(mt MovementType, magnitude, delta int, reason, reference, actor string) {
	l.PendingMovements = append(l.PendingMovements, StockMovement{
		Type:        mt,
		Quantity:    magnitude,
		Delta:       delta,
		Reason:      reason,
		Reference:   reference,
		PerformedBy: actor,
		Timestamp:   time.Now(),
	})
	l.Quantity += delta
	l.UpdatedBy = actor
	l.UpdatedAt = time.Now()
}

// Status classifies the current quantity. The checks run in a fixed
// order: out-of-stock, then low, then over, then the in-stock default, so
// degenerate thresholds (reorderLevel >= maxStock) classify as low_stock.
func (l *StockLedger) Status() StockStatus {
	switch {
	case l.Quantity == 0:
		return StatusOutOfStock
	case l.Quantity <= l.ReorderLevel:
		return StatusLowStock
	case l.Quantity >= l.MaxStock:
		return StatusOverstock
	default:
		return StatusInStock
	}
}

// SetThresholds updates the reorder/max thresholds.
func (l *StockLedger) SetThresholds(reorderLevel, maxStock int, actor string) error {
	if reorderLevel < 0 || maxStock <= 0 {
		return ErrInvalidQuantity
	}
	l.ReorderLevel = reorderLevel
	l.MaxStock = maxStock
	l.UpdatedBy = actor
	l.UpdatedAt = time.Now()
	return nil
}

// TakePendingMovements drains the movements recorded since load.
func (l *StockLedger) TakePendingMovements() []StockMovement {
	movements := l.PendingMovements
	l.PendingMovements = make([]StockMovement, 0)
	return movements
}

// AddDomainEvent adds a domain event.
func (l *StockLedger) AddDomainEvent(event DomainEvent) {
	l.DomainEvents = append(l.DomainEvents, event)
}

// TakeDomainEvents drains the accumulated domain events.
func (l *StockLedger) TakeDomainEvents() []DomainEvent {
	events := l.DomainEvents
	l.DomainEvents = make([]DomainEvent, 0)
	return events
}
