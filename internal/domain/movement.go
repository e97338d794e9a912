package domain

import "time"

// MovementType classifies a stock movement. The sign of the applied delta
// is implied by the type; the recorded quantity is always a positive
// magnitude.
type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
	MovementTransfer   MovementType = "transfer"
)

// IsValid checks if the movement type is valid.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment, MovementTransfer:
		return true
	default:
		return false
	}
}

// Well-known movement reasons. Free-form reasons are accepted; these are
// the ones the service itself writes.
const (
	ReasonSale        = "sale"
	ReasonDelivery    = "delivery"
	ReasonCycleCount  = "cycle_count"
	ReasonTransferIn  = "transfer_in"
	ReasonTransferOut = "transfer_out"
)

// StockMovement is one immutable change to a ledger's quantity. Movements
// are append-only: once recorded they are never edited or removed.
type StockMovement struct {
	Type        MovementType `bson:"type" json:"type"`
	Quantity    int          `bson:"quantity" json:"quantity"` // positive magnitude
	Delta       int          `bson:"delta" json:"delta"`       // signed change applied
	Reason      string       `bson:"reason" json:"reason"`
	Reference   string       `bson:"reference,omitempty" json:"reference,omitempty"` // transaction id, PO id, etc.
	PerformedBy string       `bson:"performedBy" json:"performedBy"`
	Timestamp   time.Time    `bson:"timestamp" json:"timestamp"`
}
