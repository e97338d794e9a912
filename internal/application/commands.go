package application

// CartLineInput is one untrusted cart line as submitted by the client.
type CartLineInput struct {
	ProductID      string
	Quantity       int
	UnitPriceCents int64
}

// CommitSaleCommand represents the command to commit a sale transaction
type CommitSaleCommand struct {
	StoreID            string
	StaffID            string
	CustomerID         string
	Currency           string
	Lines              []CartLineInput
	AssertedTotalCents *int64 // client-asserted total, reconciled against the server total before commit
}

// ReceiveStockCommand represents the command to book inbound stock
type ReceiveStockCommand struct {
	StoreID      string
	ProductID    string
	Quantity     int
	Reason       string
	Reference    string
	ReorderLevel int // used only when the ledger is lazily created
	MaxStock     int
	PerformedBy  string
}

// AdjustStockCommand represents the command to correct a ledger to a counted quantity
type AdjustStockCommand struct {
	StoreID     string
	ProductID   string
	NewQuantity int
	Reason      string
	Reference   string
	PerformedBy string
}

// TransferStockCommand represents the command to move stock between stores
type TransferStockCommand struct {
	FromStoreID string
	ToStoreID   string
	ProductID   string
	Quantity    int
	PerformedBy string
}

// UpdateThresholdsCommand represents the command to change a ledger's thresholds
type UpdateThresholdsCommand struct {
	StoreID      string
	ProductID    string
	ReorderLevel int
	MaxStock     int
	PerformedBy  string
}

// GetLedgerQuery represents the query to get a ledger by store and product
type GetLedgerQuery struct {
	StoreID   string
	ProductID string
}

// ListLedgersQuery represents the query to list a store's ledgers with pagination
type ListLedgersQuery struct {
	StoreID string
	Limit   int
	Offset  int
}

// ListMovementsQuery represents the query to read a ledger's movement history
type ListMovementsQuery struct {
	StoreID   string
	ProductID string
	Limit     int
}

// GetSaleQuery represents the query to get a sale by transaction id
type GetSaleQuery struct {
	TransactionID string
}

// ListSalesQuery represents the query to list a store's recent sales
type ListSalesQuery struct {
	StoreID string
	Limit   int
	Offset  int
}
