package domain

import "context"

// LedgerRepository persists StockLedger aggregates. Save must enforce the
// aggregate's optimistic concurrency token and return ErrConflict when the
// stored version no longer matches the loaded one.
type LedgerRepository interface {
	FindByStoreProduct(ctx context.Context, storeID, productID string) (*StockLedger, error)
	FindByStore(ctx context.Context, storeID string, limit, offset int) ([]*StockLedger, error)
	FindLowStock(ctx context.Context, storeID string) ([]*StockLedger, error)
	FindOutOfStock(ctx context.Context, storeID string) ([]*StockLedger, error)
	FindOverstock(ctx context.Context, storeID string) ([]*StockLedger, error)
	Save(ctx context.Context, ledger *StockLedger) error
}

// MovementRepository is the append-only movement log for a ledger's audit
// trail. Entries are never updated or deleted.
type MovementRepository interface {
	AppendAll(ctx context.Context, storeID, productID string, movements []StockMovement) error
	FindByStoreProduct(ctx context.Context, storeID, productID string, limit int) ([]StockMovement, error)
	FindByReference(ctx context.Context, reference string) ([]StockMovement, error)
}

// SaleRepository persists committed sales. Insert must fail on a duplicate
// transaction id rather than overwrite.
type SaleRepository interface {
	Insert(ctx context.Context, sale *SaleRecord) error
	FindByTransactionID(ctx context.Context, transactionID string) (*SaleRecord, error)
	FindByStore(ctx context.Context, storeID string, limit, offset int) ([]*SaleRecord, error)
}

// ProductCatalog is the read-only view of the product catalog the sale
// engine needs: price and cost snapshots for validation. Returns
// ErrProductNotFound for unknown ids.
type ProductCatalog interface {
	Lookup(ctx context.Context, productID string) (*Product, error)
}
