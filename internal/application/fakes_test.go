package application

import (
	"context"

	"github.com/retail-platform/sales-service/internal/domain"
	"github.com/retail-platform/sales-service/pkg/logging"
	"github.com/retail-platform/sales-service/pkg/outbox"
)

func ledgerKey(storeID, productID string) string {
	return storeID + "/" + productID
}

type fakeLedgerRepo struct {
	ledgers       map[string]*domain.StockLedger
	findErr       error
	saveErr       error
	conflictsLeft int // Save fails with ErrConflict while > 0
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{ledgers: make(map[string]*domain.StockLedger)}
}

func (f *fakeLedgerRepo) seed(ledger *domain.StockLedger) {
	cp := *ledger
	f.ledgers[ledgerKey(ledger.StoreID, ledger.ProductID)] = &cp
}

// FindByStoreProduct returns a detached copy, the way a real repository
// rehydrates a fresh aggregate per load.
func (f *fakeLedgerRepo) FindByStoreProduct(ctx context.Context, storeID, productID string) (*domain.StockLedger, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	ledger, ok := f.ledgers[ledgerKey(storeID, productID)]
	if !ok {
		return nil, nil
	}
	cp := *ledger
	cp.PendingMovements = nil
	cp.DomainEvents = nil
	return &cp, nil
}

func (f *fakeLedgerRepo) FindByStore(ctx context.Context, storeID string, limit, offset int) ([]*domain.StockLedger, error) {
	results := make([]*domain.StockLedger, 0)
	for _, ledger := range f.ledgers {
		if ledger.StoreID == storeID {
			results = append(results, ledger)
		}
	}
	return results, nil
}

func (f *fakeLedgerRepo) FindLowStock(ctx context.Context, storeID string) ([]*domain.StockLedger, error) {
	return f.filterByStatus(storeID, domain.StatusLowStock), nil
}

func (f *fakeLedgerRepo) FindOutOfStock(ctx context.Context, storeID string) ([]*domain.StockLedger, error) {
	return f.filterByStatus(storeID, domain.StatusOutOfStock), nil
}

func (f *fakeLedgerRepo) FindOverstock(ctx context.Context, storeID string) ([]*domain.StockLedger, error) {
	return f.filterByStatus(storeID, domain.StatusOverstock), nil
}

func (f *fakeLedgerRepo) filterByStatus(storeID string, status domain.StockStatus) []*domain.StockLedger {
	results := make([]*domain.StockLedger, 0)
	for _, ledger := range f.ledgers {
		if ledger.StoreID == storeID && ledger.Status() == status {
			results = append(results, ledger)
		}
	}
	return results
}

func (f *fakeLedgerRepo) Save(ctx context.Context, ledger *domain.StockLedger) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return domain.ErrConflict
	}
	cp := *ledger
	cp.Version++
	cp.PendingMovements = nil
	cp.DomainEvents = nil
	f.ledgers[ledgerKey(ledger.StoreID, ledger.ProductID)] = &cp
	return nil
}

func (f *fakeLedgerRepo) snapshot() map[string]*domain.StockLedger {
	snap := make(map[string]*domain.StockLedger, len(f.ledgers))
	for k, v := range f.ledgers {
		cp := *v
		snap[k] = &cp
	}
	return snap
}

type movementEntry struct {
	storeID   string
	productID string
	movement  domain.StockMovement
}

type fakeMovementRepo struct {
	entries   []movementEntry
	appendErr error
}

func (f *fakeMovementRepo) AppendAll(ctx context.Context, storeID, productID string, movements []domain.StockMovement) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	for _, m := range movements {
		f.entries = append(f.entries, movementEntry{storeID: storeID, productID: productID, movement: m})
	}
	return nil
}

func (f *fakeMovementRepo) FindByStoreProduct(ctx context.Context, storeID, productID string, limit int) ([]domain.StockMovement, error) {
	results := make([]domain.StockMovement, 0)
	for _, e := range f.entries {
		if e.storeID == storeID && e.productID == productID {
			results = append(results, e.movement)
		}
	}
	return results, nil
}

func (f *fakeMovementRepo) FindByReference(ctx context.Context, reference string) ([]domain.StockMovement, error) {
	results := make([]domain.StockMovement, 0)
	for _, e := range f.entries {
		if e.movement.Reference == reference {
			results = append(results, e.movement)
		}
	}
	return results, nil
}

type fakeSaleRepo struct {
	sales     map[string]*domain.SaleRecord
	insertErr error
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[string]*domain.SaleRecord)}
}

func (f *fakeSaleRepo) Insert(ctx context.Context, sale *domain.SaleRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, exists := f.sales[sale.TransactionID]; exists {
		return domain.ErrConflict
	}
	f.sales[sale.TransactionID] = sale
	return nil
}

func (f *fakeSaleRepo) FindByTransactionID(ctx context.Context, transactionID string) (*domain.SaleRecord, error) {
	return f.sales[transactionID], nil
}

func (f *fakeSaleRepo) FindByStore(ctx context.Context, storeID string, limit, offset int) ([]*domain.SaleRecord, error) {
	results := make([]*domain.SaleRecord, 0)
	for _, sale := range f.sales {
		if sale.StoreID == storeID {
			results = append(results, sale)
		}
	}
	return results, nil
}

type fakeCatalog struct {
	products map[string]*domain.Product
}

func newFakeCatalog(products ...*domain.Product) *fakeCatalog {
	c := &fakeCatalog{products: make(map[string]*domain.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (f *fakeCatalog) Lookup(ctx context.Context, productID string) (*domain.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

type fakeOutboxRepo struct {
	events  []*outbox.OutboxEvent
	saveErr error
}

func (f *fakeOutboxRepo) Save(ctx context.Context, event *outbox.OutboxEvent) error {
	return f.SaveAll(ctx, []*outbox.OutboxEvent{event})
}

func (f *fakeOutboxRepo) SaveAll(ctx context.Context, events []*outbox.OutboxEvent) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeOutboxRepo) FindUnpublished(ctx context.Context, limit int) ([]*outbox.OutboxEvent, error) {
	results := make([]*outbox.OutboxEvent, 0)
	for _, e := range f.events {
		if !e.IsPublished() {
			results = append(results, e)
		}
	}
	return results, nil
}

func (f *fakeOutboxRepo) MarkPublished(ctx context.Context, eventID string) error { return nil }

func (f *fakeOutboxRepo) IncrementRetry(ctx context.Context, eventID string, errorMsg string) error {
	return nil
}

func (f *fakeOutboxRepo) DeletePublished(ctx context.Context, olderThan int64) error { return nil }

func (f *fakeOutboxRepo) GetByID(ctx context.Context, eventID string) (*outbox.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) FindByAggregateID(ctx context.Context, aggregateID string) ([]*outbox.OutboxEvent, error) {
	return nil, nil
}

// fakeUnitOfWork mimics transactional semantics over the in-memory fakes:
// on an error from fn, every repository is rolled back to its state at
// the start of the unit.
type fakeUnitOfWork struct {
	ledgers   *fakeLedgerRepo
	movements *fakeMovementRepo
	sales     *fakeSaleRepo
	outbox    *fakeOutboxRepo
	execErr   error
}

func (u *fakeUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos RepositorySet) error) error {
	if u.execErr != nil {
		return u.execErr
	}

	ledgerSnap := u.ledgers.snapshot()
	movementSnap := len(u.movements.entries)
	saleSnap := make(map[string]*domain.SaleRecord, len(u.sales.sales))
	for k, v := range u.sales.sales {
		saleSnap[k] = v
	}
	var outboxSnap int
	if u.outbox != nil {
		outboxSnap = len(u.outbox.events)
	}

	repos := RepositorySet{Ledgers: u.ledgers, Movements: u.movements, Sales: u.sales}
	if u.outbox != nil {
		repos.Outbox = u.outbox
	}

	if err := fn(ctx, repos); err != nil {
		u.ledgers.ledgers = ledgerSnap
		u.movements.entries = u.movements.entries[:movementSnap]
		u.sales.sales = saleSnap
		if u.outbox != nil {
			u.outbox.events = u.outbox.events[:outboxSnap]
		}
		return err
	}
	return nil
}

type fakeReceipts struct{}

func (fakeReceipts) ReceiptURL(sale *domain.SaleRecord) string {
	return "/receipts/" + sale.TransactionID + ".pdf"
}

func testLogger() *logging.Logger {
	return logging.New(logging.DefaultConfig("test"))
}
