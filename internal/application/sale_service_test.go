package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail-platform/sales-service/internal/domain"
)

type saleServiceFixture struct {
	svc       *SaleApplicationService
	ledgers   *fakeLedgerRepo
	movements *fakeMovementRepo
	sales     *fakeSaleRepo
	outbox    *fakeOutboxRepo
}

func newSaleFixture(quantities map[string]int) *saleServiceFixture {
	ledgers := stockedLedgers("store-1", quantities)
	movements := &fakeMovementRepo{}
	sales := newFakeSaleRepo()
	ob := &fakeOutboxRepo{}
	uow := &fakeUnitOfWork{ledgers: ledgers, movements: movements, sales: sales, outbox: ob}

	svc := NewSaleApplicationService(
		NewCartValidator(testCatalog(), ledgers),
		uow,
		sales,
		fakeReceipts{},
		nil,
		testLogger(),
	)
	return &saleServiceFixture{svc: svc, ledgers: ledgers, movements: movements, sales: sales, outbox: ob}
}

func TestSaleApplicationService_CommitSale(t *testing.T) {
	fx := newSaleFixture(map[string]int{productA: 10, productB: 5})

	dto, err := fx.svc.CommitSale(context.Background(), CommitSaleCommand{
		StoreID:    "store-1",
		StaffID:    "staff-7",
		CustomerID: "cust-3",
		Currency:   "USD",
		Lines: []CartLineInput{
			{ProductID: productA, Quantity: 2, UnitPriceCents: 1599},
			{ProductID: productB, Quantity: 1, UnitPriceCents: 499},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, dto)

	assert.Equal(t, "completed", dto.Status)
	assert.Equal(t, int64(3697), dto.TotalAmount.Amount)
	assert.Equal(t, "/receipts/"+dto.TransactionID+".pdf", dto.ReceiptURL)

	// ledgers decremented
	a, _ := fx.ledgers.FindByStoreProduct(context.Background(), "store-1", productA)
	b, _ := fx.ledgers.FindByStoreProduct(context.Background(), "store-1", productB)
	assert.Equal(t, 8, a.Quantity)
	assert.Equal(t, 4, b.Quantity)

	// one sale movement per line, referencing the transaction
	byRef, _ := fx.movements.FindByReference(context.Background(), dto.TransactionID)
	require.Len(t, byRef, 2)
	for _, m := range byRef {
		assert.Equal(t, domain.MovementOut, m.Type)
		assert.Equal(t, domain.ReasonSale, m.Reason)
		assert.Equal(t, "staff-7", m.PerformedBy)
	}

	// sale record persisted once
	sale, _ := fx.sales.FindByTransactionID(context.Background(), dto.TransactionID)
	require.NotNil(t, sale)
	assert.Equal(t, sale.TotalAmount.Amount, dto.TotalAmount.Amount)

	// sale.completed lands in the outbox within the same unit
	var saleEvents int
	for _, e := range fx.outbox.events {
		if e.EventType == "sale.completed" {
			saleEvents++
			assert.Equal(t, TopicSales, e.Topic)
		}
	}
	assert.Equal(t, 1, saleEvents)
}

func TestSaleApplicationService_CommitSale_InsufficientStock(t *testing.T) {
	fx := newSaleFixture(map[string]int{productA: 1})

	_, err := fx.svc.CommitSale(context.Background(), CommitSaleCommand{
		StoreID:  "store-1",
		StaffID:  "staff-7",
		Currency: "USD",
		Lines:    []CartLineInput{{ProductID: productA, Quantity: 2, UnitPriceCents: 1599}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	ledger, _ := fx.ledgers.FindByStoreProduct(context.Background(), "store-1", productA)
	assert.Equal(t, 1, ledger.Quantity)
	assert.Empty(t, fx.movements.entries)
	assert.Empty(t, fx.sales.sales)
}

func TestSaleApplicationService_CommitSale_NoOversellOnDuplicateLines(t *testing.T) {
	// each line passes validation on its own, but the commit deducts both
	// from the same ledger and must refuse the second
	fx := newSaleFixture(map[string]int{productA: 1})

	_, err := fx.svc.CommitSale(context.Background(), CommitSaleCommand{
		StoreID:  "store-1",
		StaffID:  "staff-7",
		Currency: "USD",
		Lines: []CartLineInput{
			{ProductID: productA, Quantity: 1, UnitPriceCents: 1599},
			{ProductID: productA, Quantity: 1, UnitPriceCents: 1599},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	ledger, _ := fx.ledgers.FindByStoreProduct(context.Background(), "store-1", productA)
	assert.Equal(t, 1, ledger.Quantity)
	assert.Empty(t, fx.movements.entries)
	assert.Empty(t, fx.sales.sales)
}

func TestSaleApplicationService_CommitSale_TotalMismatch(t *testing.T) {
	fx := newSaleFixture(map[string]int{productA: 10})

	bad := int64(3195) // server computes 3198, off by 3 cents
	_, err := fx.svc.CommitSale(context.Background(), CommitSaleCommand{
		StoreID:            "store-1",
		StaffID:            "staff-7",
		Currency:           "USD",
		Lines:              []CartLineInput{{ProductID: productA, Quantity: 2, UnitPriceCents: 1599}},
		AssertedTotalCents: &bad,
	})
	assert.ErrorIs(t, err, domain.ErrTotalMismatch)
	assert.Empty(t, fx.sales.sales)

	// within tolerance commits
	ok := int64(3197)
	dto, err := fx.svc.CommitSale(context.Background(), CommitSaleCommand{
		StoreID:            "store-1",
		StaffID:            "staff-7",
		Currency:           "USD",
		Lines:              []CartLineInput{{ProductID: productA, Quantity: 2, UnitPriceCents: 1599}},
		AssertedTotalCents: &ok,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3198), dto.TotalAmount.Amount)
}

func TestSaleApplicationService_CommitSale_RetriesOnConflict(t *testing.T) {
	fx := newSaleFixture(map[string]int{productA: 10})
	fx.ledgers.conflictsLeft = 1

	dto, err := fx.svc.CommitSale(context.Background(), CommitSaleCommand{
		StoreID:  "store-1",
		StaffID:  "staff-7",
		Currency: "USD",
		Lines:    []CartLineInput{{ProductID: productA, Quantity: 2, UnitPriceCents: 1599}},
	})
	require.NoError(t, err)

	// exactly one decrement survived the retry
	ledger, _ := fx.ledgers.FindByStoreProduct(context.Background(), "store-1", productA)
	assert.Equal(t, 8, ledger.Quantity)

	byRef, _ := fx.movements.FindByReference(context.Background(), dto.TransactionID)
	assert.Len(t, byRef, 1)
}

func TestSaleApplicationService_CommitSale_ConflictExhausted(t *testing.T) {
	fx := newSaleFixture(map[string]int{productA: 10})
	fx.ledgers.conflictsLeft = maxCommitAttempts

	_, err := fx.svc.CommitSale(context.Background(), CommitSaleCommand{
		StoreID:  "store-1",
		StaffID:  "staff-7",
		Currency: "USD",
		Lines:    []CartLineInput{{ProductID: productA, Quantity: 2, UnitPriceCents: 1599}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	ledger, _ := fx.ledgers.FindByStoreProduct(context.Background(), "store-1", productA)
	assert.Equal(t, 10, ledger.Quantity)
	assert.Empty(t, fx.sales.sales)
}

func TestSaleApplicationService_GetSale(t *testing.T) {
	fx := newSaleFixture(map[string]int{productA: 10})

	dto, err := fx.svc.CommitSale(context.Background(), CommitSaleCommand{
		StoreID:  "store-1",
		StaffID:  "staff-7",
		Currency: "USD",
		Lines:    []CartLineInput{{ProductID: productA, Quantity: 1, UnitPriceCents: 1599}},
	})
	require.NoError(t, err)

	got, err := fx.svc.GetSale(context.Background(), GetSaleQuery{TransactionID: dto.TransactionID})
	require.NoError(t, err)
	assert.Equal(t, dto.TransactionID, got.TransactionID)
	assert.Equal(t, dto.TotalAmount, got.TotalAmount)

	_, err = fx.svc.GetSale(context.Background(), GetSaleQuery{TransactionID: "TXN-MISSING"})
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}
