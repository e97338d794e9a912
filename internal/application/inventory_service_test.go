package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail-platform/sales-service/internal/domain"
)

type inventoryFixture struct {
	svc       *InventoryApplicationService
	ledgers   *fakeLedgerRepo
	movements *fakeMovementRepo
	outbox    *fakeOutboxRepo
}

func newInventoryFixture(quantities map[string]int) *inventoryFixture {
	ledgers := stockedLedgers("store-1", quantities)
	movements := &fakeMovementRepo{}
	ob := &fakeOutboxRepo{}
	uow := &fakeUnitOfWork{ledgers: ledgers, movements: movements, sales: newFakeSaleRepo(), outbox: ob}

	svc := NewInventoryApplicationService(uow, ledgers, movements, testLogger())
	return &inventoryFixture{svc: svc, ledgers: ledgers, movements: movements, outbox: ob}
}

func TestInventoryApplicationService_ReceiveStock_LazyCreate(t *testing.T) {
	fx := newInventoryFixture(nil)

	dto, err := fx.svc.ReceiveStock(context.Background(), ReceiveStockCommand{
		StoreID:     "store-1",
		ProductID:   productA,
		Quantity:    25,
		Reference:   "PO-1001",
		PerformedBy: "staff-7",
	})
	require.NoError(t, err)

	assert.Equal(t, 25, dto.Quantity)
	// thresholds fall back to defaults on lazy creation
	assert.Equal(t, domain.DefaultReorderLevel, dto.ReorderLevel)
	assert.Equal(t, domain.DefaultMaxStock, dto.MaxStock)
	assert.Equal(t, string(domain.StatusInStock), dto.Status)

	movements, err := fx.svc.ListMovements(context.Background(), ListMovementsQuery{
		StoreID: "store-1", ProductID: productA, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, string(domain.MovementIn), movements[0].Type)
	assert.Equal(t, 25, movements[0].Delta)
	assert.Equal(t, domain.ReasonDelivery, movements[0].Reason)
	assert.Equal(t, "PO-1001", movements[0].Reference)

	// received event goes to the outbox
	require.Len(t, fx.outbox.events, 1)
	assert.Equal(t, "inventory.received", fx.outbox.events[0].EventType)
}

func TestInventoryApplicationService_ReceiveStock_MalformedID(t *testing.T) {
	fx := newInventoryFixture(nil)

	_, err := fx.svc.ReceiveStock(context.Background(), ReceiveStockCommand{
		StoreID: "store-1", ProductID: "bogus", Quantity: 5, PerformedBy: "staff-7",
	})
	assert.ErrorIs(t, err, domain.ErrMalformedProductID)
}

func TestInventoryApplicationService_AdjustStock(t *testing.T) {
	fx := newInventoryFixture(map[string]int{productA: 12})

	dto, err := fx.svc.AdjustStock(context.Background(), AdjustStockCommand{
		StoreID:     "store-1",
		ProductID:   productA,
		NewQuantity: 9,
		Reference:   "CC-7",
		PerformedBy: "manager-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 9, dto.Quantity)

	movements, _ := fx.svc.ListMovements(context.Background(), ListMovementsQuery{
		StoreID: "store-1", ProductID: productA, Limit: 10,
	})
	require.Len(t, movements, 1)
	assert.Equal(t, string(domain.MovementAdjustment), movements[0].Type)
	assert.Equal(t, 3, movements[0].Quantity)
	assert.Equal(t, -3, movements[0].Delta)
	assert.Equal(t, domain.ReasonCycleCount, movements[0].Reason)
}

func TestInventoryApplicationService_AdjustStock_NotFound(t *testing.T) {
	fx := newInventoryFixture(nil)

	_, err := fx.svc.AdjustStock(context.Background(), AdjustStockCommand{
		StoreID: "store-1", ProductID: productA, NewQuantity: 5, PerformedBy: "manager-1",
	})
	assert.ErrorIs(t, err, domain.ErrLedgerNotFound)
}

func TestInventoryApplicationService_TransferStock(t *testing.T) {
	fx := newInventoryFixture(map[string]int{productA: 10})

	src, err := fx.svc.TransferStock(context.Background(), TransferStockCommand{
		FromStoreID: "store-1",
		ToStoreID:   "store-2",
		ProductID:   productA,
		Quantity:    4,
		PerformedBy: "manager-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, src.Quantity)

	dst, err := fx.svc.GetLedger(context.Background(), GetLedgerQuery{StoreID: "store-2", ProductID: productA})
	require.NoError(t, err)
	assert.Equal(t, 4, dst.Quantity)
	assert.Equal(t, domain.DefaultReorderLevel, dst.ReorderLevel)

	// both legs share one transfer reference
	outMoves, _ := fx.svc.ListMovements(context.Background(), ListMovementsQuery{StoreID: "store-1", ProductID: productA, Limit: 10})
	inMoves, _ := fx.svc.ListMovements(context.Background(), ListMovementsQuery{StoreID: "store-2", ProductID: productA, Limit: 10})
	require.Len(t, outMoves, 1)
	require.Len(t, inMoves, 1)
	assert.Equal(t, outMoves[0].Reference, inMoves[0].Reference)
	assert.Equal(t, -4, outMoves[0].Delta)
	assert.Equal(t, 4, inMoves[0].Delta)
}

func TestInventoryApplicationService_TransferStock_Underflow(t *testing.T) {
	fx := newInventoryFixture(map[string]int{productA: 2})

	_, err := fx.svc.TransferStock(context.Background(), TransferStockCommand{
		FromStoreID: "store-1",
		ToStoreID:   "store-2",
		ProductID:   productA,
		Quantity:    5,
		PerformedBy: "manager-1",
	})
	assert.ErrorIs(t, err, domain.ErrStockUnderflow)

	// nothing committed on either side
	src, _ := fx.svc.GetLedger(context.Background(), GetLedgerQuery{StoreID: "store-1", ProductID: productA})
	assert.Equal(t, 2, src.Quantity)
	_, err = fx.svc.GetLedger(context.Background(), GetLedgerQuery{StoreID: "store-2", ProductID: productA})
	assert.ErrorIs(t, err, domain.ErrLedgerNotFound)
	assert.Empty(t, fx.movements.entries)
}

func TestInventoryApplicationService_UpdateThresholds(t *testing.T) {
	fx := newInventoryFixture(map[string]int{productA: 10})

	dto, err := fx.svc.UpdateThresholds(context.Background(), UpdateThresholdsCommand{
		StoreID:      "store-1",
		ProductID:    productA,
		ReorderLevel: 12,
		MaxStock:     40,
		PerformedBy:  "manager-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, dto.ReorderLevel)
	assert.Equal(t, 40, dto.MaxStock)
	// quantity 10 is now at or below the new reorder level
	assert.Equal(t, string(domain.StatusLowStock), dto.Status)
}

func TestInventoryApplicationService_StatusQueries(t *testing.T) {
	fx := newInventoryFixture(map[string]int{
		productA: 0,   // out of stock
		productB: 3,   // low (reorder level 5)
		unknownP: 150, // overstock (max 100)
	})

	low, err := fx.svc.GetLowStock(context.Background(), "store-1")
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, productB, low[0].ProductID)

	out, err := fx.svc.GetOutOfStock(context.Background(), "store-1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, productA, out[0].ProductID)

	over, err := fx.svc.GetOverstock(context.Background(), "store-1")
	require.NoError(t, err)
	require.Len(t, over, 1)
	assert.Equal(t, unknownP, over[0].ProductID)
}
