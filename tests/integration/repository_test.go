package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/retail-platform/sales-service/internal/domain"
	mongoRepo "github.com/retail-platform/sales-service/internal/infrastructure/mongodb"
	sharedtesting "github.com/retail-platform/sales-service/pkg/testing"
)

func setupTestDatabase(t *testing.T) (*mongo.Database, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	mongoContainer, err := sharedtesting.NewMongoDBContainer(ctx)
	require.NoError(t, err)

	client, err := mongoContainer.GetClient(ctx)
	require.NoError(t, err)

	db := client.Database("sales_test_db")

	cleanup := func() {
		if err := client.Disconnect(ctx); err != nil {
			t.Logf("failed to disconnect MongoDB client: %v", err)
		}
		if err := mongoContainer.Close(ctx); err != nil {
			t.Logf("failed to close MongoDB container: %v", err)
		}
	}

	return db, cleanup
}

func mustMoney(t *testing.T, cents int64) domain.Money {
	t.Helper()
	m, err := domain.NewMoney(cents, "USD")
	require.NoError(t, err)
	return m
}

func TestLedgerRepository_SaveAndFind(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	repo := mongoRepo.NewLedgerRepository(db)
	ctx, cancel := sharedtesting.CreateTestContext(30 * time.Second)
	defer cancel()

	t.Run("missing ledger returns nil without error", func(t *testing.T) {
		found, err := repo.FindByStoreProduct(ctx, "store-001", "ffffffffffffffffffffffff")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("insert then reload", func(t *testing.T) {
		ledger := domain.NewStockLedger("store-001", "aaaaaaaaaaaaaaaaaaaaaaaa", 10, 100)
		require.NoError(t, ledger.Receive(40, "initial delivery", "PO-1", "staff-1"))

		require.NoError(t, repo.Save(ctx, ledger))
		assert.Equal(t, int64(1), ledger.Version)

		found, err := repo.FindByStoreProduct(ctx, "store-001", "aaaaaaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, 40, found.Quantity)
		assert.Equal(t, int64(1), found.Version)
		assert.Equal(t, 10, found.ReorderLevel)
	})

	t.Run("duplicate insert for same store and product conflicts", func(t *testing.T) {
		dup := domain.NewStockLedger("store-001", "aaaaaaaaaaaaaaaaaaaaaaaa", 10, 100)
		err := repo.Save(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, int64(0), dup.Version)
	})

	t.Run("update bumps version", func(t *testing.T) {
		ledger, err := repo.FindByStoreProduct(ctx, "store-001", "aaaaaaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		require.NotNil(t, ledger)

		require.NoError(t, ledger.Deduct(5, "sale", "TXN-1", "staff-1"))
		require.NoError(t, repo.Save(ctx, ledger))

		found, err := repo.FindByStoreProduct(ctx, "store-001", "aaaaaaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		assert.Equal(t, 35, found.Quantity)
		assert.Equal(t, int64(2), found.Version)
	})

	t.Run("stale version save conflicts", func(t *testing.T) {
		first, err := repo.FindByStoreProduct(ctx, "store-001", "aaaaaaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		second, err := repo.FindByStoreProduct(ctx, "store-001", "aaaaaaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)

		require.NoError(t, first.Deduct(1, "sale", "TXN-2", "staff-1"))
		require.NoError(t, repo.Save(ctx, first))

		require.NoError(t, second.Deduct(1, "sale", "TXN-3", "staff-1"))
		err = repo.Save(ctx, second)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestLedgerRepository_StatusQueries(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	repo := mongoRepo.NewLedgerRepository(db)
	ctx, cancel := sharedtesting.CreateTestContext(30 * time.Second)
	defer cancel()

	seed := func(productID string, quantity, reorderLevel, maxStock int) {
		ledger := domain.NewStockLedger("store-002", productID, reorderLevel, maxStock)
		if quantity > 0 {
			require.NoError(t, ledger.Receive(quantity, "seed", "PO-seed", "staff-1"))
		}
		require.NoError(t, repo.Save(ctx, ledger))
	}

	seed("000000000000000000000001", 0, 10, 100)  // out of stock
	seed("000000000000000000000002", 5, 10, 100)  // low stock
	seed("000000000000000000000003", 150, 10, 100) // overstock
	seed("000000000000000000000004", 50, 10, 100) // healthy

	t.Run("out of stock", func(t *testing.T) {
		ledgers, err := repo.FindOutOfStock(ctx, "store-002")
		require.NoError(t, err)
		require.Len(t, ledgers, 1)
		assert.Equal(t, "000000000000000000000001", ledgers[0].ProductID)
	})

	t.Run("low stock excludes empty ledgers", func(t *testing.T) {
		ledgers, err := repo.FindLowStock(ctx, "store-002")
		require.NoError(t, err)
		require.Len(t, ledgers, 1)
		assert.Equal(t, "000000000000000000000002", ledgers[0].ProductID)
	})

	t.Run("overstock", func(t *testing.T) {
		ledgers, err := repo.FindOverstock(ctx, "store-002")
		require.NoError(t, err)
		require.Len(t, ledgers, 1)
		assert.Equal(t, "000000000000000000000003", ledgers[0].ProductID)
	})

	t.Run("list by store", func(t *testing.T) {
		ledgers, err := repo.FindByStore(ctx, "store-002", 10, 0)
		require.NoError(t, err)
		assert.Len(t, ledgers, 4)
	})
}

func TestMovementRepository_AppendAndQuery(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	repo := mongoRepo.NewMovementRepository(db)
	ctx, cancel := sharedtesting.CreateTestContext(30 * time.Second)
	defer cancel()

	ledger := domain.NewStockLedger("store-003", "bbbbbbbbbbbbbbbbbbbbbbbb", 10, 100)
	require.NoError(t, ledger.Receive(30, "delivery", "PO-7", "staff-1"))
	require.NoError(t, ledger.Deduct(4, "sale", "TXN-9", "staff-2"))

	movements := ledger.TakePendingMovements()
	require.Len(t, movements, 2)
	require.NoError(t, repo.AppendAll(ctx, "store-003", "bbbbbbbbbbbbbbbbbbbbbbbb", movements))

	t.Run("history is newest first", func(t *testing.T) {
		history, err := repo.FindByStoreProduct(ctx, "store-003", "bbbbbbbbbbbbbbbbbbbbbbbb", 10)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, domain.MovementOut, history[0].Type)
		assert.Equal(t, -4, history[0].Delta)
		assert.Equal(t, domain.MovementIn, history[1].Type)
		assert.Equal(t, 30, history[1].Delta)
	})

	t.Run("lookup by reference", func(t *testing.T) {
		byRef, err := repo.FindByReference(ctx, "TXN-9")
		require.NoError(t, err)
		require.Len(t, byRef, 1)
		assert.Equal(t, "staff-2", byRef[0].PerformedBy)
	})

	t.Run("empty append is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.AppendAll(ctx, "store-003", "bbbbbbbbbbbbbbbbbbbbbbbb", nil))
	})
}

func TestSaleRepository_InsertAndFind(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	repo := mongoRepo.NewSaleRepository(db)
	ctx, cancel := sharedtesting.CreateTestContext(30 * time.Second)
	defer cancel()

	lines := []domain.ValidatedLine{
		{
			ProductID:  "cccccccccccccccccccccccc",
			Name:       "Espresso Beans 1kg",
			Category:   "coffee",
			Quantity:   2,
			UnitPrice:  mustMoney(t, 1599),
			TotalPrice: mustMoney(t, 3198),
			CostPrice:  mustMoney(t, 900),
		},
	}

	sale, err := domain.NewSaleRecord(domain.NewTransactionID(), "store-004", "staff-1", "", lines)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, sale))

	t.Run("find by transaction id", func(t *testing.T) {
		found, err := repo.FindByTransactionID(ctx, sale.TransactionID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, int64(3198), found.TotalAmount.Amount)
		assert.Equal(t, domain.SaleStatusCompleted, found.Status)
		require.Len(t, found.Items, 1)
		assert.Equal(t, "Espresso Beans 1kg", found.Items[0].Name)
	})

	t.Run("duplicate transaction id conflicts", func(t *testing.T) {
		dup, err := domain.NewSaleRecord(sale.TransactionID, "store-004", "staff-1", "", lines)
		require.NoError(t, err)
		err = repo.Insert(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("missing transaction returns nil", func(t *testing.T) {
		found, err := repo.FindByTransactionID(ctx, "TXN-MISSING")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("list by store", func(t *testing.T) {
		sales, err := repo.FindByStore(ctx, "store-004", 10, 0)
		require.NoError(t, err)
		assert.Len(t, sales, 1)
	})
}
