package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/retail-platform/sales-service/internal/domain"
	sharedMongo "github.com/retail-platform/sales-service/pkg/mongodb"
)

// LedgerRepository persists StockLedger aggregates in the stock_ledgers
// collection. Saves enforce the aggregate's optimistic concurrency token:
// a write that no longer matches the loaded version fails with
// domain.ErrConflict instead of silently overwriting.
type LedgerRepository struct {
	collection *mongo.Collection
}

func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	repo := &LedgerRepository{
		collection: db.Collection("stock_ledgers"),
	}
	repo.ensureIndexes(context.Background())

	return repo
}

func (r *LedgerRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		// One ledger per (store, product)
		{
			Keys: sharedMongo.SortMultiple(
				sharedMongo.SortField{Field: "storeId"},
				sharedMongo.SortField{Field: "productId"},
			),
			Options: options.Index().SetUnique(true),
		},
		{Keys: sharedMongo.SortMultiple(
			sharedMongo.SortField{Field: "storeId"},
			sharedMongo.SortField{Field: "quantity"},
		)},
		{Keys: sharedMongo.SortMultiple(
			sharedMongo.SortField{Field: "storeId"},
			sharedMongo.SortField{Field: "updatedAt", Descending: true},
		)},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *LedgerRepository) FindByStoreProduct(ctx context.Context, storeID, productID string) (*domain.StockLedger, error) {
	filter := sharedMongo.BuildFilter("storeId", storeID, "productId", productID)

	var ledger domain.StockLedger
	err := r.collection.FindOne(ctx, filter).Decode(&ledger)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ledger: %w", err)
	}

	return &ledger, nil
}

func (r *LedgerRepository) FindByStore(ctx context.Context, storeID string, limit, offset int) ([]*domain.StockLedger, error) {
	filter := sharedMongo.BuildFilter("storeId", storeID)

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(sharedMongo.SortDescending("updatedAt"))

	return r.findMany(ctx, filter, opts)
}

func (r *LedgerRepository) FindLowStock(ctx context.Context, storeID string) ([]*domain.StockLedger, error) {
	// Quantity at or below the per-ledger reorder level, but not depleted
	filter := bson.M{
		"storeId":  storeID,
		"quantity": bson.M{"$gt": 0},
		"$expr":    bson.M{"$lte": bson.A{"$quantity", "$reorderLevel"}},
	}
	return r.findMany(ctx, filter, options.Find().SetSort(sharedMongo.SortAscending("quantity")))
}

func (r *LedgerRepository) FindOutOfStock(ctx context.Context, storeID string) ([]*domain.StockLedger, error) {
	filter := bson.M{
		"storeId":  storeID,
		"quantity": 0,
	}
	return r.findMany(ctx, filter, options.Find().SetSort(sharedMongo.SortDescending("updatedAt")))
}

func (r *LedgerRepository) FindOverstock(ctx context.Context, storeID string) ([]*domain.StockLedger, error) {
	filter := bson.M{
		"storeId": storeID,
		"$expr":   bson.M{"$gte": bson.A{"$quantity", "$maxStock"}},
	}
	return r.findMany(ctx, filter, options.Find().SetSort(sharedMongo.SortDescending("quantity")))
}

func (r *LedgerRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.StockLedger, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find ledgers: %w", err)
	}
	defer cursor.Close(ctx)

	ledgers := make([]*domain.StockLedger, 0)
	if err := cursor.All(ctx, &ledgers); err != nil {
		return nil, fmt.Errorf("failed to decode ledgers: %w", err)
	}

	return ledgers, nil
}

// Save inserts a new ledger or updates an existing one with a version
// compare-and-set. A concurrent writer that bumped the version first
// causes domain.ErrConflict; the caller re-reads and retries.
func (r *LedgerRepository) Save(ctx context.Context, ledger *domain.StockLedger) error {
	ledger.UpdatedAt = time.Now().UTC()

	if ledger.Version == 0 {
		ledger.Version = 1
		if _, err := r.collection.InsertOne(ctx, ledger); err != nil {
			ledger.Version = 0
			if mongo.IsDuplicateKeyError(err) {
				// Another writer created this (store, product) first
				return domain.ErrConflict
			}
			return fmt.Errorf("failed to insert ledger: %w", err)
		}
		return nil
	}

	expected := ledger.Version
	ledger.Version++

	filter := sharedMongo.BuildFilter(
		"storeId", ledger.StoreID,
		"productId", ledger.ProductID,
		"version", expected,
	)

	result, err := r.collection.ReplaceOne(ctx, filter, ledger)
	if err != nil {
		ledger.Version = expected
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	if result.MatchedCount == 0 {
		ledger.Version = expected
		return domain.ErrConflict
	}

	return nil
}
