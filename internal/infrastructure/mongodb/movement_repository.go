package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/retail-platform/sales-service/internal/domain"
	sharedMongo "github.com/retail-platform/sales-service/pkg/mongodb"
)

// movementDocument is the stored shape of one stock movement, keyed back
// to its ledger. The collection is append-only: documents are inserted
// once and never updated or deleted.
type movementDocument struct {
	StoreID   string `bson:"storeId"`
	ProductID string `bson:"productId"`

	domain.StockMovement `bson:",inline"`
}

// MovementRepository is the audit trail of ledger changes, stored in the
// stock_movements collection.
type MovementRepository struct {
	collection *mongo.Collection
}

func NewMovementRepository(db *mongo.Database) *MovementRepository {
	repo := &MovementRepository{
		collection: db.Collection("stock_movements"),
	}
	repo.ensureIndexes(context.Background())

	return repo
}

func (r *MovementRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		// Per-ledger history, newest first
		{Keys: sharedMongo.SortMultiple(
			sharedMongo.SortField{Field: "storeId"},
			sharedMongo.SortField{Field: "productId"},
			sharedMongo.SortField{Field: "timestamp", Descending: true},
		)},
		// Lookup by reference (transaction id, PO number, transfer id)
		{Keys: sharedMongo.SortMultiple(
			sharedMongo.SortField{Field: "reference"},
			sharedMongo.SortField{Field: "timestamp", Descending: true},
		)},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *MovementRepository) AppendAll(ctx context.Context, storeID, productID string, movements []domain.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	docs := make([]interface{}, len(movements))
	for i, m := range movements {
		docs[i] = movementDocument{
			StoreID:       storeID,
			ProductID:     productID,
			StockMovement: m,
		}
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to append movements: %w", err)
	}
	return nil
}

func (r *MovementRepository) FindByStoreProduct(ctx context.Context, storeID, productID string, limit int) ([]domain.StockMovement, error) {
	filter := sharedMongo.BuildFilter("storeId", storeID, "productId", productID)

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(sharedMongo.SortDescending("timestamp"))

	return r.findMany(ctx, filter, opts)
}

func (r *MovementRepository) FindByReference(ctx context.Context, reference string) ([]domain.StockMovement, error) {
	filter := sharedMongo.BuildFilter("reference", reference)
	opts := options.Find().SetSort(sharedMongo.SortAscending("timestamp"))

	return r.findMany(ctx, filter, opts)
}

func (r *MovementRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.StockMovement, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find movements: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []movementDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode movements: %w", err)
	}

	movements := make([]domain.StockMovement, len(docs))
	for i, doc := range docs {
		movements[i] = doc.StockMovement
	}
	return movements, nil
}
