package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/retail-platform/sales-service/internal/domain"
	sharedMongo "github.com/retail-platform/sales-service/pkg/mongodb"
)

// SaleRepository persists committed sales in the sales collection. The
// unique transaction id index makes Insert fail on a replay instead of
// overwriting the original record.
type SaleRepository struct {
	collection *mongo.Collection
}

func NewSaleRepository(db *mongo.Database) *SaleRepository {
	repo := &SaleRepository{
		collection: db.Collection("sales"),
	}
	repo.ensureIndexes(context.Background())

	return repo
}

func (r *SaleRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    sharedMongo.SortAscending("transactionId"),
			Options: options.Index().SetUnique(true),
		},
		{Keys: sharedMongo.SortMultiple(
			sharedMongo.SortField{Field: "storeId"},
			sharedMongo.SortField{Field: "saleDate", Descending: true},
		)},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *SaleRepository) Insert(ctx context.Context, sale *domain.SaleRecord) error {
	_, err := r.collection.InsertOne(ctx, sale)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.SaleRecord, error) {
	filter := sharedMongo.BuildFilter("transactionId", transactionID)

	var sale domain.SaleRecord
	err := r.collection.FindOne(ctx, filter).Decode(&sale)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}

	return &sale, nil
}

func (r *SaleRepository) FindByStore(ctx context.Context, storeID string, limit, offset int) ([]*domain.SaleRecord, error) {
	filter := sharedMongo.BuildFilter("storeId", storeID)

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(sharedMongo.SortDescending("saleDate"))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find sales: %w", err)
	}
	defer cursor.Close(ctx)

	sales := make([]*domain.SaleRecord, 0)
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("failed to decode sales: %w", err)
	}

	return sales, nil
}
