package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/retail-platform/sales-service/internal/domain"
)

// ProductCatalog is the read-only view over the products collection,
// maintained by the catalog service. Product ids are stored as canonical
// 24-char hex strings so lookups use the already-normalized id directly.
type ProductCatalog struct {
	collection *mongo.Collection
}

func NewProductCatalog(db *mongo.Database) *ProductCatalog {
	return &ProductCatalog{
		collection: db.Collection("products"),
	}
}

func (c *ProductCatalog) Lookup(ctx context.Context, productID string) (*domain.Product, error) {
	var product domain.Product
	err := c.collection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	return &product, nil
}
