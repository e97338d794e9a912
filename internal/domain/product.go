package domain

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the server-trusted catalog snapshot of a sellable item. The
// catalog itself is maintained elsewhere; the sale engine only reads it.
type Product struct {
	ID        string `bson:"_id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Category  string `bson:"category,omitempty" json:"category,omitempty"`
	Price     Money  `bson:"price" json:"price"`
	CostPrice Money  `bson:"costPrice" json:"costPrice"`
}

// NormalizeProductID resolves an untrusted product identifier to its
// canonical form (24-char lowercase hex object id). Anything else is
// rejected as malformed.
func NormalizeProductID(raw string) (string, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(strings.ToLower(raw)))
	if err != nil {
		return "", ErrMalformedProductID
	}
	return id.Hex(), nil
}
