package application

import (
	"context"
	"fmt"

	"github.com/retail-platform/sales-service/internal/domain"
)

// CartValidator checks an untrusted cart against the product catalog and
// the store's stock ledgers. Validation is read-only; the checks run per
// line in a fixed order (identifier, catalog, ledger, sufficiency, price)
// and the first failure aborts the whole cart.
type CartValidator struct {
	catalog domain.ProductCatalog
	ledgers domain.LedgerRepository
}

// NewCartValidator creates a new CartValidator
func NewCartValidator(catalog domain.ProductCatalog, ledgers domain.LedgerRepository) *CartValidator {
	return &CartValidator{catalog: catalog, ledgers: ledgers}
}

// Validate resolves every cart line to a server-trusted snapshot. The
// returned lines carry catalog prices; the client-asserted unit price is
// only compared against the catalog within the one-cent tolerance.
func (v *CartValidator) Validate(ctx context.Context, storeID string, lines []domain.CartLine) ([]domain.ValidatedLine, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	validated := make([]domain.ValidatedLine, 0, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("line %d: %w", i, domain.ErrInvalidQuantity)
		}

		productID, err := domain.NormalizeProductID(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", i, line.ProductID, err)
		}

		product, err := v.catalog.Lookup(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", i, productID, err)
		}

		ledger, err := v.ledgers.FindByStoreProduct(ctx, storeID, productID)
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", i, productID, err)
		}
		if ledger == nil {
			return nil, fmt.Errorf("line %d (%s): %w", i, productID, domain.ErrProductNotStocked)
		}

		if ledger.Quantity < line.Quantity {
			return nil, fmt.Errorf("line %d (%s): requested %d, available %d: %w",
				i, productID, line.Quantity, ledger.Quantity, domain.ErrInsufficientStock)
		}

		if !product.Price.WithinTolerance(line.UnitPrice, domain.PriceToleranceCents) {
			return nil, fmt.Errorf("line %d (%s): asserted %s, catalog %s: %w",
				i, productID, line.UnitPrice, product.Price, domain.ErrPriceMismatch)
		}

		total, err := product.Price.Multiply(line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", i, productID, err)
		}

		validated = append(validated, domain.ValidatedLine{
			ProductID:  productID,
			Name:       product.Name,
			Category:   product.Category,
			Quantity:   line.Quantity,
			UnitPrice:  product.Price,
			TotalPrice: total,
			CostPrice:  product.CostPrice,
		})
	}

	return validated, nil
}
