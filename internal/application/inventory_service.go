package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/retail-platform/sales-service/internal/domain"
	"github.com/retail-platform/sales-service/pkg/logging"
	"github.com/retail-platform/sales-service/pkg/outbox"
)

// InventoryApplicationService handles stock-keeping use cases outside the
// sale path: replenishment, corrections, transfers and read queries. All
// writes go through the same ledger + movement-log path the sale
// coordinator uses, so there is a single audit trail.
type InventoryApplicationService struct {
	uow       UnitOfWork
	ledgers   domain.LedgerRepository
	movements domain.MovementRepository
	logger    *logging.Logger
}

// NewInventoryApplicationService creates a new InventoryApplicationService
func NewInventoryApplicationService(
	uow UnitOfWork,
	ledgers domain.LedgerRepository,
	movements domain.MovementRepository,
	logger *logging.Logger,
) *InventoryApplicationService {
	return &InventoryApplicationService{
		uow:       uow,
		ledgers:   ledgers,
		movements: movements,
		logger:    logger,
	}
}

// ReceiveStock books inbound stock. The ledger is created lazily on the
// first inbound movement for a (store, product) pair.
func (s *InventoryApplicationService) ReceiveStock(ctx context.Context, cmd ReceiveStockCommand) (*LedgerDTO, error) {
	productID, err := domain.NormalizeProductID(cmd.ProductID)
	if err != nil {
		return nil, err
	}
	reason := cmd.Reason
	if reason == "" {
		reason = domain.ReasonDelivery
	}

	var ledger *domain.StockLedger
	err = s.withConflictRetry(ctx, func(ctx context.Context, repos RepositorySet) error {
		var err error
		ledger, err = repos.Ledgers.FindByStoreProduct(ctx, cmd.StoreID, productID)
		if err != nil {
			return err
		}
		if ledger == nil {
			ledger = domain.NewStockLedger(cmd.StoreID, productID, cmd.ReorderLevel, cmd.MaxStock)
		}
		if err := ledger.Receive(cmd.Quantity, reason, cmd.Reference, cmd.PerformedBy); err != nil {
			return err
		}
		return s.saveWithMovements(ctx, repos, ledger)
	})
	if err != nil {
		s.logger.Error("Failed to receive stock", "storeId", cmd.StoreID, "productId", productID, "error", err)
		return nil, err
	}

	s.logger.Info("Received stock", "storeId", cmd.StoreID, "productId", productID, "quantity", cmd.Quantity, "reference", cmd.Reference)
	return ToLedgerDTO(ledger), nil
}

// AdjustStock corrects a ledger to a counted quantity.
func (s *InventoryApplicationService) AdjustStock(ctx context.Context, cmd AdjustStockCommand) (*LedgerDTO, error) {
	productID, err := domain.NormalizeProductID(cmd.ProductID)
	if err != nil {
		return nil, err
	}
	reason := cmd.Reason
	if reason == "" {
		reason = domain.ReasonCycleCount
	}

	var ledger *domain.StockLedger
	err = s.withConflictRetry(ctx, func(ctx context.Context, repos RepositorySet) error {
		var err error
		ledger, err = repos.Ledgers.FindByStoreProduct(ctx, cmd.StoreID, productID)
		if err != nil {
			return err
		}
		if ledger == nil {
			return domain.ErrLedgerNotFound
		}
		if err := ledger.AdjustTo(cmd.NewQuantity, reason, cmd.Reference, cmd.PerformedBy); err != nil {
			return err
		}
		return s.saveWithMovements(ctx, repos, ledger)
	})
	if err != nil {
		s.logger.Error("Failed to adjust stock", "storeId", cmd.StoreID, "productId", productID, "error", err)
		return nil, err
	}

	s.logger.Info("Adjusted stock", "storeId", cmd.StoreID, "productId", productID, "newQuantity", cmd.NewQuantity, "reason", reason)
	return ToLedgerDTO(ledger), nil
}

// TransferStock moves stock between two stores in one atomic unit. The
// source must already stock the product; the destination ledger is
// created lazily. Both movements carry the same transfer reference.
func (s *InventoryApplicationService) TransferStock(ctx context.Context, cmd TransferStockCommand) (*LedgerDTO, error) {
	productID, err := domain.NormalizeProductID(cmd.ProductID)
	if err != nil {
		return nil, err
	}
	reference := "TRF-" + uuid.New().String()[:8]

	var src *domain.StockLedger
	err = s.withConflictRetry(ctx, func(ctx context.Context, repos RepositorySet) error {
		var err error
		src, err = repos.Ledgers.FindByStoreProduct(ctx, cmd.FromStoreID, productID)
		if err != nil {
			return err
		}
		if src == nil {
			return domain.ErrLedgerNotFound
		}
		dst, err := repos.Ledgers.FindByStoreProduct(ctx, cmd.ToStoreID, productID)
		if err != nil {
			return err
		}
		if dst == nil {
			dst = domain.NewStockLedger(cmd.ToStoreID, productID, 0, 0)
		}

		if err := src.TransferOut(cmd.Quantity, reference, cmd.PerformedBy); err != nil {
			return err
		}
		if err := dst.TransferIn(cmd.Quantity, reference, cmd.PerformedBy); err != nil {
			return err
		}

		if err := s.saveWithMovements(ctx, repos, src); err != nil {
			return err
		}
		return s.saveWithMovements(ctx, repos, dst)
	})
	if err != nil {
		s.logger.Error("Failed to transfer stock", "fromStoreId", cmd.FromStoreID, "toStoreId", cmd.ToStoreID, "productId", productID, "error", err)
		return nil, err
	}

	s.logger.Info("Transferred stock", "fromStoreId", cmd.FromStoreID, "toStoreId", cmd.ToStoreID, "productId", productID, "quantity", cmd.Quantity, "reference", reference)
	return ToLedgerDTO(src), nil
}

// UpdateThresholds changes a ledger's reorder level and max stock.
func (s *InventoryApplicationService) UpdateThresholds(ctx context.Context, cmd UpdateThresholdsCommand) (*LedgerDTO, error) {
	productID, err := domain.NormalizeProductID(cmd.ProductID)
	if err != nil {
		return nil, err
	}

	var ledger *domain.StockLedger
	err = s.withConflictRetry(ctx, func(ctx context.Context, repos RepositorySet) error {
		var err error
		ledger, err = repos.Ledgers.FindByStoreProduct(ctx, cmd.StoreID, productID)
		if err != nil {
			return err
		}
		if ledger == nil {
			return domain.ErrLedgerNotFound
		}
		if err := ledger.SetThresholds(cmd.ReorderLevel, cmd.MaxStock, cmd.PerformedBy); err != nil {
			return err
		}
		return repos.Ledgers.Save(ctx, ledger)
	})
	if err != nil {
		s.logger.Error("Failed to update thresholds", "storeId", cmd.StoreID, "productId", productID, "error", err)
		return nil, err
	}

	s.logger.Info("Updated thresholds", "storeId", cmd.StoreID, "productId", productID, "reorderLevel", cmd.ReorderLevel, "maxStock", cmd.MaxStock)
	return ToLedgerDTO(ledger), nil
}

// GetLedger retrieves one ledger by store and product
func (s *InventoryApplicationService) GetLedger(ctx context.Context, query GetLedgerQuery) (*LedgerDTO, error) {
	productID, err := domain.NormalizeProductID(query.ProductID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.ledgers.FindByStoreProduct(ctx, query.StoreID, productID)
	if err != nil {
		s.logger.Error("Failed to get ledger", "storeId", query.StoreID, "productId", productID, "error", err)
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	if ledger == nil {
		return nil, domain.ErrLedgerNotFound
	}
	return ToLedgerDTO(ledger), nil
}

// ListLedgers lists a store's ledgers with pagination
func (s *InventoryApplicationService) ListLedgers(ctx context.Context, query ListLedgersQuery) ([]LedgerDTO, error) {
	ledgers, err := s.ledgers.FindByStore(ctx, query.StoreID, query.Limit, query.Offset)
	if err != nil {
		s.logger.Error("Failed to list ledgers", "storeId", query.StoreID, "error", err)
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	return ToLedgerDTOs(ledgers), nil
}

// ListMovements reads a ledger's movement history, newest first
func (s *InventoryApplicationService) ListMovements(ctx context.Context, query ListMovementsQuery) ([]MovementDTO, error) {
	productID, err := domain.NormalizeProductID(query.ProductID)
	if err != nil {
		return nil, err
	}
	movements, err := s.movements.FindByStoreProduct(ctx, query.StoreID, productID, query.Limit)
	if err != nil {
		s.logger.Error("Failed to list movements", "storeId", query.StoreID, "productId", productID, "error", err)
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return ToMovementDTOs(movements), nil
}

// GetLowStock lists a store's ledgers at or below their reorder level
func (s *InventoryApplicationService) GetLowStock(ctx context.Context, storeID string) ([]LedgerDTO, error) {
	ledgers, err := s.ledgers.FindLowStock(ctx, storeID)
	if err != nil {
		s.logger.Error("Failed to get low stock", "storeId", storeID, "error", err)
		return nil, fmt.Errorf("failed to get low stock: %w", err)
	}
	return ToLedgerDTOs(ledgers), nil
}

// GetOutOfStock lists a store's empty ledgers
func (s *InventoryApplicationService) GetOutOfStock(ctx context.Context, storeID string) ([]LedgerDTO, error) {
	ledgers, err := s.ledgers.FindOutOfStock(ctx, storeID)
	if err != nil {
		s.logger.Error("Failed to get out of stock", "storeId", storeID, "error", err)
		return nil, fmt.Errorf("failed to get out of stock: %w", err)
	}
	return ToLedgerDTOs(ledgers), nil
}

// GetOverstock lists a store's ledgers at or above their max stock
func (s *InventoryApplicationService) GetOverstock(ctx context.Context, storeID string) ([]LedgerDTO, error) {
	ledgers, err := s.ledgers.FindOverstock(ctx, storeID)
	if err != nil {
		s.logger.Error("Failed to get overstock", "storeId", storeID, "error", err)
		return nil, fmt.Errorf("failed to get overstock: %w", err)
	}
	return ToLedgerDTOs(ledgers), nil
}

// saveWithMovements persists a mutated ledger, appends its pending
// movements to the log and writes its domain events to the outbox, all
// within the ambient unit.
func (s *InventoryApplicationService) saveWithMovements(ctx context.Context, repos RepositorySet, ledger *domain.StockLedger) error {
	if err := repos.Ledgers.Save(ctx, ledger); err != nil {
		return err
	}
	if err := repos.Movements.AppendAll(ctx, ledger.StoreID, ledger.ProductID, ledger.TakePendingMovements()); err != nil {
		return err
	}

	events := ledger.TakeDomainEvents()
	if repos.Outbox == nil || len(events) == 0 {
		return nil
	}
	outboxEvents := make([]*outbox.OutboxEvent, 0, len(events))
	for _, event := range events {
		oe, err := outbox.NewOutboxEvent(ledger.StoreID+":"+ledger.ProductID, "stock_ledger", TopicInventoryAlerts, event)
		if err != nil {
			return err
		}
		outboxEvents = append(outboxEvents, oe)
	}
	return repos.Outbox.SaveAll(ctx, outboxEvents)
}

// withConflictRetry executes fn inside the unit of work, retrying a
// bounded number of times when the commit loses an optimistic race.
func (s *InventoryApplicationService) withConflictRetry(ctx context.Context, fn func(ctx context.Context, repos RepositorySet) error) error {
	var err error
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		err = s.uow.Execute(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		s.logger.Warn("Stock update conflicted, retrying", "attempt", attempt)
	}
	return err
}
