package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retail-platform/sales-service/internal/domain"
	"github.com/retail-platform/sales-service/pkg/logging"
	"github.com/retail-platform/sales-service/pkg/metrics"
	"github.com/retail-platform/sales-service/pkg/outbox"
)

// Kafka topics the outbox publisher drains events to.
const (
	TopicSales           = "retail.sales"
	TopicInventoryAlerts = "retail.inventory.alerts"
)

// maxCommitAttempts bounds the retry loop on optimistic concurrency
// conflicts. Each attempt re-reads the ledgers inside a fresh transaction.
const maxCommitAttempts = 3

// SaleApplicationService coordinates sale transactions: validation,
// total reconciliation, and the atomic commit of ledger decrements,
// movement log entries and the sale record.
type SaleApplicationService struct {
	validator *CartValidator
	uow       UnitOfWork
	sales     domain.SaleRepository
	receipts  ReceiptBoundary
	metrics   *metrics.Metrics // optional
	logger    *logging.Logger
}

// NewSaleApplicationService creates a new SaleApplicationService
func NewSaleApplicationService(
	validator *CartValidator,
	uow UnitOfWork,
	sales domain.SaleRepository,
	receipts ReceiptBoundary,
	m *metrics.Metrics,
	logger *logging.Logger,
) *SaleApplicationService {
	return &SaleApplicationService{
		validator: validator,
		uow:       uow,
		sales:     sales,
		receipts:  receipts,
		metrics:   m,
		logger:    logger,
	}
}

// CommitSale validates the cart, reconciles the client-asserted total and
// commits the sale atomically. Every line's ledger is decremented, every
// decrement appends a movement, and the sale record is inserted in the
// same unit; no partial outcome is ever visible. Conflicting concurrent
// updates are retried a bounded number of times.
func (s *SaleApplicationService) CommitSale(ctx context.Context, cmd CommitSaleCommand) (*SaleDTO, error) {
	start := time.Now()

	lines := make([]domain.CartLine, 0, len(cmd.Lines))
	for _, in := range cmd.Lines {
		lines = append(lines, domain.CartLine{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: domain.Money{Amount: in.UnitPriceCents, Currency: cmd.Currency},
		})
	}

	validated, err := s.validator.Validate(ctx, cmd.StoreID, lines)
	if err != nil {
		s.recordFailure("validation")
		return nil, err
	}

	if cmd.AssertedTotalCents != nil {
		var serverTotal int64
		for _, line := range validated {
			serverTotal += line.TotalPrice.Amount
		}
		diff := serverTotal - *cmd.AssertedTotalCents
		if diff < 0 {
			diff = -diff
		}
		if diff > domain.PriceToleranceCents {
			s.recordFailure("total_mismatch")
			return nil, fmt.Errorf("asserted %d, computed %d: %w",
				*cmd.AssertedTotalCents, serverTotal, domain.ErrTotalMismatch)
		}
	}

	transactionID := domain.NewTransactionID()

	var sale *domain.SaleRecord
	for attempt := 1; ; attempt++ {
		sale, err = s.commitOnce(ctx, cmd, validated, transactionID)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= maxCommitAttempts {
			s.logger.Error("Sale commit failed", "transactionId", transactionID, "storeId", cmd.StoreID, "attempt", attempt, "error", err)
			s.recordFailure(failureReason(err))
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.RecordCommitConflictRetry()
		}
		s.logger.Warn("Sale commit conflicted, retrying", "transactionId", transactionID, "storeId", cmd.StoreID, "attempt", attempt)
	}

	if s.metrics != nil {
		s.metrics.RecordSaleCommitted(cmd.StoreID, len(sale.Items))
	}
	s.logger.SaleCommitted(ctx, sale.TransactionID, sale.StoreID, len(sale.Items), sale.TotalAmount.Amount, time.Since(start))

	dto := ToSaleDTO(sale)
	if s.receipts != nil {
		dto.ReceiptURL = s.receipts.ReceiptURL(sale)
	}
	return dto, nil
}

// commitOnce runs one attempt of the atomic commit. The ledgers are
// re-read inside the transaction so the stock-sufficiency decision is
// always made against committed state; the guarded Deduct plus the
// version check on Save make oversell impossible even under races.
func (s *SaleApplicationService) commitOnce(
	ctx context.Context,
	cmd CommitSaleCommand,
	validated []domain.ValidatedLine,
	transactionID string,
) (*domain.SaleRecord, error) {
	var sale *domain.SaleRecord

	err := s.uow.Execute(ctx, func(ctx context.Context, repos RepositorySet) error {
		ledgers := make(map[string]*domain.StockLedger)
		order := make([]string, 0, len(validated))

		for _, line := range validated {
			ledger, ok := ledgers[line.ProductID]
			if !ok {
				var err error
				ledger, err = repos.Ledgers.FindByStoreProduct(ctx, cmd.StoreID, line.ProductID)
				if err != nil {
					return err
				}
				if ledger == nil {
					return fmt.Errorf("%s: %w", line.ProductID, domain.ErrProductNotStocked)
				}
				ledgers[line.ProductID] = ledger
				order = append(order, line.ProductID)
			}

			if err := ledger.Deduct(line.Quantity, domain.ReasonSale, transactionID, cmd.StaffID); err != nil {
				if errors.Is(err, domain.ErrStockUnderflow) {
					// stock was consumed between validation and commit
					return fmt.Errorf("%s: %w", line.ProductID, domain.ErrInsufficientStock)
				}
				return err
			}
		}

		events := make([]domain.DomainEvent, 0)
		for _, productID := range order {
			ledger := ledgers[productID]
			if err := repos.Ledgers.Save(ctx, ledger); err != nil {
				return err
			}
			if err := repos.Movements.AppendAll(ctx, cmd.StoreID, productID, ledger.TakePendingMovements()); err != nil {
				return err
			}
			events = append(events, ledger.TakeDomainEvents()...)
		}

		var err error
		sale, err = domain.NewSaleRecord(transactionID, cmd.StoreID, cmd.StaffID, cmd.CustomerID, validated)
		if err != nil {
			return err
		}
		if err := repos.Sales.Insert(ctx, sale); err != nil {
			return err
		}
		events = append(events, sale.TakeDomainEvents()...)

		if repos.Outbox != nil {
			outboxEvents := make([]*outbox.OutboxEvent, 0, len(events))
			for _, event := range events {
				oe, err := outbox.NewOutboxEvent(transactionID, "sale", topicFor(event), event)
				if err != nil {
					return err
				}
				outboxEvents = append(outboxEvents, oe)
			}
			if err := repos.Outbox.SaveAll(ctx, outboxEvents); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// GetSale retrieves a committed sale by its transaction id
func (s *SaleApplicationService) GetSale(ctx context.Context, query GetSaleQuery) (*SaleDTO, error) {
	sale, err := s.sales.FindByTransactionID(ctx, query.TransactionID)
	if err != nil {
		s.logger.Error("Failed to get sale", "transactionId", query.TransactionID, "error", err)
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}

	dto := ToSaleDTO(sale)
	if s.receipts != nil {
		dto.ReceiptURL = s.receipts.ReceiptURL(sale)
	}
	return dto, nil
}

// ListSales lists a store's recent sales
func (s *SaleApplicationService) ListSales(ctx context.Context, query ListSalesQuery) ([]SaleDTO, error) {
	sales, err := s.sales.FindByStore(ctx, query.StoreID, query.Limit, query.Offset)
	if err != nil {
		s.logger.Error("Failed to list sales", "storeId", query.StoreID, "error", err)
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return ToSaleDTOs(sales), nil
}

func (s *SaleApplicationService) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordSaleFailed(reason)
	}
}

// topicFor routes a domain event to its outbox topic.
func topicFor(event domain.DomainEvent) string {
	switch event.(type) {
	case *domain.SaleCompletedEvent:
		return TopicSales
	default:
		return TopicInventoryAlerts
	}
}

// failureReason buckets commit errors for the sales_failed counter.
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "persistence"
	}
}
