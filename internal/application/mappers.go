package application

import "github.com/retail-platform/sales-service/internal/domain"

// ToMoneyDTO converts a domain money value to its DTO
func ToMoneyDTO(m domain.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Amount, Currency: m.Currency}
}

// ToLedgerDTO converts a stock ledger to its DTO
func ToLedgerDTO(ledger *domain.StockLedger) *LedgerDTO {
	if ledger == nil {
		return nil
	}
	return &LedgerDTO{
		StoreID:      ledger.StoreID,
		ProductID:    ledger.ProductID,
		Quantity:     ledger.Quantity,
		ReorderLevel: ledger.ReorderLevel,
		MaxStock:     ledger.MaxStock,
		Status:       string(ledger.Status()),
		LastSold:     ledger.LastSold,
		UpdatedBy:    ledger.UpdatedBy,
		CreatedAt:    ledger.CreatedAt,
		UpdatedAt:    ledger.UpdatedAt,
	}
}

// ToLedgerDTOs converts a slice of stock ledgers to DTOs
func ToLedgerDTOs(ledgers []*domain.StockLedger) []LedgerDTO {
	dtos := make([]LedgerDTO, 0, len(ledgers))
	for _, ledger := range ledgers {
		dtos = append(dtos, *ToLedgerDTO(ledger))
	}
	return dtos
}

// ToMovementDTOs converts movement log entries to DTOs
func ToMovementDTOs(movements []domain.StockMovement) []MovementDTO {
	dtos := make([]MovementDTO, 0, len(movements))
	for _, m := range movements {
		dtos = append(dtos, MovementDTO{
			Type:        string(m.Type),
			Quantity:    m.Quantity,
			Delta:       m.Delta,
			Reason:      m.Reason,
			Reference:   m.Reference,
			PerformedBy: m.PerformedBy,
			Timestamp:   m.Timestamp,
		})
	}
	return dtos
}

// ToSaleDTO converts a sale record to its DTO
func ToSaleDTO(sale *domain.SaleRecord) *SaleDTO {
	if sale == nil {
		return nil
	}
	items := make([]SaleItemDTO, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, SaleItemDTO{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Category:   item.Category,
			Quantity:   item.Quantity,
			UnitPrice:  ToMoneyDTO(item.UnitPrice),
			TotalPrice: ToMoneyDTO(item.TotalPrice),
			Profit:     item.Profit,
		})
	}
	return &SaleDTO{
		TransactionID: sale.TransactionID,
		StoreID:       sale.StoreID,
		StaffID:       sale.StaffID,
		CustomerID:    sale.CustomerID,
		Items:         items,
		Subtotal:      ToMoneyDTO(sale.Subtotal),
		TotalAmount:   ToMoneyDTO(sale.TotalAmount),
		TotalProfit:   sale.TotalProfit,
		Status:        string(sale.Status),
		SaleDate:      sale.SaleDate,
	}
}

// ToSaleDTOs converts a slice of sale records to DTOs
func ToSaleDTOs(sales []*domain.SaleRecord) []SaleDTO {
	dtos := make([]SaleDTO, 0, len(sales))
	for _, sale := range sales {
		dtos = append(dtos, *ToSaleDTO(sale))
	}
	return dtos
}
