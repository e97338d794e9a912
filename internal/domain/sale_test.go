package domain

import (
	"errors"
	"testing"
)

func validatedLine(productID string, qty int, unitCents, costCents int64) ValidatedLine {
	unit := Money{Amount: unitCents, Currency: "USD"}
	total, _ := unit.Multiply(qty)
	return ValidatedLine{
		ProductID:  productID,
		Name:       "Product " + productID,
		Category:   "general",
		Quantity:   qty,
		UnitPrice:  unit,
		TotalPrice: total,
		CostPrice:  Money{Amount: costCents, Currency: "USD"},
	}
}

func TestNewSaleRecord(t *testing.T) {
	lines := []ValidatedLine{
		validatedLine("64a0c2f1e7b9a4d1c3f0a001", 2, 1500, 900), // profit 1200
		validatedLine("64a0c2f1e7b9a4d1c3f0a002", 1, 500, 700),  // loss 200
	}

	sale, err := NewSaleRecord("TXN-20260829-101500-AB12CD", "store-1", "staff-7", "cust-3", lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sale.Status != SaleStatusCompleted {
		t.Errorf("expected status completed, got %s", sale.Status)
	}
	if len(sale.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(sale.Items))
	}

	// totalAmount must equal the sum of the item totals
	var sum int64
	for _, item := range sale.Items {
		sum += item.TotalPrice.Amount
	}
	if sale.TotalAmount.Amount != sum {
		t.Errorf("totalAmount %d does not equal item sum %d", sale.TotalAmount.Amount, sum)
	}
	if sale.TotalAmount.Amount != 3500 {
		t.Errorf("expected total 3500, got %d", sale.TotalAmount.Amount)
	}
	if sale.TotalCost.Amount != 2500 {
		t.Errorf("expected total cost 2500, got %d", sale.TotalCost.Amount)
	}
	if sale.TotalProfit != 1000 {
		t.Errorf("expected total profit 1000, got %d", sale.TotalProfit)
	}
	if sale.Items[1].Profit != -200 {
		t.Errorf("below-cost line must carry negative profit, got %d", sale.Items[1].Profit)
	}

	events := sale.TakeDomainEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	completed, ok := events[0].(*SaleCompletedEvent)
	if !ok {
		t.Fatalf("expected SaleCompletedEvent, got %T", events[0])
	}
	if completed.TotalAmount != 3500 || completed.ItemCount != 2 {
		t.Errorf("unexpected event payload: %+v", completed)
	}
	if len(sale.TakeDomainEvents()) != 0 {
		t.Errorf("events must be drained after taking")
	}
}

func TestNewSaleRecord_EmptyCart(t *testing.T) {
	_, err := NewSaleRecord("TXN-1", "store-1", "staff-7", "", nil)
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
}

func TestNewTransactionID(t *testing.T) {
	a := NewTransactionID()
	b := NewTransactionID()

	if a == b {
		t.Errorf("transaction ids must be unique: %s", a)
	}
	if len(a) < len("TXN-20060102-150405-XXXXXX") {
		t.Errorf("unexpected id shape: %s", a)
	}
	if a[:4] != "TXN-" {
		t.Errorf("expected TXN- prefix, got %s", a)
	}
}
