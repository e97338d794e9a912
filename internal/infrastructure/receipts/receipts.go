package receipts

import (
	"fmt"
	"strings"

	"github.com/retail-platform/sales-service/internal/domain"
)

// Service implements the receipt boundary: committed sales are addressable
// at a stable URL under the receipt renderer, keyed by transaction id.
// Rendering happens in the receipt service; this side only mints the URL.
type Service struct {
	baseURL string
}

func NewService(baseURL string) *Service {
	return &Service{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Service) ReceiptURL(sale *domain.SaleRecord) string {
	return fmt.Sprintf("%s/receipts/%s.pdf", s.baseURL, sale.TransactionID)
}
