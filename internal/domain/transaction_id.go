package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewTransactionID generates a globally unique, human-legible sale
// transaction id, e.g. TXN-20260829-143502-9F3A1C. The timestamp keeps ids
// sortable and readable on receipts; the suffix guarantees uniqueness
// under concurrent sales in the same second.
func NewTransactionID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TXN-%s-%s", time.Now().UTC().Format("20060102-150405"), suffix)
}
