package application

import (
	"context"

	"github.com/retail-platform/sales-service/internal/domain"
	"github.com/retail-platform/sales-service/pkg/outbox"
)

// RepositorySet bundles the repositories bound to one atomic unit. The
// implementations passed here must route their reads and writes through
// the unit's transaction context.
type RepositorySet struct {
	Ledgers   domain.LedgerRepository
	Movements domain.MovementRepository
	Sales     domain.SaleRepository
	Outbox    outbox.Repository
}

// UnitOfWork runs fn inside one atomic transaction. Either every write
// performed through the supplied RepositorySet commits, or none do. An
// error from fn (or a cancelled context) aborts the unit with no residual
// state.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos RepositorySet) error) error
}

// ReceiptBoundary hands a committed sale to the receipt subsystem and
// returns a URL the client can fetch the rendered receipt from. Rendering
// itself happens elsewhere.
type ReceiptBoundary interface {
	ReceiptURL(sale *domain.SaleRecord) string
}
