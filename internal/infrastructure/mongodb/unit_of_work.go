package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/retail-platform/sales-service/internal/application"
	outboxMongo "github.com/retail-platform/sales-service/pkg/outbox/mongodb"
)

// UnitOfWork runs application callbacks inside one MongoDB multi-document
// transaction. The repositories in the bound RepositorySet pick up the
// session through the context, so every read and write in the callback
// commits or aborts as a whole.
type UnitOfWork struct {
	client *mongo.Client
	repos  application.RepositorySet
}

// NewUnitOfWork wires a unit of work over the given database, constructing
// the full repository set it hands to callbacks.
func NewUnitOfWork(db *mongo.Database) *UnitOfWork {
	return &UnitOfWork{
		client: db.Client(),
		repos: application.RepositorySet{
			Ledgers:   NewLedgerRepository(db),
			Movements: NewMovementRepository(db),
			Sales:     NewSaleRepository(db),
			Outbox:    outboxMongo.NewOutboxRepository(db),
		},
	}
}

// Repositories exposes the repository set for non-transactional reads.
func (u *UnitOfWork) Repositories() application.RepositorySet {
	return u.repos
}

func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos application.RepositorySet) error) error {
	session, err := u.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx, u.repos)
	})
	return err
}
