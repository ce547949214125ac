package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
	pgutil "github.com/Nathan-Yinka/autochek-API/pkg/postgres"
)

var _ port.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs each Do inside one read-committed transaction. Row locks
// taken by the ForUpdate finders are held until it commits or rolls back.
type UnitOfWork struct {
	db pgutil.Beginner
}

// NewUnitOfWork creates a UnitOfWork. *pgxpool.Pool satisfies Beginner.
func NewUnitOfWork(db pgutil.Beginner) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Do executes fn with repositories bound to a fresh transaction.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos port.Repositories) error) error {
	return pgutil.InTx(ctx, u.db, func(tx pgx.Tx) error {
		return fn(ctx, NewRepositories(tx))
	})
}

// NewRepositories binds every repository to q.
func NewRepositories(q pgutil.DBTX) port.Repositories {
	return port.Repositories{
		Vehicles:     NewVehicleRepo(q),
		Applications: NewLoanApplicationRepo(q),
		Offers:       NewOfferRepo(q),
		Valuations:   NewValuationRepo(q),
	}
}
