package pgsql

import (
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every repository to the same connection pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  newPgxAccountRepository(dbPool),
		CategoryRepo: newPgxCategoryRepository(dbPool),
		EventRepo:    newPgxEventRepository(dbPool),
		TxManager:    newPgxTransactionManager(dbPool),
	}
}
