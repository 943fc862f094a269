package repositories

import (
	"context"
)

// AtomicScope is an open all-or-nothing unit of work against the ledger stores.
// Writes made through a scope are invisible to other readers until Commit.
type AtomicScope interface {
	AccountTransactionSupport
	EventTransactionSupport
	CategoryTransactionSupport
	LedgerSnapshotSupport

	// Commit makes every write in the scope durable and visible at once.
	Commit(ctx context.Context) error

	// Rollback discards the scope. It is a no-op after Commit or a previous Rollback.
	Rollback(ctx context.Context) error
}

// TransactionManager opens atomic scopes.
type TransactionManager interface {
	// BeginAtomic blocks until a scope can be acquired or ctx is done.
	BeginAtomic(ctx context.Context) (AtomicScope, error)
}
