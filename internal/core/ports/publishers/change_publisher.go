package publishers

import (
	"context"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
)

// ChangePublisher announces committed ledger changes to downstream consumers.
// It is only called after a scope commits; a failure never undoes the change.
type ChangePublisher interface {
	PublishChange(ctx context.Context, change domain.LedgerChange) error
}

// NoopPublisher discards every change.
type NoopPublisher struct{}

func (NoopPublisher) PublishChange(context.Context, domain.LedgerChange) error { return nil }
