package services

import (
	"context"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
)

// QuerySvcFacade is the read-only projection over the ledger. It never mutates storage.
type QuerySvcFacade interface {
	// ListEvents returns one page of an owner's events ordered by occurredAt, updatedAt and id, newest first.
	ListEvents(ctx context.Context, ownerID string, filter domain.EventFilter) (*domain.EventPage, error)

	// GetEvent returns one event of an owner. Events of other owners are reported as not found.
	GetEvent(ctx context.Context, ownerID string, eventID string) (*domain.EventView, error)

	// GetAccountsWithBalances returns the owner's accounts with their last committed balances.
	GetAccountsWithBalances(ctx context.Context, ownerID string) ([]domain.Account, error)
}
