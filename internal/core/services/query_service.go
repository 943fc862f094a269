package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/pagination"
)

const (
	DefaultEventPageSize = 20
	MaxEventPageSize     = 100
)

type queryService struct {
	BaseService
	eventRepo   portsrepo.EventReader
	accountRepo portsrepo.AccountReader
}

// NewQueryService creates the read-only projection over events and accounts.
func NewQueryService(eventRepo portsrepo.EventReader, accountRepo portsrepo.AccountReader) portssvc.QuerySvcFacade {
	return &queryService{eventRepo: eventRepo, accountRepo: accountRepo}
}

var _ portssvc.QuerySvcFacade = (*queryService)(nil)

func (s *queryService) ListEvents(ctx context.Context, ownerID string, filter domain.EventFilter) (*domain.EventPage, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultEventPageSize
	case filter.Limit > MaxEventPageSize:
		filter.Limit = MaxEventPageSize
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, apperrors.NewValidationError("from must be before to")
	}
	if filter.NextToken != nil {
		if _, err := pagination.DecodeToken(*filter.NextToken); err != nil {
			return nil, apperrors.NewValidationError("%v", err)
		}
	}

	page, err := s.eventRepo.ListEventViews(ctx, ownerID, filter)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to list events", slog.String("owner_id", ownerID))
		return nil, err
	}
	return page, nil
}

func (s *queryService) GetEvent(ctx context.Context, ownerID string, eventID string) (*domain.EventView, error) {
	view, err := s.eventRepo.FindEventViewByID(ctx, ownerID, eventID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to get event", slog.String("event_id", eventID))
		return nil, err
	}
	return view, nil
}

func (s *queryService) GetAccountsWithBalances(ctx context.Context, ownerID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccountsByOwner(ctx, ownerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("owner_id", ownerID))
		return nil, err
	}
	return accounts, nil
}
