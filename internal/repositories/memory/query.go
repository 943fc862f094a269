package memory

import (
	"context"
	"sort"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/pagination"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/search"
)

func (s *Store) viewLocked(e domain.Event) domain.EventView {
	v := domain.EventView{Event: e}
	if acc, ok := s.accounts[e.SourceAccountID]; ok {
		v.SourceAccountName = acc.Name
		v.SourceAccountIcon = acc.IconTag
	}
	if acc, ok := s.accounts[e.DestinationAccountID]; ok && e.DestinationAccountID != "" {
		v.DestinationAccountName = acc.Name
		v.DestinationAccountIcon = acc.IconTag
	}
	if cat, ok := s.categories[e.CategoryID]; ok && e.CategoryID != "" {
		v.CategoryName = cat.Name
		v.CategoryIcon = cat.IconTag
	}
	return v
}

func (s *Store) FindEventViewByID(ctx context.Context, ownerID string, eventID string) (*domain.EventView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventID]
	if !ok || e.OwnerID != ownerID {
		return nil, apperrors.NewNotFoundError("event %s", eventID)
	}
	v := s.viewLocked(e)
	return &v, nil
}

func (s *Store) ListEventViews(ctx context.Context, ownerID string, filter domain.EventFilter) (*domain.EventPage, error) {
	var cursor *pagination.Cursor
	if filter.NextToken != nil {
		c, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, apperrors.NewValidationError("%v", err)
		}
		cursor = &c
	}
	term := search.Normalize(filter.Search)

	s.mu.RLock()
	views := make([]domain.EventView, 0)
	for _, e := range s.events {
		if e.OwnerID != ownerID {
			continue
		}
		if filter.From != nil && e.OccurredAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !e.OccurredAt.Before(*filter.To) {
			continue
		}
		if cursor != nil && !cursor.Before(e.OccurredAt, e.UpdatedAt, e.EventID) {
			continue
		}
		v := s.viewLocked(e)
		if !search.Matches(term, v.Description, v.CategoryName, v.SourceAccountName, v.DestinationAccountName) {
			continue
		}
		views = append(views, v)
	}
	s.mu.RUnlock()

	sort.Slice(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.After(b.OccurredAt)
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.EventID > b.EventID
	})

	page := &domain.EventPage{Events: views}
	if filter.Limit > 0 && len(views) > filter.Limit {
		page.Events = views[:filter.Limit]
		last := page.Events[filter.Limit-1]
		token := pagination.EncodeToken(pagination.Cursor{OccurredAt: last.OccurredAt, UpdatedAt: last.UpdatedAt, ID: last.EventID})
		page.NextToken = &token
	}
	return page, nil
}
