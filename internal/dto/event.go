package dto

import (
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEventRequest defines the data needed to record an event.
type CreateEventRequest struct {
	Kind                 domain.EventKind `json:"kind" binding:"required,oneof=INCOME EXPENSE TRANSFER"`
	Amount               decimal.Decimal  `json:"amount" binding:"required,gt=0" swaggertype:"string" example:"12.50"` // Positive magnitude
	Description          string           `json:"description" binding:"max=500"`
	CategoryID           string           `json:"categoryID"`
	SourceAccountID      string           `json:"sourceAccountID" binding:"required"`
	DestinationAccountID string           `json:"destinationAccountID"` // TRANSFER only
	OccurredAt           *time.Time       `json:"occurredAt"`           // Optional, defaults to now
}

// ToDraft converts the request into a ledger draft for the owner.
func (r CreateEventRequest) ToDraft(ownerID string) domain.EventDraft {
	draft := domain.EventDraft{
		OwnerID:              ownerID,
		Kind:                 r.Kind,
		Amount:               r.Amount,
		Description:          r.Description,
		CategoryID:           r.CategoryID,
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
	}
	if r.OccurredAt != nil {
		draft.OccurredAt = *r.OccurredAt
	}
	return draft
}

// UpdateEventRequest is a partial patch; omitted fields keep their stored values.
type UpdateEventRequest struct {
	Kind                 *domain.EventKind `json:"kind" binding:"omitempty,oneof=INCOME EXPENSE TRANSFER"`
	Amount               *decimal.Decimal  `json:"amount" binding:"omitempty,gt=0" swaggertype:"string"`
	Description          *string           `json:"description" binding:"omitempty,max=500"`
	CategoryID           *string           `json:"categoryID"`
	SourceAccountID      *string           `json:"sourceAccountID" binding:"omitempty,min=1"`
	DestinationAccountID *string           `json:"destinationAccountID"`
	OccurredAt           *time.Time        `json:"occurredAt"`
}

// ToPatch converts the request into a typed ledger patch.
func (r UpdateEventRequest) ToPatch() domain.EventPatch {
	return domain.EventPatch{
		Kind:                 r.Kind,
		Amount:               r.Amount,
		Description:          r.Description,
		CategoryID:           r.CategoryID,
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		OccurredAt:           r.OccurredAt,
	}
}

// EventResponse defines the data returned for an event.
type EventResponse struct {
	EventID                string           `json:"eventID"`
	Kind                   domain.EventKind `json:"kind"`
	Amount                 decimal.Decimal  `json:"amount" swaggertype:"string"`
	Description            string           `json:"description,omitempty"`
	CategoryID             string           `json:"categoryID,omitempty"`
	CategoryName           string           `json:"categoryName,omitempty"`
	CategoryIcon           string           `json:"categoryIcon,omitempty"`
	SourceAccountID        string           `json:"sourceAccountID"`
	SourceAccountName      string           `json:"sourceAccountName,omitempty"`
	SourceAccountIcon      string           `json:"sourceAccountIcon,omitempty"`
	DestinationAccountID   string           `json:"destinationAccountID,omitempty"`
	DestinationAccountName string           `json:"destinationAccountName,omitempty"`
	DestinationAccountIcon string           `json:"destinationAccountIcon,omitempty"`
	OccurredAt             time.Time        `json:"occurredAt"`
	CreatedAt              time.Time        `json:"createdAt"`
	UpdatedAt              time.Time        `json:"updatedAt"`
}

// ToEventResponse converts a bare event; joined display fields stay empty.
func ToEventResponse(e *domain.Event) EventResponse {
	return EventResponse{
		EventID:              e.EventID,
		Kind:                 e.Kind,
		Amount:               e.Amount,
		Description:          e.Description,
		CategoryID:           e.CategoryID,
		SourceAccountID:      e.SourceAccountID,
		DestinationAccountID: e.DestinationAccountID,
		OccurredAt:           e.OccurredAt,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

// ToEventViewResponse converts an event joined with its display data.
func ToEventViewResponse(v *domain.EventView) EventResponse {
	res := ToEventResponse(&v.Event)
	res.SourceAccountName = v.SourceAccountName
	res.SourceAccountIcon = v.SourceAccountIcon
	res.DestinationAccountName = v.DestinationAccountName
	res.DestinationAccountIcon = v.DestinationAccountIcon
	res.CategoryName = v.CategoryName
	res.CategoryIcon = v.CategoryIcon
	return res
}

// ListEventsParams defines query parameters for listing events.
// from and to accept a date (2006-01-02) or an RFC 3339 timestamp.
type ListEventsParams struct {
	From      string `form:"from"`
	To        string `form:"to"`
	Search    string `form:"q"`
	Limit     int    `form:"limit,default=20" binding:"min=0,max=100"`
	NextToken string `form:"nextToken"`
}

// ToFilter parses the parameters into a domain filter.
func (p ListEventsParams) ToFilter() (domain.EventFilter, error) {
	filter := domain.EventFilter{Search: p.Search, Limit: p.Limit}
	if p.From != "" {
		from, err := parseBound(p.From)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid from: %v", err)
		}
		filter.From = &from
	}
	if p.To != "" {
		to, err := parseBound(p.To)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid to: %v", err)
		}
		filter.To = &to
	}
	if p.NextToken != "" {
		token := p.NextToken
		filter.NextToken = &token
	}
	return filter, nil
}

func parseBound(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ListEventsResponse wraps one page of events.
type ListEventsResponse struct {
	Events    []EventResponse `json:"events"`
	NextToken *string         `json:"nextToken,omitempty"` // Absent on the last page
}

// ToListEventsResponse converts a page of events to its DTO.
func ToListEventsResponse(page *domain.EventPage) ListEventsResponse {
	res := ListEventsResponse{Events: make([]EventResponse, len(page.Events)), NextToken: page.NextToken}
	for i := range page.Events {
		res.Events[i] = ToEventViewResponse(&page.Events[i])
	}
	return res
}
