package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/SscSPs/money_tracker_ledger/internal/models"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/mapping"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/pagination"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/search"
)

const eventColumns = `event_id, owner_id, kind, amount, description, category_id, source_account_id, destination_account_id, occurred_at, created_at, updated_at`

const eventViewSelect = `
	SELECT e.event_id, e.owner_id, e.kind, e.amount, e.description, e.category_id, e.source_account_id,
	       e.destination_account_id, e.occurred_at, e.created_at, e.updated_at,
	       sa.name, sa.icon_tag, da.name, da.icon_tag, c.name, c.icon_tag
	FROM events e
	JOIN accounts sa ON sa.account_id = e.source_account_id
	LEFT JOIN accounts da ON da.account_id = e.destination_account_id
	LEFT JOIN categories c ON c.category_id = e.category_id`

// eventTimes receives the three TEXT time columns of an events row.
type eventTimes struct {
	occurredAt, createdAt, updatedAt string
}

func (t eventTimes) apply(m *models.Event) error {
	var err error
	if m.OccurredAt, err = parseTime(t.occurredAt); err != nil {
		return err
	}
	if m.CreatedAt, err = parseTime(t.createdAt); err != nil {
		return err
	}
	m.UpdatedAt, err = parseTime(t.updatedAt)
	return err
}

func scanEvent(row rowScanner) (domain.Event, error) {
	var m models.Event
	var t eventTimes
	err := row.Scan(&m.EventID, &m.OwnerID, &m.Kind, &m.Amount, &m.Description, &m.CategoryID,
		&m.SourceAccountID, &m.DestinationAccountID, &t.occurredAt, &t.createdAt, &t.updatedAt)
	if err != nil {
		return domain.Event{}, err
	}
	if err := t.apply(&m); err != nil {
		return domain.Event{}, err
	}
	return mapping.ToDomainEvent(m), nil
}

func scanEventView(row rowScanner) (domain.EventView, error) {
	var m models.EventView
	var t eventTimes
	err := row.Scan(&m.EventID, &m.OwnerID, &m.Kind, &m.Amount, &m.Description, &m.CategoryID,
		&m.SourceAccountID, &m.DestinationAccountID, &t.occurredAt, &t.createdAt, &t.updatedAt,
		&m.SourceAccountName, &m.SourceAccountIcon, &m.DestinationAccountName, &m.DestinationAccountIcon,
		&m.CategoryName, &m.CategoryIcon)
	if err != nil {
		return domain.EventView{}, err
	}
	if err := t.apply(&m.Event); err != nil {
		return domain.EventView{}, err
	}
	return mapping.ToDomainEventView(m), nil
}

func (s *Store) FindEventViewByID(ctx context.Context, ownerID string, eventID string) (*domain.EventView, error) {
	view, err := scanEventView(s.db.QueryRowContext(ctx, eventViewSelect+` WHERE e.event_id = ? AND e.owner_id = ?`, eventID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("event %s", eventID)
		}
		return nil, translateError(err, fmt.Sprintf("failed to find event %s", eventID))
	}
	return &view, nil
}

// ListEventViews fetches one row more than the limit to learn whether another page exists.
func (s *Store) ListEventViews(ctx context.Context, ownerID string, filter domain.EventFilter) (*domain.EventPage, error) {
	query, args, err := buildListEventsQuery(ownerID, filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "failed to list events")
	}
	defer rows.Close()

	views := make([]domain.EventView, 0)
	for rows.Next() {
		v, err := scanEventView(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan event")
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate events")
	}

	page := &domain.EventPage{Events: views}
	if filter.Limit > 0 && len(views) > filter.Limit {
		page.Events = views[:filter.Limit]
		last := page.Events[filter.Limit-1]
		token := pagination.EncodeToken(pagination.Cursor{OccurredAt: last.OccurredAt, UpdatedAt: last.UpdatedAt, ID: last.EventID})
		page.NextToken = &token
	}
	return page, nil
}

// buildListEventsQuery compares times as fixed-width TEXT, which orders like the instants.
func buildListEventsQuery(ownerID string, filter domain.EventFilter) (string, []any, error) {
	var sb strings.Builder
	args := []any{ownerID}

	sb.WriteString(eventViewSelect)
	sb.WriteString(` WHERE e.owner_id = ?`)
	if filter.From != nil {
		sb.WriteString(` AND e.occurred_at >= ?`)
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		sb.WriteString(` AND e.occurred_at < ?`)
		args = append(args, formatTime(*filter.To))
	}
	if filter.NextToken != nil {
		cursor, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return "", nil, apperrors.NewValidationError("%v", err)
		}
		sb.WriteString(` AND (e.occurred_at, e.updated_at, e.event_id) < (?, ?, ?)`)
		args = append(args, formatTime(cursor.OccurredAt), formatTime(cursor.UpdatedAt), cursor.ID)
	}
	if term := search.Normalize(filter.Search); term != "" {
		p := search.LikePattern(term)
		sb.WriteString(` AND (e.description LIKE ? ESCAPE '\' OR sa.name LIKE ? ESCAPE '\'` +
			` OR da.name LIKE ? ESCAPE '\' OR c.name LIKE ? ESCAPE '\')`)
		args = append(args, p, p, p, p)
	}
	sb.WriteString(` ORDER BY e.occurred_at DESC, e.updated_at DESC, e.event_id DESC`)
	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit+1)
	}
	return sb.String(), args, nil
}

func findEvent(ctx context.Context, q dbtx, eventID string) (*domain.Event, error) {
	event, err := scanEvent(q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE event_id = ?`, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("event %s", eventID)
		}
		return nil, translateError(err, fmt.Sprintf("failed to find event %s", eventID))
	}
	return &event, nil
}

func insertEvent(ctx context.Context, q dbtx, event domain.Event) error {
	m := mapping.ToModelEvent(event)
	_, err := q.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES (`+placeholders(11)+`)`,
		m.EventID, m.OwnerID, string(m.Kind), m.Amount, m.Description, m.CategoryID, m.SourceAccountID,
		m.DestinationAccountID, formatTime(m.OccurredAt), formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	)
	return translateError(err, fmt.Sprintf("failed to save event %s", m.EventID))
}

func updateEvent(ctx context.Context, q dbtx, event domain.Event) error {
	m := mapping.ToModelEvent(event)
	res, err := q.ExecContext(ctx, `
		UPDATE events
		SET kind = ?, amount = ?, description = ?, category_id = ?, source_account_id = ?,
		    destination_account_id = ?, occurred_at = ?, updated_at = ?
		WHERE event_id = ?`,
		string(m.Kind), m.Amount, m.Description, m.CategoryID, m.SourceAccountID,
		m.DestinationAccountID, formatTime(m.OccurredAt), formatTime(m.UpdatedAt), m.EventID,
	)
	return checkAffected(res, err, "event", m.EventID)
}

func deleteEvent(ctx context.Context, q dbtx, eventID string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM events WHERE event_id = ?`, eventID)
	return checkAffected(res, err, "event", eventID)
}

func listEventsByOwner(ctx context.Context, q dbtx, ownerID string) ([]domain.Event, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+eventColumns+` FROM events WHERE owner_id = ? ORDER BY occurred_at, created_at, event_id`, ownerID)
	if err != nil {
		return nil, translateError(err, "failed to list owner events")
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan event")
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate owner events")
	}
	return events, nil
}
