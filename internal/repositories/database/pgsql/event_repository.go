package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/money_tracker_ledger/internal/models"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/mapping"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/pagination"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/search"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
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

// PgxEventRepository serves the read-only event projections.
type PgxEventRepository struct {
	BaseRepository
}

func newPgxEventRepository(pool *pgxpool.Pool) *PgxEventRepository {
	return &PgxEventRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.EventReader = (*PgxEventRepository)(nil)

func scanEvent(row rowScanner) (domain.Event, error) {
	var m models.Event
	err := row.Scan(
		&m.EventID,
		&m.OwnerID,
		&m.Kind,
		&m.Amount,
		&m.Description,
		&m.CategoryID,
		&m.SourceAccountID,
		&m.DestinationAccountID,
		&m.OccurredAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return domain.Event{}, err
	}
	return mapping.ToDomainEvent(m), nil
}

func scanEventView(row rowScanner) (domain.EventView, error) {
	var m models.EventView
	err := row.Scan(
		&m.EventID,
		&m.OwnerID,
		&m.Kind,
		&m.Amount,
		&m.Description,
		&m.CategoryID,
		&m.SourceAccountID,
		&m.DestinationAccountID,
		&m.OccurredAt,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.SourceAccountName,
		&m.SourceAccountIcon,
		&m.DestinationAccountName,
		&m.DestinationAccountIcon,
		&m.CategoryName,
		&m.CategoryIcon,
	)
	if err != nil {
		return domain.EventView{}, err
	}
	return mapping.ToDomainEventView(m), nil
}

// FindEventViewByID retrieves one event of an owner with its joined display data.
func (r *PgxEventRepository) FindEventViewByID(ctx context.Context, ownerID string, eventID string) (*domain.EventView, error) {
	query := eventViewSelect + ` WHERE e.event_id = $1 AND e.owner_id = $2;`
	view, err := scanEventView(r.Pool.QueryRow(ctx, query, eventID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("event %s", eventID)
		}
		return nil, translateError(err, fmt.Sprintf("failed to find event %s", eventID))
	}
	return &view, nil
}

// ListEventViews fetches one row more than the limit to learn whether another page exists.
func (r *PgxEventRepository) ListEventViews(ctx context.Context, ownerID string, filter domain.EventFilter) (*domain.EventPage, error) {
	query, args, err := buildListEventsQuery(ownerID, filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.Pool.Query(ctx, query, args...)
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

func buildListEventsQuery(ownerID string, filter domain.EventFilter) (string, []any, error) {
	var sb strings.Builder
	args := []any{ownerID}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	sb.WriteString(eventViewSelect)
	sb.WriteString(` WHERE e.owner_id = $1`)
	if filter.From != nil {
		sb.WriteString(` AND e.occurred_at >= ` + next(filter.From.UTC()))
	}
	if filter.To != nil {
		sb.WriteString(` AND e.occurred_at < ` + next(filter.To.UTC()))
	}
	if filter.NextToken != nil {
		cursor, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return "", nil, apperrors.NewValidationError("%v", err)
		}
		sb.WriteString(` AND (e.occurred_at, e.updated_at, e.event_id) < (` +
			next(cursor.OccurredAt) + `, ` + next(cursor.UpdatedAt) + `, ` + next(cursor.ID) + `)`)
	}
	if term := search.Normalize(filter.Search); term != "" {
		p := next(search.LikePattern(term))
		sb.WriteString(` AND (e.description ILIKE ` + p + ` ESCAPE '\' OR sa.name ILIKE ` + p +
			` ESCAPE '\' OR da.name ILIKE ` + p + ` ESCAPE '\' OR c.name ILIKE ` + p + ` ESCAPE '\')`)
	}
	sb.WriteString(` ORDER BY e.occurred_at DESC, e.updated_at DESC, e.event_id DESC`)
	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ` + next(filter.Limit+1))
	}
	return sb.String(), args, nil
}

func findEventForUpdate(ctx context.Context, q querier, eventID string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE event_id = $1 FOR UPDATE;`
	event, err := scanEvent(q.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("event %s", eventID)
		}
		return nil, translateError(err, fmt.Sprintf("failed to lock event %s", eventID))
	}
	return &event, nil
}

func insertEvent(ctx context.Context, q querier, event domain.Event) error {
	m := mapping.ToModelEvent(event)
	query := `INSERT INTO events (` + eventColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`
	_, err := q.Exec(ctx, query,
		m.EventID,
		m.OwnerID,
		m.Kind,
		m.Amount,
		m.Description,
		m.CategoryID,
		m.SourceAccountID,
		m.DestinationAccountID,
		m.OccurredAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return translateError(err, fmt.Sprintf("failed to save event %s", m.EventID))
}

func updateEvent(ctx context.Context, q querier, event domain.Event) error {
	m := mapping.ToModelEvent(event)
	query := `
		UPDATE events
		SET kind = $2, amount = $3, description = $4, category_id = $5, source_account_id = $6,
		    destination_account_id = $7, occurred_at = $8, updated_at = $9
		WHERE event_id = $1;
	`
	ct, err := q.Exec(ctx, query,
		m.EventID,
		m.Kind,
		m.Amount,
		m.Description,
		m.CategoryID,
		m.SourceAccountID,
		m.DestinationAccountID,
		m.OccurredAt,
		m.UpdatedAt,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to update event %s", m.EventID))
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("event %s", m.EventID)
	}
	return nil
}

func deleteEvent(ctx context.Context, q querier, eventID string) error {
	ct, err := q.Exec(ctx, `DELETE FROM events WHERE event_id = $1;`, eventID)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to delete event %s", eventID))
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("event %s", eventID)
	}
	return nil
}

func listEventsByOwner(ctx context.Context, q querier, ownerID string) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE owner_id = $1 ORDER BY occurred_at, created_at, event_id;`
	rows, err := q.Query(ctx, query, ownerID)
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
