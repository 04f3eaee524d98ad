package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"podpulse/internal/domain"
)

const eventColumns = "id, pod_id, title, description, starts_at, ends_at, location_text, created_by, canceled_at, cancel_reason, created_at, updated_at"

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (pod_id, title, description, starts_at, ends_at, location_text, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.PodID, e.Title, nullString(e.Description), e.StartsAt, nullTime(e.EndsAt),
		nullString(e.LocationText), e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch, updatedAt time.Time) (*domain.Event, error) {
	setClauses := []string{"updated_at = $1"}
	args := []interface{}{updatedAt}
	n := 2
	if patch.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *patch.Title)
		n++
	}
	if patch.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, nullString(*patch.Description))
		n++
	}
	if patch.StartsAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("starts_at = $%d", n))
		args = append(args, *patch.StartsAt)
		n++
	}
	if patch.EndsAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("ends_at = $%d", n))
		args = append(args, nullTime(*patch.EndsAt))
		n++
	}
	if patch.LocationText != nil {
		setClauses = append(setClauses, fmt.Sprintf("location_text = $%d", n))
		args = append(args, nullString(*patch.LocationText))
		n++
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)

	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Cancel(ctx context.Context, id string, reason *string, canceledAt time.Time) (*domain.Event, error) {
	query := fmt.Sprintf(`
		UPDATE events
		SET canceled_at = $2, cancel_reason = $3, updated_at = $2
		WHERE id = $1
		RETURNING %s
	`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, canceledAt, nullString(reason)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListUpcomingByPodIDs(ctx context.Context, podIDs []string, after time.Time, limit int) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE pod_id = ANY($1) AND starts_at >= $2 AND canceled_at IS NULL
		ORDER BY starts_at ASC
		LIMIT $3
	`, eventColumns)
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(podIDs), after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var desc, location, cancelReason sql.NullString
	var endsAt, canceledAt sql.NullTime
	err := row.Scan(
		&e.ID, &e.PodID, &e.Title, &desc, &e.StartsAt, &endsAt,
		&location, &e.CreatedBy, &canceledAt, &cancelReason, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		e.Description = &desc.String
	}
	if endsAt.Valid {
		e.EndsAt = &endsAt.Time
	}
	if location.Valid {
		e.LocationText = &location.String
	}
	if canceledAt.Valid {
		e.CanceledAt = &canceledAt.Time
	}
	if cancelReason.Valid {
		e.CancelReason = &cancelReason.String
	}
	return e, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
