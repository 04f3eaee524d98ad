package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"podpulse/internal/domain"
)

type checklistRepository struct {
	DB *sql.DB
}

func NewChecklistRepository(db *sql.DB) domain.ChecklistRepository {
	return &checklistRepository{
		DB: db,
	}
}

func (r *checklistRepository) Create(ctx context.Context, item *domain.ChecklistItem) error {
	query := `
		INSERT INTO event_checklist_items (event_id, label, note, state, created_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var note sql.NullString
	if item.Note != nil {
		note = sql.NullString{String: *item.Note, Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query, item.EventID, item.Label, note, item.State, item.CreatedBy, item.UpdatedAt).
		Scan(&item.ID)
}

// Cycle advances the item state along open→done→blocked→open in a
// single statement, so concurrent cyclers each advance exactly one step.
func (r *checklistRepository) Cycle(ctx context.Context, eventID, itemID string, updatedAt time.Time) (*domain.ChecklistItem, error) {
	query := `
		UPDATE event_checklist_items
		SET state = CASE state WHEN 'open' THEN 'done' WHEN 'done' THEN 'blocked' ELSE 'open' END,
			updated_at = $3
		WHERE id = $1 AND event_id = $2
		RETURNING id, event_id, label, note, state, created_by, updated_at
	`
	item := &domain.ChecklistItem{}
	var note sql.NullString
	err := r.DB.QueryRowContext(ctx, query, itemID, eventID, updatedAt).
		Scan(&item.ID, &item.EventID, &item.Label, &note, &item.State, &item.CreatedBy, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if note.Valid {
		item.Note = &note.String
	}
	return item, nil
}

func (r *checklistRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.ChecklistItem, error) {
	query := `
		SELECT id, event_id, label, note, state, created_by, updated_at
		FROM event_checklist_items
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.ChecklistItem, 0)
	for rows.Next() {
		item := &domain.ChecklistItem{}
		var note sql.NullString
		if err := rows.Scan(&item.ID, &item.EventID, &item.Label, &note, &item.State, &item.CreatedBy, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if note.Valid {
			item.Note = &note.String
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
