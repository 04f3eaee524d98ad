package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"podpulse/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{
		DB: db,
	}
}

// CreateBatch inserts one ledger row per entry inside a single
// transaction. Partial failure never leaves a subset behind: any insert
// error rolls the whole batch back and the caller sees the fan-out as
// failed.
func (r *notificationRepository) CreateBatch(ctx context.Context, entries []*domain.NotificationEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin notification batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notifications (id, recipient_id, actor_id, pod_id, event_id, type, title, body, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare notification insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		data, err := json.Marshal(e.Data)
		if err != nil {
			return 0, fmt.Errorf("marshal notification data: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.RecipientID, e.ActorID, e.PodID, e.EventID, e.Type, e.Title, e.Body, data, e.CreatedAt); err != nil {
			return 0, fmt.Errorf("insert notification for %s: %w", e.RecipientID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit notification batch: %w", err)
	}
	return len(entries), nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*domain.NotificationEntry, error) {
	query := `
		SELECT id, recipient_id, actor_id, pod_id, event_id, type, title, body, data, created_at, read_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.NotificationEntry, 0)
	for rows.Next() {
		e := &domain.NotificationEntry{}
		var data []byte
		var readAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.RecipientID, &e.ActorID, &e.PodID, &e.EventID, &e.Type, &e.Title, &e.Body, &data, &e.CreatedAt, &readAt); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &e.Data); err != nil {
				return nil, fmt.Errorf("unmarshal notification data: %w", err)
			}
		}
		if readAt.Valid {
			e.ReadAt = &readAt.Time
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkRead stamps read_at at most once. COALESCE keeps the original
// timestamp on repeated calls, so the operation is idempotent while the
// recipient check still yields ErrNotFound for foreign entries.
func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string, readAt time.Time) error {
	query := `
		UPDATE notifications
		SET read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND recipient_id = $2
	`
	result, err := r.DB.ExecContext(ctx, query, id, recipientID, readAt)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string, readAt time.Time) (int64, error) {
	query := `
		UPDATE notifications
		SET read_at = $2
		WHERE recipient_id = $1 AND read_at IS NULL
	`
	result, err := r.DB.ExecContext(ctx, query, recipientID, readAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
