package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"podpulse/internal/domain"
)

type pushTokenRepository struct {
	DB *sql.DB
}

// NewPushTokenRepository returns a read-only view of registered device
// tokens. Token registration is owned by the client-facing surface.
func NewPushTokenRepository(db *sql.DB) domain.PushTokenRepository {
	return &pushTokenRepository{
		DB: db,
	}
}

func (r *pushTokenRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]*domain.PushToken, error) {
	query := `
		SELECT user_id, token, platform, last_seen_at
		FROM user_push_tokens
		WHERE user_id = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := make([]*domain.PushToken, 0)
	for rows.Next() {
		t := &domain.PushToken{}
		if err := rows.Scan(&t.UserID, &t.Token, &t.Platform, &t.LastSeenAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
