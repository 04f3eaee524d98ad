package postgres

import (
	"context"
	"database/sql"
	"errors"

	"podpulse/internal/domain"
)

type membershipRepository struct {
	DB *sql.DB
}

// NewMembershipRepository returns a MembershipDirectory backed by the
// pod_memberships table. Membership writes are owned by the pod CRUD
// surface; the notification core only reads it, at call time.
func NewMembershipRepository(db *sql.DB) domain.MembershipDirectory {
	return &membershipRepository{
		DB: db,
	}
}

func (r *membershipRepository) ActiveMembers(ctx context.Context, podID string) ([]*domain.PodMember, error) {
	query := `
		SELECT user_id, role
		FROM pod_memberships
		WHERE pod_id = $1 AND is_active
	`
	rows, err := r.DB.QueryContext(ctx, query, podID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*domain.PodMember, 0)
	for rows.Next() {
		m := &domain.PodMember{}
		if err := rows.Scan(&m.UserID, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *membershipRepository) IsActiveMember(ctx context.Context, podID, userID string) (bool, error) {
	query := `
		SELECT 1
		FROM pod_memberships
		WHERE pod_id = $1 AND user_id = $2 AND is_active
	`
	var one int
	err := r.DB.QueryRowContext(ctx, query, podID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *membershipRepository) ListPodIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT pod_id
		FROM pod_memberships
		WHERE user_id = $1 AND is_active
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
