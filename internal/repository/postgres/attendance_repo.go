package postgres

import (
	"context"
	"database/sql"
	"time"

	"podpulse/internal/domain"
)

type attendanceRepository struct {
	DB *sql.DB
}

func NewAttendanceRepository(db *sql.DB) domain.AttendanceRepository {
	return &attendanceRepository{
		DB: db,
	}
}

// Upsert applies a partial patch to the single record for (event, user)
// in one statement. The first write for an unseen member creates the row
// with defaults; later writes only touch the patched columns, so two
// members updating their own records never conflict and retries of the
// same key resolve last-writer-wins on updated_at.
func (r *attendanceRepository) Upsert(ctx context.Context, eventID, userID string, patch domain.AttendancePatch, updatedAt time.Time) (*domain.AttendanceRecord, error) {
	query := `
		INSERT INTO event_attendance (event_id, user_id, rsvp, arrival, eta_minutes, updated_at)
		VALUES ($1, $2, COALESCE($3, 'maybe'), COALESCE($4, 'not_sure'), $5, $6)
		ON CONFLICT (event_id, user_id) DO UPDATE SET
			rsvp = COALESCE($3, event_attendance.rsvp),
			arrival = COALESCE($4, event_attendance.arrival),
			eta_minutes = CASE WHEN $4 IS NULL THEN event_attendance.eta_minutes ELSE $5 END,
			updated_at = $6
		RETURNING event_id, user_id, rsvp, arrival, eta_minutes, updated_at
	`
	var rsvp, arrival sql.NullString
	if patch.RSVP != nil {
		rsvp = sql.NullString{String: string(*patch.RSVP), Valid: true}
	}
	if patch.Arrival != nil {
		arrival = sql.NullString{String: string(*patch.Arrival), Valid: true}
	}
	var eta sql.NullInt64
	if patch.ETAMinutes != nil {
		eta = sql.NullInt64{Int64: int64(*patch.ETAMinutes), Valid: true}
	}

	rec := &domain.AttendanceRecord{}
	var etaOut sql.NullInt64
	err := r.DB.QueryRowContext(ctx, query, eventID, userID, rsvp, arrival, eta, updatedAt).
		Scan(&rec.EventID, &rec.UserID, &rec.RSVP, &rec.Arrival, &etaOut, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if etaOut.Valid {
		v := int(etaOut.Int64)
		rec.ETAMinutes = &v
	}
	return rec, nil
}

func (r *attendanceRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.AttendanceRecord, error) {
	query := `
		SELECT event_id, user_id, rsvp, arrival, eta_minutes, updated_at
		FROM event_attendance
		WHERE event_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.AttendanceRecord, 0)
	for rows.Next() {
		rec := &domain.AttendanceRecord{}
		var eta sql.NullInt64
		if err := rows.Scan(&rec.EventID, &rec.UserID, &rec.RSVP, &rec.Arrival, &eta, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if eta.Valid {
			v := int(eta.Int64)
			rec.ETAMinutes = &v
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *attendanceRepository) ListAttendingUserIDs(ctx context.Context, eventID string) ([]string, error) {
	query := `
		SELECT DISTINCT user_id
		FROM event_attendance
		WHERE event_id = $1 AND rsvp IN ('yes', 'maybe')
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
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
