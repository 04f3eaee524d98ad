package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"podpulse/internal/domain"
)

func eventRow(id string, startsAt, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "pod_id", "title", "description", "starts_at", "ends_at",
		"location_text", "created_by", "canceled_at", "cancel_reason", "created_at", "updated_at",
	}).AddRow(id, "pod-1", "Game night", nil, startsAt, nil, nil, "user-1", nil, nil, now, now)
}

func TestEventRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewEventRepository(db)

	now := time.Now()
	event := domain.NewEvent("pod-1", "Game night", nil, now.Add(24*time.Hour), nil, nil, "user-1", now)

	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs("pod-1", "Game night", sqlmock.AnyArg(), event.StartsAt, sqlmock.AnyArg(), sqlmock.AnyArg(), "user-1", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("event-1"))

	require.NoError(t, repo.Create(context.Background(), event))
	require.Equal(t, "event-1", event.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryUpdate(t *testing.T) {
	t.Run("builds the set clause from provided fields only", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer db.Close()
		repo := NewEventRepository(db)

		now := time.Now()
		newStart := now.Add(48 * time.Hour)

		mock.ExpectQuery(`UPDATE events SET updated_at = \$1, starts_at = \$2\s+WHERE id = \$3`).
			WithArgs(sqlmock.AnyArg(), newStart, "event-1").
			WillReturnRows(eventRow("event-1", newStart, now))

		updated, err := repo.Update(context.Background(), "event-1", domain.EventPatch{StartsAt: &newStart}, now)
		require.NoError(t, err)
		require.Equal(t, "event-1", updated.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("clearing a nullable field binds null", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer db.Close()
		repo := NewEventRepository(db)

		now := time.Now()
		var cleared *string

		mock.ExpectQuery(`UPDATE events SET updated_at = \$1, location_text = \$2\s+WHERE id = \$3`).
			WithArgs(sqlmock.AnyArg(), nullString(cleared), "event-1").
			WillReturnRows(eventRow("event-1", now, now))

		_, err = repo.Update(context.Background(), "event-1", domain.EventPatch{LocationText: &cleared}, now)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown event is not found", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer db.Close()
		repo := NewEventRepository(db)

		title := "x"
		mock.ExpectQuery(`UPDATE events SET`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err = repo.Update(context.Background(), "event-404", domain.EventPatch{Title: &title}, time.Now())
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepositoryCancel(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewEventRepository(db)

	now := time.Now()
	reason := "Rain"
	rows := sqlmock.NewRows([]string{
		"id", "pod_id", "title", "description", "starts_at", "ends_at",
		"location_text", "created_by", "canceled_at", "cancel_reason", "created_at", "updated_at",
	}).AddRow("event-1", "pod-1", "Game night", nil, now, nil, nil, "user-1", now, reason, now, now)

	mock.ExpectQuery(`UPDATE events\s+SET canceled_at = \$2, cancel_reason = \$3, updated_at = \$2`).
		WithArgs("event-1", sqlmock.AnyArg(), nullString(&reason)).
		WillReturnRows(rows)

	canceled, err := repo.Cancel(context.Background(), "event-1", &reason, now)
	require.NoError(t, err)
	require.True(t, canceled.Canceled())
	require.Equal(t, "Rain", *canceled.CancelReason)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListUpcoming(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewEventRepository(db)

	now := time.Now()
	rows := eventRow("event-1", now.Add(time.Hour), now).
		AddRow("event-2", "pod-2", "Hike", nil, now.Add(2*time.Hour), nil, nil, "user-2", nil, nil, now, now)

	mock.ExpectQuery(`SELECT .* FROM events\s+WHERE pod_id = ANY\(\$1\) AND starts_at >= \$2 AND canceled_at IS NULL`).
		WithArgs(sqlmock.AnyArg(), now, 50).
		WillReturnRows(rows)

	events, err := repo.ListUpcomingByPodIDs(context.Background(), []string{"pod-1", "pod-2"}, now, 50)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "event-1", events[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
