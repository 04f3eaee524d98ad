package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"podpulse/internal/domain"
)

func eventFixture(events ...*domain.Event) (domain.EventService, *fakeEventRepo, *fakeNotifier) {
	repo := newFakeEventRepo(events...)
	directory := &fakeDirectory{
		members: map[string][]*domain.PodMember{
			"pod-1": {{UserID: "user-owner"}, {UserID: "user-a"}},
		},
		podIDs: map[string][]string{
			"user-a": {"pod-1", "pod-2"},
		},
	}
	notifier := &fakeNotifier{}
	svc := NewEventService(repo, directory, notifier, testLogger, 2*time.Second)
	return svc, repo, notifier
}

func TestCreateEvent(t *testing.T) {
	t.Run("creates and notifies pod", func(t *testing.T) {
		svc, _, notifier := eventFixture()
		event := domain.NewEvent("pod-1", "Game night", nil, time.Now().Add(24*time.Hour), nil, nil, "", time.Now())

		created, err := svc.CreateEvent(context.Background(), "user-owner", event)
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		require.Equal(t, "user-owner", created.CreatedBy)

		require.Len(t, notifier.changes, 1)
		require.Equal(t, domain.ChangeEventCreated, notifier.changes[0].Type)
		require.Equal(t, "user-owner", notifier.changes[0].ActorID)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		svc, _, notifier := eventFixture()
		event := domain.NewEvent("pod-1", "", nil, time.Now(), nil, nil, "", time.Now())

		_, err := svc.CreateEvent(context.Background(), "user-owner", event)
		require.True(t, domain.IsValidationError(err))
		require.Empty(t, notifier.changes)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		svc, _, _ := eventFixture()
		starts := time.Now().Add(24 * time.Hour)
		ends := starts.Add(-time.Hour)
		event := domain.NewEvent("pod-1", "Game night", nil, starts, &ends, nil, "", time.Now())

		_, err := svc.CreateEvent(context.Background(), "user-owner", event)
		require.True(t, domain.IsValidationError(err))
	})

	t.Run("rejects non-member", func(t *testing.T) {
		svc, _, _ := eventFixture()
		event := domain.NewEvent("pod-1", "Game night", nil, time.Now(), nil, nil, "", time.Now())

		_, err := svc.CreateEvent(context.Background(), "user-stranger", event)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestUpdateEvent(t *testing.T) {
	t.Run("schedule change notifies with changed fields", func(t *testing.T) {
		event := testEvent()
		svc, repo, notifier := eventFixture(event)
		newStart := event.StartsAt.Add(time.Hour)
		repo.updateFn = func(id string, patch domain.EventPatch) (*domain.Event, error) {
			updated := *event
			updated.StartsAt = newStart
			return &updated, nil
		}

		updated, err := svc.UpdateEvent(context.Background(), "event-1", "user-a", domain.EventPatch{StartsAt: &newStart})
		require.NoError(t, err)
		require.Equal(t, newStart, updated.StartsAt)

		require.Len(t, notifier.changes, 1)
		require.Equal(t, domain.ChangeScheduleChanged, notifier.changes[0].Type)
		payload := notifier.changes[0].Payload.(domain.SchedulePayload)
		require.Equal(t, []string{"starts_at"}, payload.ChangedFields)
	})

	t.Run("description-only edit saves silently", func(t *testing.T) {
		event := testEvent()
		svc, _, notifier := eventFixture(event)
		desc := strptr("Bring your own snacks")

		_, err := svc.UpdateEvent(context.Background(), "event-1", "user-a", domain.EventPatch{Description: &desc})
		require.NoError(t, err)
		require.Empty(t, notifier.changes)
	})

	t.Run("rejects canceled event", func(t *testing.T) {
		event := testEvent()
		now := time.Now()
		event.CanceledAt = &now
		svc, _, _ := eventFixture(event)
		title := "New title"

		_, err := svc.UpdateEvent(context.Background(), "event-1", "user-a", domain.EventPatch{Title: &title})
		require.ErrorIs(t, err, domain.ErrEventCanceled)
	})
}

func TestCancelEvent(t *testing.T) {
	t.Run("creator cancels and notifies", func(t *testing.T) {
		event := testEvent()
		svc, _, notifier := eventFixture(event)

		canceled, err := svc.CancelEvent(context.Background(), "event-1", "user-owner", strptr("Rain"))
		require.NoError(t, err)
		require.True(t, canceled.Canceled())
		require.Equal(t, "Rain", *canceled.CancelReason)

		require.Len(t, notifier.changes, 1)
		require.Equal(t, domain.ChangeEventCancelled, notifier.changes[0].Type)
	})

	t.Run("only the creator may cancel", func(t *testing.T) {
		svc, _, _ := eventFixture(testEvent())

		_, err := svc.CancelEvent(context.Background(), "event-1", "user-a", nil)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("second cancel is a silent no-op", func(t *testing.T) {
		event := testEvent()
		svc, _, notifier := eventFixture(event)

		_, err := svc.CancelEvent(context.Background(), "event-1", "user-owner", nil)
		require.NoError(t, err)
		again, err := svc.CancelEvent(context.Background(), "event-1", "user-owner", strptr("again"))
		require.NoError(t, err)
		require.True(t, again.Canceled())
		require.Len(t, notifier.changes, 1)
	})
}

func TestListUpcoming(t *testing.T) {
	t.Run("queries the caller's pods", func(t *testing.T) {
		svc, repo, _ := eventFixture()
		repo.upcoming = []*domain.Event{testEvent()}

		events, err := svc.ListUpcoming(context.Background(), "user-a", 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, []string{"pod-1", "pod-2"}, repo.upcomingIn)
	})

	t.Run("no pods means no query", func(t *testing.T) {
		svc, repo, _ := eventFixture()

		events, err := svc.ListUpcoming(context.Background(), "user-lonely", 10)
		require.NoError(t, err)
		require.Empty(t, events)
		require.Nil(t, repo.upcomingIn)
	})
}
