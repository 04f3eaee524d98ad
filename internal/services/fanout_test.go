package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"podpulse/internal/domain"
)

type fanoutFixture struct {
	directory        *fakeDirectory
	attendanceRepo   *fakeAttendanceRepo
	profileRepo      *fakeProfileRepo
	notificationRepo *fakeNotificationRepo
	tokenRepo        *fakeTokenRepo
	broker           *fakeBroker
	pusher           *fakePusher
	mailer           *fakeMailer
	notifier         domain.ChangeNotifier
}

func newFanoutFixture() *fanoutFixture {
	f := &fanoutFixture{
		directory: &fakeDirectory{members: map[string][]*domain.PodMember{
			"pod-1": {{UserID: "user-a"}, {UserID: "user-b"}, {UserID: "user-actor"}},
		}},
		attendanceRepo: &fakeAttendanceRepo{attending: []string{"user-a", "user-actor"}},
		profileRepo: &fakeProfileRepo{profiles: map[string]*domain.Profile{
			"user-actor": {ID: "user-actor", DisplayName: strptr("Sam")},
			"user-a":     {ID: "user-a", Email: strptr("a@example.com")},
			"user-b":     {ID: "user-b"},
		}},
		notificationRepo: &fakeNotificationRepo{},
		tokenRepo:        &fakeTokenRepo{},
		broker:           &fakeBroker{},
		pusher:           &fakePusher{},
		mailer:           &fakeMailer{},
	}
	f.notifier = NewChangeNotifier(
		NewRecipientResolver(f.directory, f.attendanceRepo),
		f.profileRepo,
		f.notificationRepo,
		f.tokenRepo,
		f.broker,
		f.pusher,
		f.mailer,
		fakeRenderer{},
		testLogger,
	)
	return f
}

func createdChange() domain.Change {
	return domain.Change{
		Type:    domain.ChangeEventCreated,
		Event:   testEvent(),
		ActorID: "user-actor",
		Payload: domain.CreatedPayload{},
	}
}

func TestChangeNotifier(t *testing.T) {
	t.Run("records one ledger row per recipient and publishes inbox topics", func(t *testing.T) {
		f := newFanoutFixture()

		f.notifier.Notify(context.Background(), createdChange())

		require.Len(t, f.notificationRepo.batches, 1)
		batch := f.notificationRepo.batches[0]
		require.Len(t, batch, 2)
		require.Equal(t, "user-a", batch[0].RecipientID)
		require.Equal(t, "user-b", batch[1].RecipientID)
		require.Equal(t, batch[0].Title, batch[1].Title)
		require.Equal(t, "New event: Board game night", batch[0].Title)
		require.Equal(t, []string{"inbox:user-a", "inbox:user-b"}, f.broker.published)
	})

	t.Run("no recipients short-circuits everything", func(t *testing.T) {
		f := newFanoutFixture()
		f.directory.members["pod-1"] = []*domain.PodMember{{UserID: "user-actor"}}

		f.notifier.Notify(context.Background(), createdChange())

		require.Empty(t, f.notificationRepo.batches)
		require.Empty(t, f.broker.published)
		require.Empty(t, f.pusher.delivered)
	})

	t.Run("ledger failure stops push, never invents deliveries", func(t *testing.T) {
		f := newFanoutFixture()
		f.notificationRepo.batchErr = errors.New("insert failed")
		f.tokenRepo.tokens = []*domain.PushToken{{UserID: "user-a", Token: "tok-1"}}

		f.notifier.Notify(context.Background(), createdChange())

		require.Empty(t, f.broker.published)
		require.Empty(t, f.pusher.delivered)
	})

	t.Run("one push message per device token", func(t *testing.T) {
		f := newFanoutFixture()
		f.tokenRepo.tokens = []*domain.PushToken{
			{UserID: "user-a", Token: "tok-a1"},
			{UserID: "user-a", Token: "tok-a2"},
			{UserID: "user-b", Token: "tok-b1"},
		}

		f.notifier.Notify(context.Background(), createdChange())

		require.Len(t, f.pusher.delivered, 1)
		messages := f.pusher.delivered[0]
		require.Len(t, messages, 3)
		require.Equal(t, "tok-a1", messages[0].To)
		require.Equal(t, "event-1", messages[0].Data["event_id"])
		require.Equal(t, "event_created", messages[0].Data["type"])
	})

	t.Run("push enqueue failure does not panic or block", func(t *testing.T) {
		f := newFanoutFixture()
		f.tokenRepo.tokens = []*domain.PushToken{{UserID: "user-a", Token: "tok-1"}}
		f.pusher.err = errors.New("queue full")

		f.notifier.Notify(context.Background(), createdChange())

		require.Len(t, f.notificationRepo.batches, 1)
	})

	t.Run("completes after caller cancellation", func(t *testing.T) {
		f := newFanoutFixture()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		f.notifier.Notify(ctx, createdChange())

		require.Len(t, f.notificationRepo.batches, 1)
		require.Len(t, f.broker.published, 2)
	})

	t.Run("missing actor profile falls back to anonymized name", func(t *testing.T) {
		f := newFanoutFixture()
		delete(f.profileRepo.profiles, "user-actor")

		f.notifier.Notify(context.Background(), domain.Change{
			Type:    domain.ChangeArrivalUpdate,
			Event:   testEvent(),
			ActorID: "user-actor",
			Payload: domain.ArrivalPayload{Arrival: domain.ArrivalOnTheWay},
		})

		require.Len(t, f.notificationRepo.batches, 1)
		require.Equal(t, "Member CTOR is on the way", f.notificationRepo.batches[0][0].Title)
	})

	t.Run("cancellation mirrors to recipients with email", func(t *testing.T) {
		f := newFanoutFixture()

		f.notifier.Notify(context.Background(), domain.Change{
			Type:    domain.ChangeEventCancelled,
			Event:   testEvent(),
			ActorID: "user-actor",
			Payload: domain.CancelPayload{CancelReason: strptr("Rain")},
		})

		require.Len(t, f.mailer.sent, 1)
		require.Equal(t, "a@example.com", f.mailer.sent[0].To)
	})

	t.Run("non-cancellation changes send no email", func(t *testing.T) {
		f := newFanoutFixture()

		f.notifier.Notify(context.Background(), createdChange())

		require.Empty(t, f.mailer.sent)
	})

	t.Run("ledger rows carry created_at and no read_at", func(t *testing.T) {
		f := newFanoutFixture()
		before := time.Now()

		f.notifier.Notify(context.Background(), createdChange())

		entry := f.notificationRepo.batches[0][0]
		require.NotEmpty(t, entry.ID)
		require.False(t, entry.CreatedAt.Before(before))
		require.Nil(t, entry.ReadAt)
	})
}
