package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"podpulse/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeEventRepo struct {
	events map[string]*domain.Event

	createErr  error
	updateFn   func(id string, patch domain.EventPatch) (*domain.Event, error)
	cancelFn   func(id string, reason *string) (*domain.Event, error)
	upcoming   []*domain.Event
	upcomingIn []string
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	repo := &fakeEventRepo{events: make(map[string]*domain.Event)}
	for _, e := range events {
		repo.events[e.ID] = e
	}
	return repo
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.Event) error {
	if r.createErr != nil {
		return r.createErr
	}
	if event.ID == "" {
		event.ID = "event-generated"
	}
	r.events[event.ID] = event
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (r *fakeEventRepo) Update(_ context.Context, id string, patch domain.EventPatch, _ time.Time) (*domain.Event, error) {
	if r.updateFn != nil {
		return r.updateFn(id, patch)
	}
	return r.events[id], nil
}

func (r *fakeEventRepo) Cancel(_ context.Context, id string, reason *string, canceledAt time.Time) (*domain.Event, error) {
	if r.cancelFn != nil {
		return r.cancelFn(id, reason)
	}
	event := r.events[id]
	copied := *event
	copied.CanceledAt = &canceledAt
	copied.CancelReason = reason
	r.events[id] = &copied
	return &copied, nil
}

func (r *fakeEventRepo) ListUpcomingByPodIDs(_ context.Context, podIDs []string, _ time.Time, _ int) ([]*domain.Event, error) {
	r.upcomingIn = podIDs
	return r.upcoming, nil
}

type fakeDirectory struct {
	members map[string][]*domain.PodMember // podID -> members
	podIDs  map[string][]string            // userID -> pods
	err     error
}

func (d *fakeDirectory) ActiveMembers(_ context.Context, podID string) ([]*domain.PodMember, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.members[podID], nil
}

func (d *fakeDirectory) IsActiveMember(_ context.Context, podID, userID string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	for _, m := range d.members[podID] {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (d *fakeDirectory) ListPodIDs(_ context.Context, userID string) ([]string, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.podIDs[userID], nil
}

type fakeAttendanceRepo struct {
	upsertFn  func(eventID, userID string, patch domain.AttendancePatch) (*domain.AttendanceRecord, error)
	records   []*domain.AttendanceRecord
	attending []string
	err       error
}

func (r *fakeAttendanceRepo) Upsert(_ context.Context, eventID, userID string, patch domain.AttendancePatch, updatedAt time.Time) (*domain.AttendanceRecord, error) {
	if r.upsertFn != nil {
		return r.upsertFn(eventID, userID, patch)
	}
	record := &domain.AttendanceRecord{
		EventID:   eventID,
		UserID:    userID,
		RSVP:      domain.RSVPMaybe,
		Arrival:   domain.ArrivalNotSure,
		UpdatedAt: updatedAt,
	}
	if patch.RSVP != nil {
		record.RSVP = *patch.RSVP
	}
	if patch.Arrival != nil {
		record.Arrival = *patch.Arrival
		record.ETAMinutes = patch.ETAMinutes
	}
	return record, nil
}

func (r *fakeAttendanceRepo) ListByEventID(_ context.Context, _ string) ([]*domain.AttendanceRecord, error) {
	return r.records, r.err
}

func (r *fakeAttendanceRepo) ListAttendingUserIDs(_ context.Context, _ string) ([]string, error) {
	return r.attending, r.err
}

type fakeChecklistRepo struct {
	cycleFn func(eventID, itemID string) (*domain.ChecklistItem, error)
	items   []*domain.ChecklistItem
	created []*domain.ChecklistItem
	err     error
}

func (r *fakeChecklistRepo) Create(_ context.Context, item *domain.ChecklistItem) error {
	if r.err != nil {
		return r.err
	}
	item.ID = "item-created"
	r.created = append(r.created, item)
	return nil
}

func (r *fakeChecklistRepo) Cycle(_ context.Context, eventID, itemID string, _ time.Time) (*domain.ChecklistItem, error) {
	if r.cycleFn != nil {
		return r.cycleFn(eventID, itemID)
	}
	return nil, domain.ErrNotFound
}

func (r *fakeChecklistRepo) ListByEventID(_ context.Context, _ string) ([]*domain.ChecklistItem, error) {
	return r.items, r.err
}

type fakeNotificationRepo struct {
	batches   [][]*domain.NotificationEntry
	batchErr  error
	listed    []*domain.NotificationEntry
	listLimit int
}

func (r *fakeNotificationRepo) CreateBatch(_ context.Context, entries []*domain.NotificationEntry) (int, error) {
	if r.batchErr != nil {
		return 0, r.batchErr
	}
	r.batches = append(r.batches, entries)
	return len(entries), nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, _ string, limit int) ([]*domain.NotificationEntry, error) {
	r.listLimit = limit
	return r.listed, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, _ string, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeProfileRepo struct {
	profiles map[string]*domain.Profile
	err      error
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	if r.err != nil {
		return nil, r.err
	}
	profile, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

func (r *fakeProfileRepo) ListByIDs(_ context.Context, ids []string) ([]*domain.Profile, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*domain.Profile
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeTokenRepo struct {
	tokens []*domain.PushToken
	err    error
}

func (r *fakeTokenRepo) ListByUserIDs(_ context.Context, _ []string) ([]*domain.PushToken, error) {
	return r.tokens, r.err
}

type fakeBroker struct {
	published []string
	err       error
}

func (b *fakeBroker) Publish(_ context.Context, topic string) error {
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, topic)
	return nil
}

func (b *fakeBroker) Subscribe(_ context.Context, _ string) (domain.Subscription, error) {
	return nil, nil
}

type fakePusher struct {
	delivered [][]domain.PushMessage
	err       error
}

func (p *fakePusher) Deliver(messages []domain.PushMessage) error {
	if p.err != nil {
		return p.err
	}
	p.delivered = append(p.delivered, messages)
	return nil
}

type fakeNotifier struct {
	changes []domain.Change
}

func (n *fakeNotifier) Notify(_ context.Context, change domain.Change) {
	n.changes = append(n.changes, change)
}

type sentMail struct {
	To      string
	Subject string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(_ string, _ interface{}) (string, string, string, error) {
	return "subject", "<p>html</p>", "text", nil
}

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }
