package controllers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"podpulse/internal/delivery/http/middleware"
	"podpulse/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// authedRequest builds a request carrying an authenticated user ID, the
// way the auth middleware would.
func authedRequest(method, target string, body io.Reader, userID string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.SetUserID(req.Context(), userID))
}

type fakeEventService struct {
	createFn func(actorID string, event *domain.Event) (*domain.Event, error)
	updateFn func(eventID, actorID string, patch domain.EventPatch) (*domain.Event, error)
	cancelFn func(eventID, actorID string, reason *string) (*domain.Event, error)
	getFn    func(eventID, callerID string) (*domain.Event, error)
	listFn   func(callerID string, limit int) ([]*domain.Event, error)
}

func (s *fakeEventService) CreateEvent(_ context.Context, actorID string, event *domain.Event) (*domain.Event, error) {
	return s.createFn(actorID, event)
}

func (s *fakeEventService) UpdateEvent(_ context.Context, eventID, actorID string, patch domain.EventPatch) (*domain.Event, error) {
	return s.updateFn(eventID, actorID, patch)
}

func (s *fakeEventService) CancelEvent(_ context.Context, eventID, actorID string, reason *string) (*domain.Event, error) {
	return s.cancelFn(eventID, actorID, reason)
}

func (s *fakeEventService) GetEvent(_ context.Context, eventID, callerID string) (*domain.Event, error) {
	return s.getFn(eventID, callerID)
}

func (s *fakeEventService) ListUpcoming(_ context.Context, callerID string, limit int) ([]*domain.Event, error) {
	return s.listFn(callerID, limit)
}

type fakeAttendanceService struct {
	rsvpFn    func(eventID, actorID string, rsvp domain.RSVP) (*domain.AttendanceRecord, error)
	arrivalFn func(eventID, actorID string, arrival domain.Arrival, eta *int) (*domain.AttendanceRecord, error)
	listFn    func(eventID, callerID string) ([]*domain.AttendanceRecord, error)
}

func (s *fakeAttendanceService) UpdateRSVP(_ context.Context, eventID, actorID string, rsvp domain.RSVP) (*domain.AttendanceRecord, error) {
	return s.rsvpFn(eventID, actorID, rsvp)
}

func (s *fakeAttendanceService) UpdateArrival(_ context.Context, eventID, actorID string, arrival domain.Arrival, eta *int) (*domain.AttendanceRecord, error) {
	return s.arrivalFn(eventID, actorID, arrival, eta)
}

func (s *fakeAttendanceService) ListAttendance(_ context.Context, eventID, callerID string) ([]*domain.AttendanceRecord, error) {
	return s.listFn(eventID, callerID)
}

type fakeInboxService struct {
	listFn        func(recipientID string, limit int) ([]*domain.NotificationEntry, error)
	markReadFn    func(id, recipientID string) error
	markAllReadFn func(recipientID string) (int64, error)
}

func (s *fakeInboxService) ListNotifications(_ context.Context, recipientID string, limit int) ([]*domain.NotificationEntry, error) {
	return s.listFn(recipientID, limit)
}

func (s *fakeInboxService) MarkRead(_ context.Context, id, recipientID string) error {
	return s.markReadFn(id, recipientID)
}

func (s *fakeInboxService) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	return s.markAllReadFn(recipientID)
}

type fakeSubscription struct {
	ch chan struct{}
}

func (s *fakeSubscription) C() <-chan struct{} { return s.ch }
func (s *fakeSubscription) Close() error       { return nil }

type fakeBroker struct {
	sub        *fakeSubscription
	subscribed []string
}

func (b *fakeBroker) Publish(_ context.Context, _ string) error { return nil }

func (b *fakeBroker) Subscribe(_ context.Context, topic string) (domain.Subscription, error) {
	b.subscribed = append(b.subscribed, topic)
	return b.sub, nil
}
