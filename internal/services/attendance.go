package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"podpulse/internal/domain"
)

type attendanceService struct {
	attendanceRepo domain.AttendanceRepository
	eventRepo      domain.EventRepository
	directory      domain.MembershipDirectory
	broker         domain.Broker
	notifier       domain.ChangeNotifier
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewAttendanceService(
	attendanceRepo domain.AttendanceRepository,
	eventRepo domain.EventRepository,
	directory domain.MembershipDirectory,
	broker domain.Broker,
	notifier domain.ChangeNotifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		eventRepo:      eventRepo,
		directory:      directory,
		broker:         broker,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// interactableEvent loads the event and verifies the actor may write to
// it: active pod member, event not canceled.
func (s *attendanceService) interactableEvent(ctx context.Context, eventID, actorID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ok, err := s.directory.IsActiveMember(ctx, event.PodID, actorID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	if event.Canceled() {
		return nil, domain.ErrEventCanceled
	}
	return event, nil
}

// UpdateRSVP records the member's intent. RSVP changes are visible to
// pod members who look, but nobody is notified about them.
func (s *attendanceService) UpdateRSVP(ctx context.Context, eventID, actorID string, rsvp domain.RSVP) (*domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !rsvp.Valid() {
		return nil, domain.NewValidationError("rsvp", "must be yes, no, or maybe")
	}
	if _, err := s.interactableEvent(ctx, eventID, actorID); err != nil {
		return nil, err
	}

	record, err := s.attendanceRepo.Upsert(ctx, eventID, actorID, domain.AttendancePatch{RSVP: &rsvp}, time.Now())
	if err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	s.publishAttendance(ctx, eventID)
	return record, nil
}

// UpdateArrival records live status and fans it out to attending
// members. An update carrying an ETA notifies as an ETA share;
// otherwise as a plain status change.
func (s *attendanceService) UpdateArrival(ctx context.Context, eventID, actorID string, arrival domain.Arrival, etaMinutes *int) (*domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !arrival.Valid() {
		return nil, domain.NewValidationError("arrival", "must be not_sure, on_the_way, arrived, or late")
	}
	if etaMinutes != nil && *etaMinutes < 0 {
		return nil, domain.NewValidationError("eta_minutes", "must not be negative")
	}
	// Arriving makes any ETA stale.
	if arrival == domain.ArrivalArrived {
		etaMinutes = nil
	}

	event, err := s.interactableEvent(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}

	record, err := s.attendanceRepo.Upsert(ctx, eventID, actorID, domain.AttendancePatch{
		Arrival:    &arrival,
		ETAMinutes: etaMinutes,
	}, time.Now())
	if err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	s.publishAttendance(ctx, eventID)

	changeType := domain.ChangeArrivalUpdate
	if etaMinutes != nil {
		changeType = domain.ChangeETAUpdate
	}
	s.notifier.Notify(ctx, domain.Change{
		Type:    changeType,
		Event:   event,
		ActorID: actorID,
		Payload: domain.ArrivalPayload{Arrival: arrival, ETAMinutes: etaMinutes},
	})
	return record, nil
}

func (s *attendanceService) ListAttendance(ctx context.Context, eventID, callerID string) ([]*domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ok, err := s.directory.IsActiveMember(ctx, event.PodID, callerID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	return s.attendanceRepo.ListByEventID(ctx, eventID)
}

func (s *attendanceService) publishAttendance(ctx context.Context, eventID string) {
	if err := s.broker.Publish(ctx, domain.EventAttendanceTopic(eventID)); err != nil {
		s.logger.Warn("attendance publish failed", "event_id", eventID, "error", err)
	}
}
