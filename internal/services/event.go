package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"podpulse/internal/domain"
)

const (
	defaultUpcomingLimit = 50
	maxUpcomingLimit     = 100
)

type eventService struct {
	eventRepo      domain.EventRepository
	directory      domain.MembershipDirectory
	notifier       domain.ChangeNotifier
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	directory domain.MembershipDirectory,
	notifier domain.ChangeNotifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		directory:      directory,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, actorID string, event *domain.Event) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.Title == "" {
		return nil, domain.NewValidationError("title", "must not be empty")
	}
	if event.StartsAt.IsZero() {
		return nil, domain.NewValidationError("starts_at", "is required")
	}
	if event.EndsAt != nil && !event.EndsAt.After(event.StartsAt) {
		return nil, domain.NewValidationError("ends_at", "must be after starts_at")
	}

	ok, err := s.directory.IsActiveMember(ctx, event.PodID, actorID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	event.CreatedBy = actorID
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.notifier.Notify(ctx, domain.Change{
		Type:    domain.ChangeEventCreated,
		Event:   event,
		ActorID: actorID,
		Payload: domain.CreatedPayload{},
	})
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, actorID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.Title != nil && *patch.Title == "" {
		return nil, domain.NewValidationError("title", "must not be empty")
	}

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

	changedFields := patch.ChangedFields()
	updated, err := s.eventRepo.Update(ctx, eventID, patch, time.Now())
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	// Description-only edits are saved but not schedule-relevant, so
	// they do not notify anyone.
	if len(changedFields) > 0 {
		s.notifier.Notify(ctx, domain.Change{
			Type:    domain.ChangeScheduleChanged,
			Event:   updated,
			ActorID: actorID,
			Payload: domain.SchedulePayload{ChangedFields: changedFields},
		})
	}
	return updated, nil
}

func (s *eventService) CancelEvent(ctx context.Context, eventID, actorID string, reason *string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatedBy != actorID {
		return nil, domain.ErrForbidden
	}
	if event.Canceled() {
		// Cancel is idempotent: the second call changes nothing and
		// notifies no one.
		return event, nil
	}

	canceled, err := s.eventRepo.Cancel(ctx, eventID, reason, time.Now())
	if err != nil {
		return nil, fmt.Errorf("cancel event: %w", err)
	}

	s.notifier.Notify(ctx, domain.Change{
		Type:    domain.ChangeEventCancelled,
		Event:   canceled,
		ActorID: actorID,
		Payload: domain.CancelPayload{CancelReason: reason},
	})
	return canceled, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
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
	return event, nil
}

func (s *eventService) ListUpcoming(ctx context.Context, callerID string, limit int) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	if limit > maxUpcomingLimit {
		limit = maxUpcomingLimit
	}

	podIDs, err := s.directory.ListPodIDs(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}
	if len(podIDs) == 0 {
		return []*domain.Event{}, nil
	}
	events, err := s.eventRepo.ListUpcomingByPodIDs(ctx, podIDs, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, nil
}
