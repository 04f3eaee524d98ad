package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"podpulse/internal/domain"
)

type checklistService struct {
	checklistRepo  domain.ChecklistRepository
	eventRepo      domain.EventRepository
	directory      domain.MembershipDirectory
	broker         domain.Broker
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewChecklistService returns the checklist service. Checklist changes
// invalidate the event's checklist topic but never produce notification
// ledger rows.
func NewChecklistService(
	checklistRepo domain.ChecklistRepository,
	eventRepo domain.EventRepository,
	directory domain.MembershipDirectory,
	broker domain.Broker,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ChecklistService {
	return &checklistService{
		checklistRepo:  checklistRepo,
		eventRepo:      eventRepo,
		directory:      directory,
		broker:         broker,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *checklistService) guardWrite(ctx context.Context, eventID, actorID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	ok, err := s.directory.IsActiveMember(ctx, event.PodID, actorID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return domain.ErrForbidden
	}
	if event.Canceled() {
		return domain.ErrEventCanceled
	}
	return nil
}

func (s *checklistService) AddItem(ctx context.Context, eventID, actorID, label string, note *string) (*domain.ChecklistItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(label) == "" {
		return nil, domain.NewValidationError("label", "must not be empty")
	}
	if err := s.guardWrite(ctx, eventID, actorID); err != nil {
		return nil, err
	}

	item := &domain.ChecklistItem{
		EventID:   eventID,
		Label:     label,
		Note:      note,
		State:     domain.ChecklistOpen,
		CreatedBy: actorID,
		UpdatedAt: time.Now(),
	}
	if err := s.checklistRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create checklist item: %w", err)
	}
	s.publishChecklist(ctx, eventID)
	return item, nil
}

func (s *checklistService) CycleItem(ctx context.Context, eventID, itemID, actorID string) (*domain.ChecklistItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.guardWrite(ctx, eventID, actorID); err != nil {
		return nil, err
	}
	item, err := s.checklistRepo.Cycle(ctx, eventID, itemID, time.Now())
	if err != nil {
		return nil, err
	}
	s.publishChecklist(ctx, eventID)
	return item, nil
}

func (s *checklistService) ListItems(ctx context.Context, eventID, callerID string) ([]*domain.ChecklistItem, error) {
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
	return s.checklistRepo.ListByEventID(ctx, eventID)
}

func (s *checklistService) publishChecklist(ctx context.Context, eventID string) {
	if err := s.broker.Publish(ctx, domain.EventChecklistTopic(eventID)); err != nil {
		s.logger.Warn("checklist publish failed", "event_id", eventID, "error", err)
	}
}
