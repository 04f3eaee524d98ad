package services

import (
	"context"
	"time"

	"podpulse/internal/domain"
)

const (
	defaultInboxLimit = 50
	maxInboxLimit     = 100
)

type inboxService struct {
	notificationRepo domain.NotificationRepository
	contextTimeout   time.Duration
}

func NewInboxService(notificationRepo domain.NotificationRepository, timeout time.Duration) domain.InboxService {
	return &inboxService{
		notificationRepo: notificationRepo,
		contextTimeout:   timeout,
	}
}

func (s *inboxService) ListNotifications(ctx context.Context, recipientID string, limit int) ([]*domain.NotificationEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if limit <= 0 {
		limit = defaultInboxLimit
	}
	if limit > maxInboxLimit {
		limit = maxInboxLimit
	}
	return s.notificationRepo.ListByRecipient(ctx, recipientID, limit)
}

func (s *inboxService) MarkRead(ctx context.Context, id, recipientID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.notificationRepo.MarkRead(ctx, id, recipientID, time.Now())
}

func (s *inboxService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.notificationRepo.MarkAllRead(ctx, recipientID, time.Now())
}
