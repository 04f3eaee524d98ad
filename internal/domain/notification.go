package domain

import (
	"context"
	"time"
)

// ChangeType identifies the kind of state change behind a notification.
type ChangeType string

const (
	ChangeEventCreated    ChangeType = "event_created"
	ChangeScheduleChanged ChangeType = "schedule_changed"
	ChangeEventCancelled  ChangeType = "event_cancelled"
	ChangeArrivalUpdate   ChangeType = "arrival_update"
	ChangeETAUpdate       ChangeType = "eta_update"
)

// Payload is the typed per-change payload. Each variant carries only the
// fields relevant to its change type and is flattened to an untyped map
// at the wire boundary.
type Payload interface {
	Data() map[string]any
}

// ArrivalPayload accompanies arrival_update and eta_update changes.
type ArrivalPayload struct {
	Arrival    Arrival
	ETAMinutes *int
}

func (p ArrivalPayload) Data() map[string]any {
	m := map[string]any{"arrival": string(p.Arrival), "eta_minutes": nil}
	if p.ETAMinutes != nil {
		m["eta_minutes"] = *p.ETAMinutes
	}
	return m
}

// SchedulePayload accompanies schedule_changed changes.
type SchedulePayload struct {
	ChangedFields []string
}

func (p SchedulePayload) Data() map[string]any {
	fields := p.ChangedFields
	if fields == nil {
		fields = []string{}
	}
	return map[string]any{"changed_fields": fields}
}

// CancelPayload accompanies event_cancelled changes.
type CancelPayload struct {
	CancelReason *string
}

func (p CancelPayload) Data() map[string]any {
	m := map[string]any{"cancel_reason": nil}
	if p.CancelReason != nil {
		m["cancel_reason"] = *p.CancelReason
	}
	return m
}

// CreatedPayload accompanies event_created changes. It carries no fields.
type CreatedPayload struct{}

func (CreatedPayload) Data() map[string]any { return map[string]any{} }

// Change is one committed state change handed to the fan-out pipeline.
type Change struct {
	Type    ChangeType
	Event   *Event
	ActorID string
	Payload Payload
}

// NotificationEntry is one durable ledger row for one recipient. Rows
// are never mutated after insert except for read_at, and never deleted.
// swagger:model NotificationEntry
type NotificationEntry struct {
	ID          string         `json:"id"`
	RecipientID string         `json:"recipient_id"`
	ActorID     string         `json:"actor_id"`
	PodID       string         `json:"pod_id"`
	EventID     string         `json:"event_id"`
	Type        ChangeType     `json:"type"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Data        map[string]any `json:"data"`
	CreatedAt   time.Time      `json:"created_at"`
	ReadAt      *time.Time     `json:"read_at"`
}

// NotificationRepository defines storage for the notification ledger.
// CreateBatch is all-or-nothing: either every row commits or none do.
type NotificationRepository interface {
	CreateBatch(ctx context.Context, entries []*NotificationEntry) (int, error)
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*NotificationEntry, error)
	// MarkRead stamps read_at once; repeated calls keep the original
	// timestamp. Returns ErrNotFound when the entry does not belong to
	// the recipient.
	MarkRead(ctx context.Context, id, recipientID string, readAt time.Time) error
	// MarkAllRead stamps every unread entry and returns how many changed.
	// Calling it again is a no-op.
	MarkAllRead(ctx context.Context, recipientID string, readAt time.Time) (int64, error)
}

// InboxService defines the recipient-facing notification API.
type InboxService interface {
	ListNotifications(ctx context.Context, recipientID string, limit int) ([]*NotificationEntry, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

// ChangeNotifier fans a committed state change out to interested pod
// members. Implementations must never fail the caller: notification is
// a side effect of the mutation, not a transactional participant.
type ChangeNotifier interface {
	Notify(ctx context.Context, change Change)
}
