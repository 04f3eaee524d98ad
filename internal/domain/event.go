package domain

import (
	"context"
	"time"
)

// Event is a scheduled gathering owned by a pod. The notification core
// treats it as read-mostly context: a set canceled_at gates all further
// attendance and checklist writes.
// swagger:model Event
type Event struct {
	ID           string     `json:"id"`
	PodID        string     `json:"pod_id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	StartsAt     time.Time  `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
	LocationText *string    `json:"location_text"`
	CreatedBy    string     `json:"created_by"`
	CanceledAt   *time.Time `json:"canceled_at"`
	CancelReason *string    `json:"cancel_reason"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Canceled reports whether the event has been canceled.
func (e *Event) Canceled() bool { return e.CanceledAt != nil }

// NewEvent returns a new Event. ID is set by the repository on create.
func NewEvent(podID, title string, description *string, startsAt time.Time, endsAt *time.Time, locationText *string, createdBy string, now time.Time) *Event {
	return &Event{
		PodID:        podID,
		Title:        title,
		Description:  description,
		StartsAt:     startsAt,
		EndsAt:       endsAt,
		LocationText: locationText,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// EventPatch is a partial update to an event's schedule details. Nil
// fields are unchanged. Pointer-to-pointer fields distinguish "leave
// alone" (nil) from "set to null" (*T pointing at nil).
type EventPatch struct {
	Title        *string
	Description  **string
	StartsAt     *time.Time
	EndsAt       **time.Time
	LocationText **string
}

// ChangedFields lists the schedule-relevant field names present in the
// patch, in the order they appear in notification payloads.
func (p EventPatch) ChangedFields() []string {
	var fields []string
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.StartsAt != nil {
		fields = append(fields, "starts_at")
	}
	if p.EndsAt != nil {
		fields = append(fields, "ends_at")
	}
	if p.LocationText != nil {
		fields = append(fields, "location_text")
	}
	return fields
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, id string, patch EventPatch, updatedAt time.Time) (*Event, error)
	Cancel(ctx context.Context, id string, reason *string, canceledAt time.Time) (*Event, error)
	ListUpcomingByPodIDs(ctx context.Context, podIDs []string, after time.Time, limit int) ([]*Event, error)
}

// EventService defines event lifecycle operations. Create, update, and
// cancel each trigger notification fan-out as a side effect.
type EventService interface {
	CreateEvent(ctx context.Context, actorID string, event *Event) (*Event, error)
	UpdateEvent(ctx context.Context, eventID, actorID string, patch EventPatch) (*Event, error)
	CancelEvent(ctx context.Context, eventID, actorID string, reason *string) (*Event, error)
	GetEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	ListUpcoming(ctx context.Context, callerID string, limit int) ([]*Event, error)
}
