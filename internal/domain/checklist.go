package domain

import (
	"context"
	"time"
)

// ChecklistState is the lifecycle state of a prep item.
type ChecklistState string

const (
	ChecklistOpen    ChecklistState = "open"
	ChecklistDone    ChecklistState = "done"
	ChecklistBlocked ChecklistState = "blocked"
)

// Next advances the state along the fixed cycle open→done→blocked→open.
func (s ChecklistState) Next() ChecklistState {
	switch s {
	case ChecklistOpen:
		return ChecklistDone
	case ChecklistDone:
		return ChecklistBlocked
	default:
		return ChecklistOpen
	}
}

// ChecklistItem is one prep item on an event's shared checklist. Items
// are cycled by any pod member, never deleted.
// swagger:model ChecklistItem
type ChecklistItem struct {
	ID        string         `json:"id"`
	EventID   string         `json:"event_id"`
	Label     string         `json:"label"`
	Note      *string        `json:"note"`
	State     ChecklistState `json:"state"`
	CreatedBy string         `json:"created_by"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ChecklistRepository defines storage operations for checklist items.
type ChecklistRepository interface {
	Create(ctx context.Context, item *ChecklistItem) error
	// Cycle atomically advances the item's state along the fixed cycle.
	// Returns ErrNotFound when the item does not belong to the event.
	Cycle(ctx context.Context, eventID, itemID string, updatedAt time.Time) (*ChecklistItem, error)
	ListByEventID(ctx context.Context, eventID string) ([]*ChecklistItem, error)
}

// ChecklistService defines member-facing checklist operations.
type ChecklistService interface {
	AddItem(ctx context.Context, eventID, actorID, label string, note *string) (*ChecklistItem, error)
	CycleItem(ctx context.Context, eventID, itemID, actorID string) (*ChecklistItem, error)
	ListItems(ctx context.Context, eventID, callerID string) ([]*ChecklistItem, error)
}
