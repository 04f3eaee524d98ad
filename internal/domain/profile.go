package domain

import "context"

// Profile carries the display fields used to name an actor in
// notification text and to address cancellation email.
type Profile struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"display_name"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
}

// ProfileRepository defines read access to member profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Profile, error)
}
