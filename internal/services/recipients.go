package services

import (
	"context"
	"fmt"
	"sort"

	"podpulse/internal/domain"
)

// RecipientResolver computes the recipient set for a change, read at
// fan-out time so membership and RSVP edits between the write and the
// fan-out are honored.
type RecipientResolver struct {
	directory      domain.MembershipDirectory
	attendanceRepo domain.AttendanceRepository
}

func NewRecipientResolver(directory domain.MembershipDirectory, attendanceRepo domain.AttendanceRepository) *RecipientResolver {
	return &RecipientResolver{directory: directory, attendanceRepo: attendanceRepo}
}

// Resolve returns the deduplicated, sorted recipient IDs for the
// change. Lifecycle changes (created, cancelled) go to every active pod
// member; everything else goes to members who answered yes or maybe.
// The actor is always excluded.
func (r *RecipientResolver) Resolve(ctx context.Context, change domain.Change) ([]string, error) {
	var candidates []string

	switch change.Type {
	case domain.ChangeEventCreated, domain.ChangeEventCancelled:
		members, err := r.directory.ActiveMembers(ctx, change.Event.PodID)
		if err != nil {
			return nil, fmt.Errorf("list active members: %w", err)
		}
		for _, m := range members {
			candidates = append(candidates, m.UserID)
		}
	default:
		userIDs, err := r.attendanceRepo.ListAttendingUserIDs(ctx, change.Event.ID)
		if err != nil {
			return nil, fmt.Errorf("list attending users: %w", err)
		}
		candidates = userIDs
	}

	seen := make(map[string]struct{}, len(candidates))
	recipients := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if id == "" || id == change.ActorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	sort.Strings(recipients)
	return recipients, nil
}
