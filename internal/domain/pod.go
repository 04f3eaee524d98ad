package domain

import "context"

// MemberRole is a member's role within a pod.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

// PodMember is one active membership row as seen by the directory.
type PodMember struct {
	UserID string     `json:"user_id"`
	Role   MemberRole `json:"role"`
}

// MembershipDirectory resolves pod membership. Pod CRUD itself lives
// outside this service; the notification core only reads membership,
// always at call time so departed members never receive fan-out.
type MembershipDirectory interface {
	ActiveMembers(ctx context.Context, podID string) ([]*PodMember, error)
	IsActiveMember(ctx context.Context, podID, userID string) (bool, error)
	// ListPodIDs returns the pods the user is an active member of.
	ListPodIDs(ctx context.Context, userID string) ([]string, error)
}
