package domain

import (
	"context"
	"time"
)

// RSVP is a member's stated intent to attend an event.
type RSVP string

const (
	RSVPYes   RSVP = "yes"
	RSVPNo    RSVP = "no"
	RSVPMaybe RSVP = "maybe"
)

// Valid reports whether r is one of the known RSVP values.
func (r RSVP) Valid() bool {
	switch r {
	case RSVPYes, RSVPNo, RSVPMaybe:
		return true
	}
	return false
}

// Arrival is a member's live status en route to or at an event,
// distinct from their RSVP.
type Arrival string

const (
	ArrivalNotSure  Arrival = "not_sure"
	ArrivalOnTheWay Arrival = "on_the_way"
	ArrivalArrived  Arrival = "arrived"
	ArrivalLate     Arrival = "late"
)

// Valid reports whether a is one of the known arrival values.
func (a Arrival) Valid() bool {
	switch a {
	case ArrivalNotSure, ArrivalOnTheWay, ArrivalArrived, ArrivalLate:
		return true
	}
	return false
}

// AttendanceRecord is the single RSVP/arrival row for an (event, user)
// pair. ETAMinutes is meaningful only while the member has not arrived;
// a nil ETA with Arrival "arrived" means "here now".
// swagger:model AttendanceRecord
type AttendanceRecord struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	RSVP       RSVP      `json:"rsvp"`
	Arrival    Arrival   `json:"arrival"`
	ETAMinutes *int      `json:"eta_minutes"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AttendancePatch is a partial update applied to one attendance record.
// Nil fields are left unchanged. ETAMinutes applies only when Arrival is
// set; an arrival update with a nil ETA clears any stored ETA.
type AttendancePatch struct {
	RSVP       *RSVP
	Arrival    *Arrival
	ETAMinutes *int
}

// AttendanceRepository defines storage operations for attendance records.
// Upsert must be a single atomic statement so concurrent writers on the
// same key resolve last-writer-wins by updated_at.
type AttendanceRepository interface {
	Upsert(ctx context.Context, eventID, userID string, patch AttendancePatch, updatedAt time.Time) (*AttendanceRecord, error)
	ListByEventID(ctx context.Context, eventID string) ([]*AttendanceRecord, error)
	// ListAttendingUserIDs returns the distinct user IDs with rsvp yes or
	// maybe for the event, read at call time.
	ListAttendingUserIDs(ctx context.Context, eventID string) ([]string, error)
}

// AttendanceService defines member-facing attendance operations. Every
// mutation verifies the event is interactable and fans out the change.
type AttendanceService interface {
	UpdateRSVP(ctx context.Context, eventID, actorID string, rsvp RSVP) (*AttendanceRecord, error)
	UpdateArrival(ctx context.Context, eventID, actorID string, arrival Arrival, etaMinutes *int) (*AttendanceRecord, error)
	ListAttendance(ctx context.Context, eventID, callerID string) ([]*AttendanceRecord, error)
}
