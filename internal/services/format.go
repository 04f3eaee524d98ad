package services

import (
	"fmt"
	"strings"

	"podpulse/internal/domain"
)

const locationFallback = "Location TBD"

// notificationTemplate is the rendered text shared by every recipient of
// one change.
type notificationTemplate struct {
	Title string
	Body  string
	Data  map[string]any
}

// formatEventWindow renders the event's time window for notification
// text, e.g. "Sat · 6:00 PM–8:00 PM". Events without an end time render
// just the start.
func formatEventWindow(event *domain.Event) string {
	start := event.StartsAt
	label := start.Format("Mon · 3:04 PM")
	if event.EndsAt == nil {
		return label
	}
	return label + "–" + event.EndsAt.Format("3:04 PM")
}

func locationLabel(event *domain.Event) string {
	if event.LocationText == nil || *event.LocationText == "" {
		return locationFallback
	}
	return *event.LocationText
}

func arrivalLabel(arrival domain.Arrival) string {
	switch arrival {
	case domain.ArrivalOnTheWay:
		return "on the way"
	case domain.ArrivalArrived:
		return "here"
	case domain.ArrivalLate:
		return "running late"
	default:
		return "unsure"
	}
}

// actorDisplayName picks the best available name for an actor. The
// final fallback anonymizes to the tail of the user ID so notification
// text never leaks a full identifier.
func actorDisplayName(profile *domain.Profile, actorID string) string {
	if profile != nil {
		if profile.DisplayName != nil && *profile.DisplayName != "" {
			return *profile.DisplayName
		}
		var parts []string
		if profile.FirstName != nil && *profile.FirstName != "" {
			parts = append(parts, *profile.FirstName)
		}
		if profile.LastName != nil && *profile.LastName != "" {
			parts = append(parts, *profile.LastName)
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
		if profile.Email != nil && *profile.Email != "" {
			if local, _, found := strings.Cut(*profile.Email, "@"); found && local != "" {
				return local
			}
			return *profile.Email
		}
	}
	return "Member " + idTail(actorID)
}

func idTail(id string) string {
	trimmed := strings.ReplaceAll(id, "-", "")
	if len(trimmed) > 4 {
		trimmed = trimmed[len(trimmed)-4:]
	}
	return strings.ToUpper(trimmed)
}

// buildTemplate renders the per-change notification text. Every
// recipient of the change receives the same title, body, and data.
func buildTemplate(change domain.Change, actorName string) notificationTemplate {
	event := change.Event
	window := formatEventWindow(event)
	location := locationLabel(event)

	var title, body string
	switch change.Type {
	case domain.ChangeEventCreated:
		title = fmt.Sprintf("New event: %s", event.Title)
		body = fmt.Sprintf("%s · %s", window, location)
	case domain.ChangeScheduleChanged:
		title = fmt.Sprintf("Schedule updated: %s", event.Title)
		changeLabel := "Details updated."
		if p, ok := change.Payload.(domain.SchedulePayload); ok && len(p.ChangedFields) > 0 {
			changeLabel = fmt.Sprintf("Changed %s.", strings.Join(p.ChangedFields, ", "))
		}
		body = fmt.Sprintf("%s %s · %s", changeLabel, window, location)
	case domain.ChangeEventCancelled:
		title = fmt.Sprintf("Canceled: %s", event.Title)
		body = fmt.Sprintf("%s canceled this event.", actorName)
		if p, ok := change.Payload.(domain.CancelPayload); ok && p.CancelReason != nil && *p.CancelReason != "" {
			body = *p.CancelReason
		}
	case domain.ChangeETAUpdate:
		title = fmt.Sprintf("%s shared an ETA", actorName)
		body = fmt.Sprintf("%s updated their ETA.", actorName)
		if p, ok := change.Payload.(domain.ArrivalPayload); ok && p.ETAMinutes != nil {
			body = fmt.Sprintf("%d min to %s", *p.ETAMinutes, event.Title)
		}
	default: // arrival_update
		arrival := domain.ArrivalNotSure
		var eta *int
		if p, ok := change.Payload.(domain.ArrivalPayload); ok {
			arrival = p.Arrival
			eta = p.ETAMinutes
		}
		title = fmt.Sprintf("%s is %s", actorName, arrivalLabel(arrival))
		body = event.Title
		if eta != nil {
			body = fmt.Sprintf("ETA %d min · %s", *eta, event.Title)
		}
	}

	var data map[string]any
	if change.Payload != nil {
		data = change.Payload.Data()
	} else {
		data = map[string]any{}
	}
	return notificationTemplate{Title: title, Body: body, Data: data}
}
