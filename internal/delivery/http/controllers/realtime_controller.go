package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"podpulse/internal/delivery/http/helpers"
	"podpulse/internal/delivery/http/middleware"
	"podpulse/internal/domain"
)

const heartbeatInterval = 30 * time.Second

type RealtimeController struct {
	Logger *slog.Logger
	Broker domain.Broker
	Events domain.EventService
}

func NewRealtimeController(logger *slog.Logger, broker domain.Broker, events domain.EventService) *RealtimeController {
	return &RealtimeController{
		Logger: logger,
		Broker: broker,
		Events: events,
	}
}

// Stream godoc
// @Summary Subscribe to change signals
// @Description Server-sent event stream for one topic. Each "invalidate" event means the topic's state changed and should be re-fetched; signals carry no payload and may coalesce. Topics: event:{id}:attendance, event:{id}:checklist, inbox:{userId} (own inbox only).
// @Tags realtime
// @Produce text/event-stream
// @Security BearerAuth
// @Param topic query string true "Topic to subscribe to"
// @Success 200 {string} string "SSE stream"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /realtime [get]
func (c *RealtimeController) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing topic")
		return
	}
	if err := c.authorizeTopic(r, topic, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "streaming unsupported")
		return
	}

	sub, err := c.Broker.Subscribe(r.Context(), topic)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	defer func() {
		if err := sub.Close(); err != nil {
			c.Logger.Warn("subscription close failed", "topic", topic, "error", err)
		}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ready\ndata: %s\n\n", topic)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, open := <-sub.C():
			if !open {
				return
			}
			fmt.Fprintf(w, "event: invalidate\ndata: %s\n\n", topic)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// authorizeTopic checks that the topic is well-formed and the caller may
// subscribe to it: own inbox, or an event in one of the caller's pods.
func (c *RealtimeController) authorizeTopic(r *http.Request, topic, userID string) error {
	parts := strings.Split(topic, ":")
	switch {
	case len(parts) == 2 && parts[0] == "inbox":
		if parts[1] != userID {
			return domain.ErrForbidden
		}
		return nil
	case len(parts) == 3 && parts[0] == "event" && (parts[2] == "attendance" || parts[2] == "checklist"):
		if parts[1] == "" {
			return domain.NewValidationError("topic", "missing event id")
		}
		_, err := c.Events.GetEvent(r.Context(), parts[1], userID)
		return err
	default:
		return domain.NewValidationError("topic", "unrecognized topic format")
	}
}
