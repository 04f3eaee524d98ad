package controllers

import (
	"log/slog"
	"net/http"

	"podpulse/internal/delivery/http/helpers"
	"podpulse/internal/delivery/http/middleware"
	"podpulse/internal/domain"
)

// NotificationListSuccessResponse is the success envelope for GET /notifications.
type NotificationListSuccessResponse struct {
	Data  []*domain.NotificationEntry `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// MarkAllReadResponse is the response body for POST /notifications/read-all.
type MarkAllReadResponse struct {
	Marked int64 `json:"marked"`
}

type InboxController struct {
	Logger  *slog.Logger
	Service domain.InboxService
}

func NewInboxController(logger *slog.Logger, svc domain.InboxService) *InboxController {
	return &InboxController{
		Logger:  logger,
		Service: svc,
	}
}

// ListNotifications godoc
// @Summary List the caller's notifications
// @Description Returns the caller's notifications, newest first.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries to return (default 50, max 100)"
// @Success 200 {object} controllers.NotificationListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /notifications [get]
func (c *InboxController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	limit := helpers.ParseLimit(r, 50, 100)
	entries, err := c.Service.ListNotifications(r.Context(), userID, limit)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if entries == nil {
		entries = []*domain.NotificationEntry{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// MarkRead godoc
// @Summary Mark one notification read
// @Description Stamp the notification's read_at. Marking an already-read notification keeps the original timestamp.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param notificationID path string true "Notification ID"
// @Success 204 "no content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /notifications/{notificationID}/read [post]
func (c *InboxController) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID := r.PathValue("notificationID")
	if notificationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing notificationID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.MarkRead(r.Context(), notificationID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead godoc
// @Summary Mark all notifications read
// @Description Stamp read_at on every unread notification for the caller. Returns how many were marked; repeating the call marks zero.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MarkAllReadResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /notifications/read-all [post]
func (c *InboxController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	marked, err := c.Service.MarkAllRead(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MarkAllReadResponse{Marked: marked})
}
