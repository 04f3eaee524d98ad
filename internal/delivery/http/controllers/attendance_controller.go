package controllers

import (
	"log/slog"
	"net/http"

	"podpulse/internal/delivery/http/helpers"
	"podpulse/internal/delivery/http/middleware"
	"podpulse/internal/domain"
)

// UpdateRSVPRequest is the request body for PUT /events/{eventID}/rsvp.
type UpdateRSVPRequest struct {
	RSVP string `json:"rsvp"`
}

// Validate implements Validator.
func (r UpdateRSVPRequest) Validate() []string {
	if r.RSVP == "" {
		return []string{"rsvp is required"}
	}
	return nil
}

// UpdateArrivalRequest is the request body for PUT /events/{eventID}/arrival.
type UpdateArrivalRequest struct {
	Arrival    string `json:"arrival"`
	ETAMinutes *int   `json:"eta_minutes"`
}

// Validate implements Validator.
func (r UpdateArrivalRequest) Validate() []string {
	if r.Arrival == "" {
		return []string{"arrival is required"}
	}
	return nil
}

// AttendanceSuccessResponse is the success envelope for a single attendance record.
type AttendanceSuccessResponse struct {
	Data  *domain.AttendanceRecord `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// AttendanceListSuccessResponse is the success envelope for GET /events/{eventID}/attendance.
type AttendanceListSuccessResponse struct {
	Data  []*domain.AttendanceRecord `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

type AttendanceController struct {
	Logger  *slog.Logger
	Service domain.AttendanceService
}

func NewAttendanceController(logger *slog.Logger, svc domain.AttendanceService) *AttendanceController {
	return &AttendanceController{
		Logger:  logger,
		Service: svc,
	}
}

// UpdateRSVP godoc
// @Summary Set the caller's RSVP
// @Description Set the caller's RSVP (yes, no, maybe) for an event. Creates the attendance record on first write. RSVP changes notify nobody.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param rsvp body UpdateRSVPRequest true "RSVP value"
// @Success 200 {object} controllers.AttendanceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: event_canceled"
// @Router /events/{eventID}/rsvp [put]
func (c *AttendanceController) UpdateRSVP(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req UpdateRSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	record, err := c.Service.UpdateRSVP(r.Context(), eventID, userID, domain.RSVP(req.RSVP))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, record)
}

// UpdateArrival godoc
// @Summary Set the caller's arrival status
// @Description Set the caller's live arrival status, with an optional ETA in minutes. An update with an ETA notifies attending members as an ETA share; without one, as a status change. Arriving clears any stored ETA.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param arrival body UpdateArrivalRequest true "Arrival status and optional ETA"
// @Success 200 {object} controllers.AttendanceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: event_canceled"
// @Router /events/{eventID}/arrival [put]
func (c *AttendanceController) UpdateArrival(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req UpdateArrivalRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	record, err := c.Service.UpdateArrival(r.Context(), eventID, userID, domain.Arrival(req.Arrival), req.ETAMinutes)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, record)
}

// ListAttendance godoc
// @Summary List attendance for an event
// @Description Returns every attendance record for the event. The caller must be an active member of the event's pod.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.AttendanceListSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/attendance [get]
func (c *AttendanceController) ListAttendance(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	records, err := c.Service.ListAttendance(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if records == nil {
		records = []*domain.AttendanceRecord{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, records)
}
