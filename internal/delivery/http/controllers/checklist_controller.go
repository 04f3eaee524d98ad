package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"podpulse/internal/delivery/http/helpers"
	"podpulse/internal/delivery/http/middleware"
	"podpulse/internal/domain"
)

// AddChecklistItemRequest is the request body for POST /events/{eventID}/checklist.
type AddChecklistItemRequest struct {
	Label string  `json:"label"`
	Note  *string `json:"note"`
}

// Validate implements Validator.
func (r AddChecklistItemRequest) Validate() []string {
	if strings.TrimSpace(r.Label) == "" {
		return []string{"label is required"}
	}
	return nil
}

// ChecklistItemSuccessResponse is the success envelope for a single checklist item.
type ChecklistItemSuccessResponse struct {
	Data  *domain.ChecklistItem `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ChecklistListSuccessResponse is the success envelope for GET /events/{eventID}/checklist.
type ChecklistListSuccessResponse struct {
	Data  []*domain.ChecklistItem `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

type ChecklistController struct {
	Logger  *slog.Logger
	Service domain.ChecklistService
}

func NewChecklistController(logger *slog.Logger, svc domain.ChecklistService) *ChecklistController {
	return &ChecklistController{
		Logger:  logger,
		Service: svc,
	}
}

// AddItem godoc
// @Summary Add a checklist item
// @Description Add a prep item to the event's shared checklist. Any active pod member may add items while the event is not canceled.
// @Tags checklist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param item body AddChecklistItemRequest true "Item label and optional note"
// @Success 201 {object} controllers.ChecklistItemSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: event_canceled"
// @Router /events/{eventID}/checklist [post]
func (c *ChecklistController) AddItem(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req AddChecklistItemRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	item, err := c.Service.AddItem(r.Context(), eventID, userID, req.Label, req.Note)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, item)
}

// CycleItem godoc
// @Summary Cycle a checklist item's state
// @Description Advance the item one step along open, done, blocked, back to open. Any active pod member may cycle any item.
// @Tags checklist
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param itemID path string true "Checklist item ID"
// @Success 200 {object} controllers.ChecklistItemSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_canceled"
// @Router /events/{eventID}/checklist/{itemID}/cycle [post]
func (c *ChecklistController) CycleItem(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	itemID := r.PathValue("itemID")
	if eventID == "" || itemID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID or itemID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	item, err := c.Service.CycleItem(r.Context(), eventID, itemID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, item)
}

// ListItems godoc
// @Summary List checklist items
// @Description Returns the event's checklist items in creation order.
// @Tags checklist
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.ChecklistListSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/checklist [get]
func (c *ChecklistController) ListItems(w http.ResponseWriter, r *http.Request) {
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
	items, err := c.Service.ListItems(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if items == nil {
		items = []*domain.ChecklistItem{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}
