package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-desk-api/internal/middleware"
	"github.com/noah-isme/student-desk-api/internal/service"
	appErrors "github.com/noah-isme/student-desk-api/pkg/errors"
	"github.com/noah-isme/student-desk-api/pkg/response"
)

// EventHandler exposes event request endpoints.
type EventHandler struct {
	events *service.EventService
	auth   *service.AuthService
}

// NewEventHandler constructs EventHandler.
func NewEventHandler(events *service.EventService, auth *service.AuthService) *EventHandler {
	return &EventHandler{events: events, auth: auth}
}

// Submit files an event request.
func (h *EventHandler) Submit(c *gin.Context) {
	var req service.SubmitEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	event, err := h.events.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetActor(c, event.Roll)
	response.Created(c, event, "event submitted")
}

// List serves the student view via `?roll=` and the principal view via
// credential headers.
func (h *EventHandler) List(c *gin.Context) {
	if roll := c.Query("roll"); roll != "" {
		events, err := h.events.ListByRoll(c.Request.Context(), roll)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, events, "")
		return
	}

	username, password, ok := middleware.ExtractCredentials(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "roll query or principal credentials required"))
		return
	}
	if err := h.auth.Verify(c.Request.Context(), username, password); err != nil {
		response.Error(c, err)
		return
	}

	events, err := h.events.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, "")
}

// Update applies the principal's partial overwrite.
func (h *EventHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id must be an integer"))
		return
	}
	var req service.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	event, err := h.events.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, "event updated")
}

// Delete removes an event.
func (h *EventHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id must be an integer"))
		return
	}
	if err := h.events.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nil, "event deleted")
}
