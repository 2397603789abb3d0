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

// LeaveHandler exposes leave request endpoints.
type LeaveHandler struct {
	leave *service.LeaveService
	auth  *service.AuthService
}

// NewLeaveHandler constructs LeaveHandler.
func NewLeaveHandler(leave *service.LeaveService, auth *service.AuthService) *LeaveHandler {
	return &LeaveHandler{leave: leave, auth: auth}
}

// Submit files a leave request.
func (h *LeaveHandler) Submit(c *gin.Context) {
	var req service.SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.leave.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetActor(c, request.Roll)
	response.Created(c, request, "leave request submitted")
}

// List serves both views: `?roll=` returns one student's requests, principal
// credentials return the whole register. Neither is a bad request.
func (h *LeaveHandler) List(c *gin.Context) {
	if roll := c.Query("roll"); roll != "" {
		requests, err := h.leave.ListByRoll(c.Request.Context(), roll)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, requests, "")
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

	requests, err := h.leave.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, "")
}

// UpdateStatus records the principal's decision. Credentials are checked by
// the route middleware before this runs.
func (h *LeaveHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id must be an integer"))
		return
	}
	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.leave.Review(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, "leave request updated")
}
