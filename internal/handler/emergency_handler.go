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

// EmergencyHandler exposes emergency register endpoints.
type EmergencyHandler struct {
	emergencies *service.EmergencyService
	auth        *service.AuthService
}

// NewEmergencyHandler constructs EmergencyHandler.
func NewEmergencyHandler(emergencies *service.EmergencyService, auth *service.AuthService) *EmergencyHandler {
	return &EmergencyHandler{emergencies: emergencies, auth: auth}
}

// Submit raises an emergency.
func (h *EmergencyHandler) Submit(c *gin.Context) {
	var req service.SubmitEmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	emergency, err := h.emergencies.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetActor(c, emergency.Roll)
	response.Created(c, emergency, "emergency submitted")
}

// List serves the student view via `?roll=` and the principal view via
// credential headers.
func (h *EmergencyHandler) List(c *gin.Context) {
	if roll := c.Query("roll"); roll != "" {
		emergencies, err := h.emergencies.ListByRoll(c.Request.Context(), roll)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, emergencies, "")
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

	emergencies, err := h.emergencies.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, emergencies, "")
}

// UpdateStatus records the principal's decision.
func (h *EmergencyHandler) UpdateStatus(c *gin.Context) {
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
	emergency, err := h.emergencies.Review(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, emergency, "emergency updated")
}
