package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-desk-api/internal/middleware"
	"github.com/noah-isme/student-desk-api/internal/service"
	appErrors "github.com/noah-isme/student-desk-api/pkg/errors"
	"github.com/noah-isme/student-desk-api/pkg/response"
)

// AuthHandler exposes principal registration and login endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register creates a principal account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterPrincipalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	principal, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetActor(c, principal.Username)
	response.Created(c, principal, "principal registered")
}

// Login checks credentials. There is no token; clients resend the
// credential headers on gated requests.
func (h *AuthHandler) Login(c *gin.Context) {
	var creds service.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	principal, err := h.auth.Login(c.Request.Context(), creds)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetActor(c, principal.Username)
	response.JSON(c, http.StatusOK, principal, "login successful")
}
