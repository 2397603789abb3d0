package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-desk-api/internal/service"
	appErrors "github.com/noah-isme/student-desk-api/pkg/errors"
	"github.com/noah-isme/student-desk-api/pkg/response"
)

// ContextPrincipalKey is the gin context key storing the verified principal username.
const ContextPrincipalKey = "currentPrincipal"

// Credential headers. There are no sessions or tokens; every principal-gated
// request presents the username and password again.
const (
	HeaderPrincipalUsername = "X-Principal-Username"
	HeaderPrincipalPassword = "X-Principal-Password"
)

// ExtractCredentials returns the principal credential headers. ok is false
// when both headers are absent.
func ExtractCredentials(c *gin.Context) (username, password string, ok bool) {
	username = c.GetHeader(HeaderPrincipalUsername)
	password = c.GetHeader(HeaderPrincipalPassword)
	return username, password, username != "" || password != ""
}

// RequirePrincipal protects routes by verifying the credential headers on
// every request.
func RequirePrincipal(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := ExtractCredentials(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "principal credentials required"))
			c.Abort()
			return
		}

		if err := authService.Verify(c.Request.Context(), username, password); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextPrincipalKey, username)
		c.Next()
	}
}

// PrincipalUsername returns the verified principal username, if any.
func PrincipalUsername(c *gin.Context) string {
	if v, ok := c.Get(ContextPrincipalKey); ok {
		if username, ok := v.(string); ok {
			return username
		}
	}
	return ""
}
