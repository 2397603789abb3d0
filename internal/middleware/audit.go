package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-desk-api/internal/models"
	"github.com/noah-isme/student-desk-api/internal/service"
)

// ContextActorKey is the gin context key handlers use to name the acting
// student on unauthenticated mutations.
const ContextActorKey = "auditActor"

// SetActor records who performed the current request, for the audit trail.
// Handlers call it with the student roll on submissions; principal-gated
// routes get their actor from the verified credentials instead.
func SetActor(c *gin.Context, actor string) {
	if actor != "" {
		c.Set(ContextActorKey, actor)
	}
}

func actorValue(c *gin.Context) string {
	if v, ok := c.Get(ContextActorKey); ok {
		if actor, ok := v.(string); ok {
			return actor
		}
	}
	return ""
}

// Audit records a trail entry after successful requests. Failed requests
// (status >= 400) leave no trace; the trail captures what actually happened
// to the registers. The actor is the verified principal username when the
// route is gated, otherwise whatever the handler named via SetActor.
func Audit(auditSvc *service.AuditService, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= 400 || auditSvc == nil {
			return
		}

		actor := PrincipalUsername(c)
		if actor == "" {
			actor = actorValue(c)
		}

		detail := fmt.Sprintf("%s %s -> %d", c.Request.Method, c.FullPath(), c.Writer.Status())
		auditSvc.Record(c.Request.Context(), models.AuditEntry{
			Actor:     actor,
			Action:    action,
			Resource:  resource,
			Detail:    detail,
			IPAddress: c.ClientIP(),
		})
	}
}
