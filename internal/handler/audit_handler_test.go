package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-desk-api/internal/middleware"
	"github.com/noah-isme/student-desk-api/internal/models"
	"github.com/noah-isme/student-desk-api/internal/repository"
	"github.com/noah-isme/student-desk-api/internal/service"
)

func newAuditTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	studentRepo := repository.NewStudentRepository(dir, nil)
	principalRepo := repository.NewPrincipalRepository(dir, nil)
	auditRepo := repository.NewAuditRepository(dir, nil)

	auth := service.NewAuthService(principalRepo, nil, nil)
	students := service.NewStudentService(studentRepo, nil, nil, nil)
	audit := service.NewAuditService(auditRepo, nil)

	r := gin.New()
	studentHandler := NewStudentHandler(students)
	authHandler := NewAuthHandler(auth)
	auditHandler := NewAuditHandler(audit)

	r.POST("/principals", authHandler.Register)
	r.POST("/students", middleware.Audit(audit, models.AuditActionStudentRegister, "students"), studentHandler.Register)
	r.GET("/audit", middleware.RequirePrincipal(auth), auditHandler.List)
	return r, dir
}

func principalHeaders() map[string]string {
	return map[string]string{
		middleware.HeaderPrincipalUsername: "head",
		middleware.HeaderPrincipalPassword: "pw",
	}
}

func TestAuditTrailRecordsSuccessfulMutations(t *testing.T) {
	r, dir := newAuditTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/principals", gin.H{
		"username": "head", "email": "head@school.test", "password": "pw",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/students", gin.H{
		"name": "Asha", "roll": "R1", "branch": "CS", "year": "2",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/audit", nil, principalHeaders())
	require.Equal(t, http.StatusOK, w.Code)

	var entries []models.AuditEntry
	decodeData(t, w, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionStudentRegister, entries[0].Action)
	assert.Equal(t, "students", entries[0].Resource)
	assert.Equal(t, "R1", entries[0].Actor)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].CreatedAt.IsZero())

	_, err := os.Stat(filepath.Join(dir, "audit_log.json"))
	assert.NoError(t, err, "trail entries must be persisted")
}

func TestAuditTrailSkipsFailedMutations(t *testing.T) {
	r, _ := newAuditTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/principals", gin.H{
		"username": "head", "email": "head@school.test", "password": "pw",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/students", gin.H{
		"name": "Asha", "roll": "R1", "branch": "CS", "year": "2",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Duplicate roll fails and must leave no trace.
	w = doJSON(t, r, http.MethodPost, "/students", gin.H{
		"name": "Ravi", "roll": "R1", "branch": "EC", "year": "3",
	}, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodGet, "/audit", nil, principalHeaders())
	require.Equal(t, http.StatusOK, w.Code)

	var entries []models.AuditEntry
	decodeData(t, w, &entries)
	assert.Len(t, entries, 1)
}

func TestAuditTrailRequiresPrincipal(t *testing.T) {
	r, _ := newAuditTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/audit", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
