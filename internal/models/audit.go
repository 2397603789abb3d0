package models

import "time"

// AuditAction constants represent mutating operations worth a trail entry.
const (
	AuditActionStudentRegister   = "STUDENT_REGISTER"
	AuditActionStudentUpdate     = "STUDENT_UPDATE"
	AuditActionStudentDelete     = "STUDENT_DELETE"
	AuditActionPrincipalRegister = "PRINCIPAL_REGISTER"
	AuditActionPrincipalLogin    = "PRINCIPAL_LOGIN"
	AuditActionLeaveSubmit       = "LEAVE_SUBMIT"
	AuditActionLeaveReview       = "LEAVE_REVIEW"
	AuditActionEventSubmit       = "EVENT_SUBMIT"
	AuditActionEventUpdate       = "EVENT_UPDATE"
	AuditActionEventDelete       = "EVENT_DELETE"
	AuditActionEmergencySubmit   = "EMERGENCY_SUBMIT"
	AuditActionEmergencyReview   = "EMERGENCY_REVIEW"
	AuditActionExportRequest     = "EXPORT_REQUEST"
)

// AuditEntry is one record in the append-only audit trail collection.
type AuditEntry struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Detail    string    `json:"detail,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
