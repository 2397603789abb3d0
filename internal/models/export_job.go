package models

import "time"

// ExportRegister enumerates the registers that can be exported.
type ExportRegister string

const (
	ExportRegisterStudents    ExportRegister = "students"
	ExportRegisterLeave       ExportRegister = "leave_requests"
	ExportRegisterEvents      ExportRegister = "events"
	ExportRegisterEmergencies ExportRegister = "emergencies"
)

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob is persisted background job metadata for register exports.
type ExportJob struct {
	ID         string         `json:"id"`
	Register   ExportRegister `json:"register"`
	Format     ExportFormat   `json:"format"`
	Status     ExportStatus   `json:"status"`
	ResultURL  string         `json:"result_url,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedBy  string         `json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}
