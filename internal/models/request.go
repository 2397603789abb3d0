package models

import "time"

// Canonical review states for leave, event and emergency requests. The
// services deliberately accept free-form status strings (the legacy frontend
// sends arbitrary values), so these constants are documentation, not a
// validation set.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
	StatusPaused   = "Paused"
)

// LeaveRequest is a student's leave application. The roll must reference a
// registered student at submission time; nothing cascades afterwards.
// Only Status and Response change after creation. Leave requests are never
// deleted.
type LeaveRequest struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Roll       string    `json:"roll"`
	Branch     string    `json:"branch"`
	Year       string    `json:"year"`
	Reason     string    `json:"reason"`
	StartDate  string    `json:"start_date"`
	ReturnDate string    `json:"return_date"`
	TotalDays  string    `json:"total_days"`
	Status     string    `json:"status"`
	Response   string    `json:"response"`
	Timestamp  time.Time `json:"timestamp"`
}

// Event is a student-requested event. Principals may overwrite individual
// fields or delete the record.
type Event struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	RequestedBy string    `json:"requested_by"`
	Roll        string    `json:"roll"`
	Branch      string    `json:"branch"`
	Year        string    `json:"year"`
	Status      string    `json:"status"`
	Response    string    `json:"response"`
	Timestamp   time.Time `json:"timestamp"`
}

// Emergency is a student's emergency notice. Like leave requests it is
// never deleted; principals only update status and response.
type Emergency struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Roll          string    `json:"roll"`
	Branch        string    `json:"branch"`
	Year          string    `json:"year"`
	EmergencyType string    `json:"emergency_type"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	Response      string    `json:"response"`
	Timestamp     time.Time `json:"timestamp"`
}
