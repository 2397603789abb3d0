package models

import "time"

// Student represents a learner registered with the request desk.
// The roll number is the natural key and must be unique.
type Student struct {
	Name         string    `json:"name"`
	Roll         string    `json:"roll"`
	Branch       string    `json:"branch"`
	Year         string    `json:"year"`
	RegisteredAt time.Time `json:"registered_at"`
}
