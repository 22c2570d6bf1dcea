package cpe

import "time"

const (
	ActivityStatusPending  = "pending"
	ActivityStatusApproved = "approved"
	ActivityStatusRejected = "rejected"
)

// Activity is one continuing-education record. One approved hour earns one
// compliance point.
type Activity struct {
	ID           string    `json:"id"`
	TeacherID    string    `json:"teacherId"`
	Title        string    `json:"title"`
	Provider     string    `json:"provider,omitempty"`
	Hours        float64   `json:"hours"`
	Points       float64   `json:"points"`
	ActivityDate time.Time `json:"activityDate"`
	Status       string    `json:"status"`
	ReviewedBy   string    `json:"reviewedBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ComplianceRecord is derived on demand, never persisted.
type ComplianceRecord struct {
	TeacherID     string  `json:"teacherId"`
	Year          int     `json:"year"`
	TotalHours    float64 `json:"totalHours"`
	TotalPoints   float64 `json:"totalPoints"`
	RequiredHours float64 `json:"requiredHours"`
	Compliant     bool    `json:"compliant"`
	Shortage      float64 `json:"shortage"`
	// Error flags a teacher whose computation failed during a bulk run;
	// the run itself still returns the other teachers.
	Error string `json:"error,omitempty"`
}

type SubmitInput struct {
	Title        string
	Provider     string
	Hours        float64
	ActivityDate time.Time
}
