package kpi

import "time"

const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"

	KpiStatusActive    = "active"
	KpiStatusCompleted = "completed"
)

// KpiRequest is a teacher-proposed performance goal awaiting principal
// review. Terminal once approved or rejected.
type KpiRequest struct {
	ID                  string     `json:"id"`
	TeacherID           string     `json:"teacherId"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Justification       string     `json:"justification"`
	Category            string     `json:"category"`
	TargetValue         float64    `json:"targetValue"`
	MeasurementCriteria string     `json:"measurementCriteria"`
	Status              string     `json:"status"`
	ReviewerComments    string     `json:"reviewerComments,omitempty"`
	ReviewedBy          string     `json:"reviewedBy,omitempty"`
	ReviewedAt          *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// Kpi is the active goal materialized from an approved request.
type Kpi struct {
	ID                  string    `json:"id"`
	TeacherID           string    `json:"teacherId"`
	RequestID           string    `json:"requestId"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Category            string    `json:"category"`
	TargetValue         float64   `json:"targetValue"`
	MeasurementCriteria string    `json:"measurementCriteria"`
	Status              string    `json:"status"`
	Progress            float64   `json:"progress"`
	CreatedAt           time.Time `json:"createdAt"`
}

type SubmitInput struct {
	Title               string
	Description         string
	Justification       string
	Category            string
	TargetValue         float64
	MeasurementCriteria string
}
