package dispute

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	ResolutionUphold = "uphold"
	ResolutionRevise = "revise"
)

type DisputeRequest struct {
	ID            string     `json:"id"`
	TeacherID     string     `json:"teacherId"`
	AppraisalID   string     `json:"appraisalId"`
	Reason        string     `json:"reason"`
	Evidence      string     `json:"evidence,omitempty"`
	Status        string     `json:"status"`
	Resolution    string     `json:"resolution,omitempty"`
	ReviewComment string     `json:"reviewComment,omitempty"`
	RevisedScore  *float64   `json:"revisedScore,omitempty"`
	ResolvedBy    string     `json:"resolvedBy,omitempty"`
	ResolvedAt    *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type Resolution struct {
	Resolution   string
	Comment      string
	RevisedScore *float64
}

type DashboardFilter struct {
	TeacherID  string
	Department string
}

// DashboardEntry is a read projection of a pending dispute with teacher
// context for review screens.
type DashboardEntry struct {
	DisputeRequest
	TeacherName string `json:"teacherName,omitempty"`
	Department  string `json:"department,omitempty"`
	Year        int    `json:"year"`
}
