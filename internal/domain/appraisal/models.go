package appraisal

import "time"

type Appraisal struct {
	ID                         string             `json:"id"`
	TeacherID                  string             `json:"teacherId"`
	Year                       int                `json:"year"`
	RawScores                  map[string]float64 `json:"rawScores"`
	FinalWeightedScore         *float64           `json:"finalWeightedScore,omitempty"`
	Status                     string             `json:"status"`
	SelfStrengths              string             `json:"selfStrengths,omitempty"`
	SelfImprovements           string             `json:"selfImprovements,omitempty"`
	SelfGoals                  string             `json:"selfGoals,omitempty"`
	PrincipalComment           string             `json:"principalComment,omitempty"`
	HRComment                  string             `json:"hrComment,omitempty"`
	CareerAdvancement          string             `json:"careerAdvancement,omitempty"`
	RevisionReason             string             `json:"revisionReason,omitempty"`
	RevisionComments           string             `json:"revisionComments,omitempty"`
	OriginalFinalScore         *float64           `json:"originalFinalScore,omitempty"`
	ScoreOverrideJustification string             `json:"scoreOverrideJustification,omitempty"`
	CreatedAt                  time.Time          `json:"createdAt"`
	UpdatedAt                  time.Time          `json:"updatedAt"`
}

// StatusChange is one row of an appraisal's transition history.
type StatusChange struct {
	ID          string    `json:"id"`
	AppraisalID string    `json:"appraisalId"`
	FromStatus  string    `json:"fromStatus"`
	ToStatus    string    `json:"toStatus"`
	ActorID     string    `json:"actorId"`
	ActorRole   string    `json:"actorRole"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SelfAssessment struct {
	Strengths    string
	Improvements string
	Goals        string
}

type ReviewInput struct {
	Comment           string
	CareerAdvancement string
}

type RevisionInput struct {
	Reason   string
	Comments string
}
