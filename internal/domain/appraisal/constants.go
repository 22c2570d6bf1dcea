package appraisal

const (
	StatusDraft             = "draft"
	StatusTeacherSubmitted  = "teacher_submitted"
	StatusPendingPrincipal  = "pending_principal"
	StatusPrincipalReviewed = "principal_reviewed"
	StatusRevisionRequired  = "revision_required"
	StatusCompleted         = "completed"
)

const (
	OpSubmitSelfAssessment = "submit self-assessment"
	OpPrincipalReview      = "principal review"
	OpHRReview             = "hr review"
	OpReturnForRevision    = "return for revision"
	OpReopen               = "reopen"
)

// transitions lists the source statuses each operation accepts. Anything
// not in this table is rejected with a StateConflictError.
var transitions = map[string][]string{
	OpSubmitSelfAssessment: {StatusDraft},
	OpPrincipalReview:      {StatusTeacherSubmitted, StatusPendingPrincipal},
	OpHRReview:             {StatusPrincipalReviewed},
	OpReturnForRevision:    {StatusTeacherSubmitted, StatusPendingPrincipal},
	OpReopen:               {StatusRevisionRequired},
}

func transitionAllowed(op, status string) bool {
	for _, allowed := range transitions[op] {
		if status == allowed {
			return true
		}
	}
	return false
}
