package notifications

const (
	TypeAppraisalSubmitted = "appraisal.submitted"
	TypeAppraisalReviewed  = "appraisal.reviewed"
	TypeAppraisalCompleted = "appraisal.completed"
	TypeAppraisalReturned  = "appraisal.returned"
	TypeDisputeOpened      = "dispute.opened"
	TypeDisputeResolved    = "dispute.resolved"
	TypeKpiReviewed        = "kpi.reviewed"
	TypeCPEReviewed        = "cpe.reviewed"
)
