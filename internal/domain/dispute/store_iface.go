package dispute

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, d DisputeRequest) (DisputeRequest, error)
	Get(ctx context.Context, id string) (DisputeRequest, error)
	HasPendingForAppraisal(ctx context.Context, appraisalID string) (bool, error)
	// ResolveUphold marks the dispute rejected without touching the
	// appraisal score.
	ResolveUphold(ctx context.Context, id, comment, resolvedBy string) (DisputeRequest, error)
	// ResolveRevise marks the dispute approved and overrides the referenced
	// appraisal's final score in the same transaction.
	ResolveRevise(ctx context.Context, id, comment string, revisedScore float64, resolvedBy string) (DisputeRequest, error)
	ListPending(ctx context.Context, filter DashboardFilter) ([]DashboardEntry, error)
}
