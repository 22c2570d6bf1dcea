package dispute

import (
	"context"
	"strings"

	"teaps/internal/domain/appraisal"
	"teaps/internal/domain/fault"
)

const minResolutionCommentLength = 10

// AppraisalSource looks up the appraisal a dispute refers to. Satisfied by
// the appraisal service.
type AppraisalSource interface {
	Get(ctx context.Context, id string) (appraisal.Appraisal, error)
}

type Service struct {
	store      StoreAPI
	appraisals AppraisalSource
}

func NewService(store StoreAPI, appraisals AppraisalSource) *Service {
	return &Service{store: store, appraisals: appraisals}
}

// Open files a dispute against a completed appraisal. Only one pending
// dispute may exist per appraisal at a time.
func (s *Service) Open(ctx context.Context, teacherID, appraisalID, reason, evidence string) (DisputeRequest, error) {
	if strings.TrimSpace(teacherID) == "" {
		return DisputeRequest{}, fault.Invalid("teacherId", "teacher id is required")
	}
	if strings.TrimSpace(reason) == "" {
		return DisputeRequest{}, fault.Invalid("reason", "reason is required")
	}

	target, err := s.appraisals.Get(ctx, appraisalID)
	if err != nil {
		return DisputeRequest{}, err
	}
	if target.Status != appraisal.StatusCompleted {
		return DisputeRequest{}, fault.StateConflict("appraisal", appraisalID, target.Status, "dispute")
	}

	pending, err := s.store.HasPendingForAppraisal(ctx, appraisalID)
	if err != nil {
		return DisputeRequest{}, err
	}
	if pending {
		return DisputeRequest{}, fault.StateConflict("dispute", appraisalID, StatusPending, "open another dispute")
	}

	return s.store.Insert(ctx, DisputeRequest{
		TeacherID:   teacherID,
		AppraisalID: appraisalID,
		Reason:      reason,
		Evidence:    evidence,
		Status:      StatusPending,
	})
}

func (s *Service) Get(ctx context.Context, id string) (DisputeRequest, error) {
	return s.store.Get(ctx, id)
}

// Resolve settles a pending dispute. Upholding rejects the dispute and
// leaves the score alone; revising approves it and atomically overrides the
// appraisal's final score.
func (s *Service) Resolve(ctx context.Context, id string, input Resolution, actorID string) (DisputeRequest, error) {
	if len(strings.TrimSpace(input.Comment)) < minResolutionCommentLength {
		return DisputeRequest{}, fault.Invalid("comment", "comment must be at least 10 characters")
	}

	d, err := s.store.Get(ctx, id)
	if err != nil {
		return DisputeRequest{}, err
	}
	if d.Status != StatusPending {
		return DisputeRequest{}, fault.StateConflict("dispute", d.ID, d.Status, "resolve")
	}

	switch input.Resolution {
	case ResolutionUphold:
		return s.store.ResolveUphold(ctx, id, input.Comment, actorID)
	case ResolutionRevise:
		if input.RevisedScore == nil {
			return DisputeRequest{}, fault.Invalid("revisedScore", "revised score is required for revise")
		}
		if *input.RevisedScore < 0 || *input.RevisedScore > 100 {
			return DisputeRequest{}, fault.Invalid("revisedScore", "revised score must be between 0 and 100")
		}
		return s.store.ResolveRevise(ctx, id, input.Comment, *input.RevisedScore, actorID)
	default:
		return DisputeRequest{}, fault.Invalid("resolution", "resolution must be uphold or revise")
	}
}

// Dashboard lists pending disputes, optionally scoped to a teacher or
// department.
func (s *Service) Dashboard(ctx context.Context, filter DashboardFilter) ([]DashboardEntry, error) {
	return s.store.ListPending(ctx, filter)
}
