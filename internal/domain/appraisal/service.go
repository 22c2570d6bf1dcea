package appraisal

import (
	"context"
	"strings"

	"teaps/internal/domain/fault"
	"teaps/internal/domain/scoring"
)

const minRevisionReasonLength = 10

// RubricSource supplies the active scoring rubric at transition time.
// Satisfied by the configuration service.
type RubricSource interface {
	Rubric(ctx context.Context) (scoring.Rubric, error)
}

// Actor identifies who performed a transition, for the status history.
type Actor struct {
	ID   string
	Role string
}

type Service struct {
	store  StoreAPI
	rubric RubricSource
}

func NewService(store StoreAPI, rubric RubricSource) *Service {
	return &Service{store: store, rubric: rubric}
}

// Create opens a draft appraisal for the teacher and year. The rubric must
// exist and every raw score must be in range before anything is written.
func (s *Service) Create(ctx context.Context, teacherID string, year int, rawScores map[string]float64, actor Actor) (Appraisal, error) {
	if strings.TrimSpace(teacherID) == "" {
		return Appraisal{}, fault.Invalid("teacherId", "teacher id is required")
	}
	if year < 2000 || year > 2100 {
		return Appraisal{}, fault.Invalid("year", "year out of range")
	}
	for category, score := range rawScores {
		if err := scoring.ValidateScore(category, score); err != nil {
			return Appraisal{}, err
		}
	}
	if _, err := s.rubric.Rubric(ctx); err != nil {
		return Appraisal{}, err
	}

	if rawScores == nil {
		rawScores = map[string]float64{}
	}
	return s.store.Insert(ctx, Appraisal{
		TeacherID: teacherID,
		Year:      year,
		RawScores: rawScores,
		Status:    StatusDraft,
	})
}

func (s *Service) Get(ctx context.Context, id string) (Appraisal, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Appraisal, error) {
	return s.store.List(ctx, filter)
}

func (s *Service) StatusHistory(ctx context.Context, id string) ([]StatusChange, error) {
	return s.store.StatusHistory(ctx, id)
}

// SubmitSelfAssessment moves a draft to the review queue. A first
// submission lands in teacher_submitted; a resubmission after a revision
// request lands in pending_principal.
func (s *Service) SubmitSelfAssessment(ctx context.Context, id string, input SelfAssessment, actor Actor) (Appraisal, error) {
	if strings.TrimSpace(input.Strengths) == "" {
		return Appraisal{}, fault.Invalid("strengths", "strengths are required")
	}
	if strings.TrimSpace(input.Improvements) == "" {
		return Appraisal{}, fault.Invalid("improvements", "improvements are required")
	}
	if strings.TrimSpace(input.Goals) == "" {
		return Appraisal{}, fault.Invalid("goals", "goals are required")
	}

	a, err := s.load(ctx, id, OpSubmitSelfAssessment)
	if err != nil {
		return Appraisal{}, err
	}

	target := StatusTeacherSubmitted
	if a.RevisionReason != "" {
		target = StatusPendingPrincipal
	}

	from := a.Status
	a.SelfStrengths = input.Strengths
	a.SelfImprovements = input.Improvements
	a.SelfGoals = input.Goals
	a.Status = target
	return s.store.SaveTransition(ctx, a, StatusChange{
		AppraisalID: a.ID,
		FromStatus:  from,
		ToStatus:    target,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
	})
}

func (s *Service) PrincipalReview(ctx context.Context, id string, input ReviewInput, actor Actor) (Appraisal, error) {
	if strings.TrimSpace(input.Comment) == "" {
		return Appraisal{}, fault.Invalid("comment", "comment is required")
	}

	a, err := s.load(ctx, id, OpPrincipalReview)
	if err != nil {
		return Appraisal{}, err
	}

	from := a.Status
	a.PrincipalComment = input.Comment
	if input.CareerAdvancement != "" {
		a.CareerAdvancement = input.CareerAdvancement
	}
	a.Status = StatusPrincipalReviewed
	return s.store.SaveTransition(ctx, a, StatusChange{
		AppraisalID: a.ID,
		FromStatus:  from,
		ToStatus:    StatusPrincipalReviewed,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Comment:     input.Comment,
	})
}

// HRReview completes the appraisal. This is the only normal-flow transition
// that computes the final weighted score.
func (s *Service) HRReview(ctx context.Context, id string, input ReviewInput, actor Actor) (Appraisal, error) {
	if strings.TrimSpace(input.Comment) == "" {
		return Appraisal{}, fault.Invalid("comment", "comment is required")
	}

	a, err := s.load(ctx, id, OpHRReview)
	if err != nil {
		return Appraisal{}, err
	}

	rubric, err := s.rubric.Rubric(ctx)
	if err != nil {
		return Appraisal{}, err
	}
	final, err := scoring.Compute(rubric, a.RawScores)
	if err != nil {
		return Appraisal{}, err
	}

	from := a.Status
	a.HRComment = input.Comment
	if input.CareerAdvancement != "" {
		a.CareerAdvancement = input.CareerAdvancement
	}
	a.FinalWeightedScore = &final
	a.Status = StatusCompleted
	return s.store.SaveTransition(ctx, a, StatusChange{
		AppraisalID: a.ID,
		FromStatus:  from,
		ToStatus:    StatusCompleted,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Comment:     input.Comment,
	})
}

func (s *Service) ReturnForRevision(ctx context.Context, id string, input RevisionInput, actor Actor) (Appraisal, error) {
	if len(strings.TrimSpace(input.Reason)) < minRevisionReasonLength {
		return Appraisal{}, fault.Invalid("reason", "reason must be at least 10 characters")
	}

	a, err := s.load(ctx, id, OpReturnForRevision)
	if err != nil {
		return Appraisal{}, err
	}

	from := a.Status
	a.RevisionReason = input.Reason
	a.RevisionComments = input.Comments
	a.Status = StatusRevisionRequired
	return s.store.SaveTransition(ctx, a, StatusChange{
		AppraisalID: a.ID,
		FromStatus:  from,
		ToStatus:    StatusRevisionRequired,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Comment:     input.Reason,
	})
}

// Reopen returns an appraisal to the teacher for editing after a revision
// request.
func (s *Service) Reopen(ctx context.Context, id string, actor Actor) (Appraisal, error) {
	a, err := s.load(ctx, id, OpReopen)
	if err != nil {
		return Appraisal{}, err
	}

	from := a.Status
	a.Status = StatusDraft
	return s.store.SaveTransition(ctx, a, StatusChange{
		AppraisalID: a.ID,
		FromStatus:  from,
		ToStatus:    StatusDraft,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
	})
}

// UpdateScores replaces raw category scores while the appraisal is still a
// draft.
func (s *Service) UpdateScores(ctx context.Context, id string, rawScores map[string]float64, actor Actor) (Appraisal, error) {
	for category, score := range rawScores {
		if err := scoring.ValidateScore(category, score); err != nil {
			return Appraisal{}, err
		}
	}

	a, err := s.store.Get(ctx, id)
	if err != nil {
		return Appraisal{}, err
	}
	if a.Status != StatusDraft {
		return Appraisal{}, fault.StateConflict("appraisal", a.ID, a.Status, "update scores")
	}

	a.RawScores = rawScores
	return s.store.SaveTransition(ctx, a, StatusChange{
		AppraisalID: a.ID,
		FromStatus:  StatusDraft,
		ToStatus:    StatusDraft,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Comment:     "scores updated",
	})
}

func (s *Service) load(ctx context.Context, id, op string) (Appraisal, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return Appraisal{}, err
	}
	if !transitionAllowed(op, a.Status) {
		return Appraisal{}, fault.StateConflict("appraisal", a.ID, a.Status, op)
	}
	return a, nil
}
