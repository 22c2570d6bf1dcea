package appraisal

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"teaps/internal/domain/fault"
	"teaps/internal/domain/scoring"
)

type fakeStore struct {
	appraisals map[string]Appraisal
	history    []StatusChange
	nextID     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{appraisals: map[string]Appraisal{}}
}

func (f *fakeStore) Insert(_ context.Context, a Appraisal) (Appraisal, error) {
	for _, existing := range f.appraisals {
		if existing.TeacherID == a.TeacherID && existing.Year == a.Year {
			return Appraisal{}, fault.StateConflict("appraisal", fmt.Sprintf("%s/%d", a.TeacherID, a.Year), "exists", "create")
		}
	}
	f.nextID++
	a.ID = fmt.Sprintf("a%d", f.nextID)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.appraisals[a.ID] = a
	return a, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Appraisal, error) {
	a, ok := f.appraisals[id]
	if !ok {
		return Appraisal{}, fault.NotFound("appraisal", id)
	}
	return a, nil
}

func (f *fakeStore) SaveTransition(_ context.Context, a Appraisal, change StatusChange) (Appraisal, error) {
	if _, ok := f.appraisals[a.ID]; !ok {
		return Appraisal{}, fault.NotFound("appraisal", a.ID)
	}
	a.UpdatedAt = time.Now()
	f.appraisals[a.ID] = a
	change.CreatedAt = a.UpdatedAt
	f.history = append(f.history, change)
	return a, nil
}

func (f *fakeStore) List(_ context.Context, filter ListFilter) ([]Appraisal, error) {
	var out []Appraisal
	for _, a := range f.appraisals {
		if filter.TeacherID != "" && a.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) StatusHistory(_ context.Context, appraisalID string) ([]StatusChange, error) {
	var out []StatusChange
	for _, change := range f.history {
		if change.AppraisalID == appraisalID {
			out = append(out, change)
		}
	}
	return out, nil
}

type fixedRubric struct {
	rubric scoring.Rubric
}

func (f fixedRubric) Rubric(context.Context) (scoring.Rubric, error) {
	return f.rubric, nil
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, fixedRubric{rubric: scoring.Rubric{"part2": 0.6, "part3": 0.2, "cpe": 0.2}})
}

var teacherActor = Actor{ID: "t1", Role: "teacher"}
var principalActor = Actor{ID: "p1", Role: "principal"}
var hrActor = Actor{ID: "h1", Role: "hr"}

func TestFullAppraisalFlow(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	ctx := context.Background()

	a, err := service.Create(ctx, "t1", 2024, map[string]float64{"part2": 80, "part3": 90, "cpe": 70}, teacherActor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if a.Status != StatusDraft {
		t.Fatalf("expected draft, got %s", a.Status)
	}

	a, err = service.SubmitSelfAssessment(ctx, a.ID, SelfAssessment{Strengths: "s", Improvements: "i", Goals: "g"}, teacherActor)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if a.Status != StatusTeacherSubmitted {
		t.Fatalf("expected teacher_submitted, got %s", a.Status)
	}

	a, err = service.PrincipalReview(ctx, a.ID, ReviewInput{Comment: "solid year"}, principalActor)
	if err != nil {
		t.Fatalf("principal review failed: %v", err)
	}
	if a.Status != StatusPrincipalReviewed {
		t.Fatalf("expected principal_reviewed, got %s", a.Status)
	}

	a, err = service.HRReview(ctx, a.ID, ReviewInput{Comment: "confirmed"}, hrActor)
	if err != nil {
		t.Fatalf("hr review failed: %v", err)
	}
	if a.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", a.Status)
	}
	if a.FinalWeightedScore == nil || *a.FinalWeightedScore != 80.0 {
		t.Fatalf("expected final score 80.0, got %v", a.FinalWeightedScore)
	}

	history, err := service.StatusHistory(ctx, a.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 history rows, got %d", len(history))
	}
	if history[2].ActorRole != "hr" || history[2].ToStatus != StatusCompleted {
		t.Fatalf("unexpected final history row %+v", history[2])
	}
}

func TestDuplicateTeacherYearConflicts(t *testing.T) {
	service := newTestService(newFakeStore())
	ctx := context.Background()

	if _, err := service.Create(ctx, "t1", 2024, nil, teacherActor); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := service.Create(ctx, "t1", 2024, nil, teacherActor)
	var conflict *fault.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
}

func TestIllegalTransitionLeavesAppraisalUnchanged(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	ctx := context.Background()

	a, err := service.Create(ctx, "t1", 2024, nil, teacherActor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = service.HRReview(ctx, a.ID, ReviewInput{Comment: "too early"}, hrActor)
	var conflict *fault.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if conflict.Current != StatusDraft {
		t.Fatalf("expected conflict to report draft, got %q", conflict.Current)
	}

	got, _ := store.Get(ctx, a.ID)
	if got.Status != StatusDraft || got.FinalWeightedScore != nil || got.HRComment != "" {
		t.Fatalf("appraisal mutated by failed transition: %+v", got)
	}
}

func TestCreateValidatesScoresAndInput(t *testing.T) {
	service := newTestService(newFakeStore())
	ctx := context.Background()

	if _, err := service.Create(ctx, "t1", 2024, map[string]float64{"part2": 120}, teacherActor); err == nil {
		t.Fatal("expected error for out-of-range score")
	}
	if _, err := service.Create(ctx, "", 2024, nil, teacherActor); err == nil {
		t.Fatal("expected error for missing teacher")
	}
	if _, err := service.Create(ctx, "t1", 1900, nil, teacherActor); err == nil {
		t.Fatal("expected error for year out of range")
	}
}

func TestSubmitRequiresAllTextFields(t *testing.T) {
	service := newTestService(newFakeStore())
	ctx := context.Background()

	a, _ := service.Create(ctx, "t1", 2024, nil, teacherActor)
	_, err := service.SubmitSelfAssessment(ctx, a.ID, SelfAssessment{Strengths: "s", Improvements: "i"}, teacherActor)
	var verr *fault.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRevisionRoundTrip(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	ctx := context.Background()

	a, _ := service.Create(ctx, "t1", 2024, map[string]float64{"part2": 50}, teacherActor)
	a, _ = service.SubmitSelfAssessment(ctx, a.ID, SelfAssessment{Strengths: "s", Improvements: "i", Goals: "g"}, teacherActor)

	if _, err := service.ReturnForRevision(ctx, a.ID, RevisionInput{Reason: "short"}, principalActor); err == nil {
		t.Fatal("expected error for reason below minimum length")
	}

	a, err := service.ReturnForRevision(ctx, a.ID, RevisionInput{Reason: "please expand the goals section", Comments: "see section 3"}, principalActor)
	if err != nil {
		t.Fatalf("return for revision failed: %v", err)
	}
	if a.Status != StatusRevisionRequired {
		t.Fatalf("expected revision_required, got %s", a.Status)
	}
	if a.RevisionReason == "" {
		t.Fatal("expected revision reason to be stored")
	}

	a, err = service.Reopen(ctx, a.ID, teacherActor)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if a.Status != StatusDraft {
		t.Fatalf("expected draft after reopen, got %s", a.Status)
	}

	// Resubmission after a revision request lands in pending_principal.
	a, err = service.SubmitSelfAssessment(ctx, a.ID, SelfAssessment{Strengths: "s2", Improvements: "i2", Goals: "expanded goals"}, teacherActor)
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if a.Status != StatusPendingPrincipal {
		t.Fatalf("expected pending_principal, got %s", a.Status)
	}

	// The waiting stage still accepts a principal review.
	a, err = service.PrincipalReview(ctx, a.ID, ReviewInput{Comment: "better"}, principalActor)
	if err != nil {
		t.Fatalf("principal review after resubmit failed: %v", err)
	}
	if a.Status != StatusPrincipalReviewed {
		t.Fatalf("expected principal_reviewed, got %s", a.Status)
	}
}

func TestUpdateScoresOnlyInDraft(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	ctx := context.Background()

	a, _ := service.Create(ctx, "t1", 2024, nil, teacherActor)
	if _, err := service.UpdateScores(ctx, a.ID, map[string]float64{"part2": 75}, teacherActor); err != nil {
		t.Fatalf("update scores failed: %v", err)
	}

	a, _ = service.SubmitSelfAssessment(ctx, a.ID, SelfAssessment{Strengths: "s", Improvements: "i", Goals: "g"}, teacherActor)
	if _, err := service.UpdateScores(ctx, a.ID, map[string]float64{"part2": 90}, teacherActor); err == nil {
		t.Fatal("expected conflict updating scores after submission")
	}
}
