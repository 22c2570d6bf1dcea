package kpi

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"teaps/internal/domain/fault"
)

type fakeStore struct {
	requests map[string]KpiRequest
	kpis     map[string]Kpi
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{requests: map[string]KpiRequest{}, kpis: map[string]Kpi{}}
}

func (f *fakeStore) InsertRequest(_ context.Context, r KpiRequest) (KpiRequest, error) {
	f.nextID++
	r.ID = fmt.Sprintf("r%d", f.nextID)
	r.CreatedAt = time.Now()
	f.requests[r.ID] = r
	return r, nil
}

func (f *fakeStore) GetRequest(_ context.Context, id string) (KpiRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return KpiRequest{}, fault.NotFound("kpi request", id)
	}
	return r, nil
}

func (f *fakeStore) ListRequests(_ context.Context, filter RequestFilter) ([]KpiRequest, error) {
	var out []KpiRequest
	for _, r := range f.requests {
		if filter.TeacherID != "" && r.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) ApproveRequest(_ context.Context, id, reviewerID, comments string) (KpiRequest, Kpi, error) {
	r, ok := f.requests[id]
	if !ok {
		return KpiRequest{}, Kpi{}, fault.NotFound("kpi request", id)
	}
	if r.Status != RequestStatusPending {
		return KpiRequest{}, Kpi{}, fault.StateConflict("kpi request", id, r.Status, "approve")
	}
	now := time.Now()
	r.Status = RequestStatusApproved
	r.ReviewerComments = comments
	r.ReviewedBy = reviewerID
	r.ReviewedAt = &now
	f.requests[id] = r

	f.nextID++
	k := Kpi{
		ID:                  fmt.Sprintf("k%d", f.nextID),
		TeacherID:           r.TeacherID,
		RequestID:           r.ID,
		Title:               r.Title,
		Description:         r.Description,
		Category:            r.Category,
		TargetValue:         r.TargetValue,
		MeasurementCriteria: r.MeasurementCriteria,
		Status:              KpiStatusActive,
		CreatedAt:           now,
	}
	f.kpis[k.ID] = k
	return r, k, nil
}

func (f *fakeStore) RejectRequest(_ context.Context, id, reviewerID, comments string) (KpiRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return KpiRequest{}, fault.NotFound("kpi request", id)
	}
	if r.Status != RequestStatusPending {
		return KpiRequest{}, fault.StateConflict("kpi request", id, r.Status, "reject")
	}
	now := time.Now()
	r.Status = RequestStatusRejected
	r.ReviewerComments = comments
	r.ReviewedBy = reviewerID
	r.ReviewedAt = &now
	f.requests[id] = r
	return r, nil
}

func (f *fakeStore) ListKpis(_ context.Context, teacherID string) ([]Kpi, error) {
	var out []Kpi
	for _, k := range f.kpis {
		if teacherID != "" && k.TeacherID != teacherID {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

func (f *fakeStore) GetKpi(_ context.Context, id string) (Kpi, error) {
	k, ok := f.kpis[id]
	if !ok {
		return Kpi{}, fault.NotFound("kpi", id)
	}
	return k, nil
}

func (f *fakeStore) UpdateKpiProgress(_ context.Context, id string, progress float64, status string) (Kpi, error) {
	k, ok := f.kpis[id]
	if !ok {
		return Kpi{}, fault.NotFound("kpi", id)
	}
	k.Progress = progress
	k.Status = status
	f.kpis[id] = k
	return k, nil
}

func submitInput() SubmitInput {
	return SubmitInput{
		Title:               "Raise pass rate",
		Description:         "Raise the class pass rate",
		Justification:       "Current pass rate is below the school target",
		Category:            "teaching",
		TargetValue:         90,
		MeasurementCriteria: "end-of-year exam pass percentage",
	}
}

func TestApproveCreatesExactlyOneKpi(t *testing.T) {
	store := newFakeStore()
	service := NewService(store)
	ctx := context.Background()

	r, err := service.Submit(ctx, "t1", submitInput())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if r.Status != RequestStatusPending {
		t.Fatalf("expected pending, got %s", r.Status)
	}

	r, k, err := service.Approve(ctx, r.ID, "p1", "good goal")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if r.Status != RequestStatusApproved {
		t.Fatalf("expected approved, got %s", r.Status)
	}
	if k.TeacherID != "t1" || k.Status != KpiStatusActive || k.RequestID != r.ID {
		t.Fatalf("unexpected kpi %+v", k)
	}
	if k.Title != r.Title || k.TargetValue != r.TargetValue {
		t.Fatalf("kpi must copy request details, got %+v", k)
	}
	if len(store.kpis) != 1 {
		t.Fatalf("expected exactly one kpi, got %d", len(store.kpis))
	}

	_, _, err = service.Approve(ctx, r.ID, "p1", "again")
	var conflict *fault.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if len(store.kpis) != 1 {
		t.Fatalf("failed re-approval must not create a kpi, got %d", len(store.kpis))
	}
}

// staleReadStore serves a snapshot taken before another reviewer committed,
// so the status check at read time passes while the write must not.
type staleReadStore struct {
	*fakeStore
	snapshot KpiRequest
}

func (s *staleReadStore) GetRequest(_ context.Context, _ string) (KpiRequest, error) {
	return s.snapshot, nil
}

func TestApproveLosesRaceToEarlierReview(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	r, err := NewService(store).Submit(ctx, "t1", submitInput())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	snapshot := store.requests[r.ID]

	if _, err := NewService(store).Reject(ctx, r.ID, "p1", "insufficient justification"); err != nil {
		t.Fatalf("first review failed: %v", err)
	}

	stale := &staleReadStore{fakeStore: store, snapshot: snapshot}
	_, _, err = NewService(stale).Approve(ctx, r.ID, "p2", "looks fine")
	var conflict *fault.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if len(store.kpis) != 0 {
		t.Fatalf("losing approval must not create a kpi, got %d", len(store.kpis))
	}
}

func TestRejectCreatesNoKpi(t *testing.T) {
	store := newFakeStore()
	service := NewService(store)
	ctx := context.Background()

	r, _ := service.Submit(ctx, "t1", submitInput())
	r, err := service.Reject(ctx, r.ID, "p1", "insufficient justification")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if r.Status != RequestStatusRejected {
		t.Fatalf("expected rejected, got %s", r.Status)
	}
	if r.ReviewerComments != "insufficient justification" {
		t.Fatalf("expected reviewer comments to be stored, got %q", r.ReviewerComments)
	}
	if len(store.kpis) != 0 {
		t.Fatalf("reject must not create a kpi, got %d", len(store.kpis))
	}

	if _, err := service.Reject(ctx, r.ID, "p1", "again"); err == nil {
		t.Fatal("expected conflict re-rejecting a resolved request")
	}
}

func TestRejectRequiresComments(t *testing.T) {
	service := NewService(newFakeStore())
	ctx := context.Background()

	r, _ := service.Submit(ctx, "t1", submitInput())
	_, err := service.Reject(ctx, r.ID, "p1", "")
	var verr *fault.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	service := NewService(newFakeStore())
	ctx := context.Background()

	input := submitInput()
	input.Title = ""
	if _, err := service.Submit(ctx, "t1", input); err == nil {
		t.Fatal("expected error for missing title")
	}

	input = submitInput()
	input.TargetValue = 0
	if _, err := service.Submit(ctx, "t1", input); err == nil {
		t.Fatal("expected error for non-positive target")
	}

	if _, err := service.Submit(ctx, "", submitInput()); err == nil {
		t.Fatal("expected error for missing teacher")
	}
}

func TestUpdateProgressCompletesAtHundred(t *testing.T) {
	store := newFakeStore()
	service := NewService(store)
	ctx := context.Background()

	r, _ := service.Submit(ctx, "t1", submitInput())
	_, k, _ := service.Approve(ctx, r.ID, "p1", "")

	k, err := service.UpdateProgress(ctx, k.ID, 40)
	if err != nil {
		t.Fatalf("progress update failed: %v", err)
	}
	if k.Status != KpiStatusActive || k.Progress != 40 {
		t.Fatalf("unexpected kpi %+v", k)
	}

	k, err = service.UpdateProgress(ctx, k.ID, 100)
	if err != nil {
		t.Fatalf("progress update failed: %v", err)
	}
	if k.Status != KpiStatusCompleted {
		t.Fatalf("expected completed at 100%%, got %s", k.Status)
	}

	if _, err := service.UpdateProgress(ctx, k.ID, 50); err == nil {
		t.Fatal("expected conflict updating a completed kpi")
	}
	if _, err := service.UpdateProgress(ctx, k.ID, 120); err == nil {
		t.Fatal("expected error for progress out of range")
	}
}
