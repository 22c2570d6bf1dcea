package cpe

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"teaps/internal/domain/fault"
)

type fakeStore struct {
	activities map[string]Activity
	teachers   []string
	failFor    string
	nextID     int
}

func newCPEFakeStore() *fakeStore {
	return &fakeStore{activities: map[string]Activity{}}
}

func (f *fakeStore) InsertActivity(_ context.Context, a Activity) (Activity, error) {
	f.nextID++
	a.ID = fmt.Sprintf("c%d", f.nextID)
	a.CreatedAt = time.Now()
	f.activities[a.ID] = a
	return a, nil
}

func (f *fakeStore) GetActivity(_ context.Context, id string) (Activity, error) {
	a, ok := f.activities[id]
	if !ok {
		return Activity{}, fault.NotFound("cpe activity", id)
	}
	return a, nil
}

func (f *fakeStore) UpdateActivityStatus(_ context.Context, id, status, reviewerID string) (Activity, error) {
	a, ok := f.activities[id]
	if !ok {
		return Activity{}, fault.NotFound("cpe activity", id)
	}
	if a.Status != ActivityStatusPending {
		return Activity{}, fault.StateConflict("cpe activity", id, a.Status, status)
	}
	a.Status = status
	a.ReviewedBy = reviewerID
	f.activities[id] = a
	return a, nil
}

func (f *fakeStore) ListActivities(_ context.Context, teacherID string, year int) ([]Activity, error) {
	if teacherID == f.failFor {
		return nil, errors.New("storage unavailable")
	}
	var out []Activity
	for _, a := range f.activities {
		if a.TeacherID != teacherID {
			continue
		}
		if year != 0 && a.ActivityDate.Year() != year {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) ListTeacherIDs(_ context.Context, _ string) ([]string, error) {
	return f.teachers, nil
}

type fixedHours struct {
	hours float64
}

func (f fixedHours) RequiredCPEHours(context.Context) (float64, error) {
	return f.hours, nil
}

func TestCheckComplianceScenario(t *testing.T) {
	store := newCPEFakeStore()
	service := NewService(store, fixedHours{hours: 20})
	ctx := context.Background()

	a, err := service.SubmitActivity(ctx, "t1", SubmitInput{
		Title:        "Curriculum workshop",
		Hours:        15,
		ActivityDate: time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := service.ReviewActivity(ctx, a.ID, ActivityStatusApproved, "p1"); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	record, err := service.CheckCompliance(ctx, "t1", 2024)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if record.Compliant {
		t.Fatal("expected non-compliant with 15 of 20 hours")
	}
	if record.Shortage != 5 {
		t.Fatalf("expected shortage 5, got %v", record.Shortage)
	}
	if record.TotalPoints != 15 {
		t.Fatalf("expected 15 points, got %v", record.TotalPoints)
	}
}

func TestReviewActivityStateMachine(t *testing.T) {
	store := newCPEFakeStore()
	service := NewService(store, fixedHours{hours: 20})
	ctx := context.Background()

	a, _ := service.SubmitActivity(ctx, "t1", SubmitInput{
		Title:        "Workshop",
		Hours:        5,
		ActivityDate: time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
	})

	if _, err := service.ReviewActivity(ctx, a.ID, "maybe", "p1"); err == nil {
		t.Fatal("expected error for unknown decision")
	}

	if _, err := service.ReviewActivity(ctx, a.ID, ActivityStatusRejected, "p1"); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	_, err := service.ReviewActivity(ctx, a.ID, ActivityStatusApproved, "p1")
	var conflict *fault.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
}

// staleReadStore serves a snapshot taken before another reviewer committed,
// so the status check at read time passes while the write must not.
type staleReadStore struct {
	*fakeStore
	snapshot Activity
}

func (s *staleReadStore) GetActivity(_ context.Context, _ string) (Activity, error) {
	return s.snapshot, nil
}

func TestReviewLosesRaceToEarlierReview(t *testing.T) {
	store := newCPEFakeStore()
	service := NewService(store, fixedHours{hours: 20})
	ctx := context.Background()

	a, _ := service.SubmitActivity(ctx, "t1", SubmitInput{
		Title:        "Workshop",
		Hours:        5,
		ActivityDate: time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
	})
	snapshot := store.activities[a.ID]

	if _, err := service.ReviewActivity(ctx, a.ID, ActivityStatusRejected, "p1"); err != nil {
		t.Fatalf("first review failed: %v", err)
	}

	stale := NewService(&staleReadStore{fakeStore: store, snapshot: snapshot}, fixedHours{hours: 20})
	_, err := stale.ReviewActivity(ctx, a.ID, ActivityStatusApproved, "p2")
	var conflict *fault.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if store.activities[a.ID].Status != ActivityStatusRejected {
		t.Fatalf("losing review must not change the status, got %s", store.activities[a.ID].Status)
	}
}

func TestBulkComplianceReturnsPartialResults(t *testing.T) {
	store := newCPEFakeStore()
	store.teachers = []string{"t1", "t2", "t3"}
	store.failFor = "t2"
	service := NewService(store, fixedHours{hours: 20})
	ctx := context.Background()

	a, _ := service.SubmitActivity(ctx, "t1", SubmitInput{
		Title:        "Workshop",
		Hours:        25,
		ActivityDate: time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
	})
	if _, err := service.ReviewActivity(ctx, a.ID, ActivityStatusApproved, "p1"); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	records, err := service.BulkCompliance(ctx, 2024, "")
	if err != nil {
		t.Fatalf("bulk failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	byTeacher := map[string]ComplianceRecord{}
	for _, record := range records {
		byTeacher[record.TeacherID] = record
	}
	if !byTeacher["t1"].Compliant {
		t.Fatal("expected t1 compliant")
	}
	if byTeacher["t2"].Error == "" {
		t.Fatal("expected t2 flagged with an error")
	}
	if byTeacher["t3"].Compliant || byTeacher["t3"].Shortage != 20 {
		t.Fatalf("expected t3 non-compliant with shortage 20, got %+v", byTeacher["t3"])
	}
}
