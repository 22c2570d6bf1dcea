package kpihandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"teaps/internal/domain/auth"
	"teaps/internal/domain/fault"
	"teaps/internal/domain/kpi"
	"teaps/internal/domain/notifications"
	"teaps/internal/transport/http/middleware"
)

type fakeKpiStore struct {
	requests map[string]kpi.KpiRequest
	kpis     map[string]kpi.Kpi
}

func (f *fakeKpiStore) InsertRequest(_ context.Context, r kpi.KpiRequest) (kpi.KpiRequest, error) {
	r.ID = "r1"
	r.CreatedAt = time.Now()
	f.requests[r.ID] = r
	return r, nil
}

func (f *fakeKpiStore) GetRequest(_ context.Context, id string) (kpi.KpiRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return kpi.KpiRequest{}, fault.NotFound("kpi request", id)
	}
	return r, nil
}

func (f *fakeKpiStore) ListRequests(_ context.Context, _ kpi.RequestFilter) ([]kpi.KpiRequest, error) {
	return nil, nil
}

func (f *fakeKpiStore) ApproveRequest(_ context.Context, id, reviewerID, comments string) (kpi.KpiRequest, kpi.Kpi, error) {
	r, ok := f.requests[id]
	if !ok {
		return kpi.KpiRequest{}, kpi.Kpi{}, fault.NotFound("kpi request", id)
	}
	if r.Status != kpi.RequestStatusPending {
		return kpi.KpiRequest{}, kpi.Kpi{}, fault.StateConflict("kpi request", id, r.Status, "approve")
	}
	now := time.Now()
	r.Status = kpi.RequestStatusApproved
	r.ReviewerComments = comments
	r.ReviewedBy = reviewerID
	r.ReviewedAt = &now
	f.requests[id] = r

	k := kpi.Kpi{
		ID:        "k1",
		TeacherID: r.TeacherID,
		RequestID: r.ID,
		Title:     r.Title,
		Status:    kpi.KpiStatusActive,
		CreatedAt: now,
	}
	f.kpis[k.ID] = k
	return r, k, nil
}

func (f *fakeKpiStore) RejectRequest(_ context.Context, id, reviewerID, comments string) (kpi.KpiRequest, error) {
	r := f.requests[id]
	r.Status = kpi.RequestStatusRejected
	r.ReviewerComments = comments
	r.ReviewedBy = reviewerID
	f.requests[id] = r
	return r, nil
}

func (f *fakeKpiStore) ListKpis(_ context.Context, _ string) ([]kpi.Kpi, error) { return nil, nil }

func (f *fakeKpiStore) GetKpi(_ context.Context, id string) (kpi.Kpi, error) {
	k, ok := f.kpis[id]
	if !ok {
		return kpi.Kpi{}, fault.NotFound("kpi", id)
	}
	return k, nil
}

func (f *fakeKpiStore) UpdateKpiProgress(_ context.Context, id string, progress float64, status string) (kpi.Kpi, error) {
	k := f.kpis[id]
	k.Progress = progress
	k.Status = status
	f.kpis[id] = k
	return k, nil
}

type auditEntry struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
}

type capturingRecorder struct {
	entries []auditEntry
}

func (c *capturingRecorder) Record(_ context.Context, actorID, _, action, entityType, entityID, _, _ string, _, _ any) error {
	c.entries = append(c.entries, auditEntry{Action: action, EntityType: entityType, EntityID: entityID, ActorID: actorID})
	return nil
}

type noopNotificationStore struct{}

func (noopNotificationStore) CreateNotification(context.Context, string, string, string, string) error {
	return nil
}

func (noopNotificationStore) ListNotifications(context.Context, string, int, int) ([]notifications.Notification, error) {
	return nil, nil
}

func (noopNotificationStore) CountNotifications(context.Context, string) (int, error) {
	return 0, nil
}

func (noopNotificationStore) MarkRead(context.Context, string, string) error { return nil }

func (noopNotificationStore) UserEmail(context.Context, string) (string, error) { return "", nil }

func (noopNotificationStore) UserIDForTeacher(context.Context, string) (string, error) {
	return "", nil
}

func TestApproveAuditsStatusChangeAndKpiCreation(t *testing.T) {
	store := &fakeKpiStore{
		requests: map[string]kpi.KpiRequest{
			"r1": {ID: "r1", TeacherID: "t1", Title: "Raise pass rate", Status: kpi.RequestStatusPending},
		},
		kpis: map[string]kpi.Kpi{},
	}
	recorder := &capturingRecorder{}
	handler := NewHandler(kpi.NewService(store), notifications.New(noopNotificationStore{}, nil), recorder)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/kpis/requests/r1/approve", strings.NewReader(`{"comments":"good goal"}`))
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "p1", RoleName: auth.RolePrincipal}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if len(recorder.entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d: %+v", len(recorder.entries), recorder.entries)
	}
	first, second := recorder.entries[0], recorder.entries[1]
	if first.Action != "kpi.request.approve" || first.EntityType != "kpi_request" || first.EntityID != "r1" {
		t.Fatalf("unexpected first entry %+v", first)
	}
	if second.Action != "kpi.create" || second.EntityType != "kpi" || second.EntityID != "k1" {
		t.Fatalf("unexpected second entry %+v", second)
	}
	if first.ActorID != "p1" || second.ActorID != "p1" {
		t.Fatalf("expected both entries attributed to p1: %+v", recorder.entries)
	}
}

func TestRejectAuditsOnlyTheRequest(t *testing.T) {
	store := &fakeKpiStore{
		requests: map[string]kpi.KpiRequest{
			"r1": {ID: "r1", TeacherID: "t1", Title: "Raise pass rate", Status: kpi.RequestStatusPending},
		},
		kpis: map[string]kpi.Kpi{},
	}
	recorder := &capturingRecorder{}
	handler := NewHandler(kpi.NewService(store), notifications.New(noopNotificationStore{}, nil), recorder)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/kpis/requests/r1/reject", strings.NewReader(`{"comments":"insufficient justification"}`))
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "p1", RoleName: auth.RolePrincipal}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(recorder.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d: %+v", len(recorder.entries), recorder.entries)
	}
	if recorder.entries[0].Action != "kpi.request.reject" || recorder.entries[0].EntityType != "kpi_request" {
		t.Fatalf("unexpected entry %+v", recorder.entries[0])
	}
}
