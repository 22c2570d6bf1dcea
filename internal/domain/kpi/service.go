package kpi

import (
	"context"
	"strings"

	"teaps/internal/domain/fault"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Submit(ctx context.Context, teacherID string, input SubmitInput) (KpiRequest, error) {
	if strings.TrimSpace(teacherID) == "" {
		return KpiRequest{}, fault.Invalid("teacherId", "teacher id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return KpiRequest{}, fault.Invalid("title", "title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return KpiRequest{}, fault.Invalid("description", "description is required")
	}
	if strings.TrimSpace(input.Justification) == "" {
		return KpiRequest{}, fault.Invalid("justification", "justification is required")
	}
	if input.TargetValue <= 0 {
		return KpiRequest{}, fault.Invalid("targetValue", "target value must be positive")
	}

	return s.store.InsertRequest(ctx, KpiRequest{
		TeacherID:           teacherID,
		Title:               input.Title,
		Description:         input.Description,
		Justification:       input.Justification,
		Category:            input.Category,
		TargetValue:         input.TargetValue,
		MeasurementCriteria: input.MeasurementCriteria,
		Status:              RequestStatusPending,
	})
}

func (s *Service) GetRequest(ctx context.Context, id string) (KpiRequest, error) {
	return s.store.GetRequest(ctx, id)
}

func (s *Service) ListRequests(ctx context.Context, filter RequestFilter) ([]KpiRequest, error) {
	return s.store.ListRequests(ctx, filter)
}

// Approve transitions a pending request to approved and materializes the
// active Kpi in the same transaction.
func (s *Service) Approve(ctx context.Context, id, principalID, comments string) (KpiRequest, Kpi, error) {
	r, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return KpiRequest{}, Kpi{}, err
	}
	if r.Status != RequestStatusPending {
		return KpiRequest{}, Kpi{}, fault.StateConflict("kpi request", r.ID, r.Status, "approve")
	}
	return s.store.ApproveRequest(ctx, id, principalID, comments)
}

// Reject transitions a pending request to rejected. Comments are required
// so the teacher knows why.
func (s *Service) Reject(ctx context.Context, id, principalID, comments string) (KpiRequest, error) {
	if strings.TrimSpace(comments) == "" {
		return KpiRequest{}, fault.Invalid("comments", "comments are required to reject")
	}

	r, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return KpiRequest{}, err
	}
	if r.Status != RequestStatusPending {
		return KpiRequest{}, fault.StateConflict("kpi request", r.ID, r.Status, "reject")
	}
	return s.store.RejectRequest(ctx, id, principalID, comments)
}

func (s *Service) ListKpis(ctx context.Context, teacherID string) ([]Kpi, error) {
	return s.store.ListKpis(ctx, teacherID)
}

// UpdateProgress records progress toward an active Kpi; reaching 100
// completes it.
func (s *Service) UpdateProgress(ctx context.Context, id string, progress float64) (Kpi, error) {
	if progress < 0 || progress > 100 {
		return Kpi{}, fault.Invalid("progress", "progress must be between 0 and 100")
	}

	k, err := s.store.GetKpi(ctx, id)
	if err != nil {
		return Kpi{}, err
	}
	if k.Status == KpiStatusCompleted {
		return Kpi{}, fault.StateConflict("kpi", k.ID, k.Status, "update progress")
	}

	status := KpiStatusActive
	if progress >= 100 {
		status = KpiStatusCompleted
	}
	return s.store.UpdateKpiProgress(ctx, id, progress, status)
}
