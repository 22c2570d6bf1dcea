package cpe

import (
	"context"
	"strings"
	"time"

	"teaps/internal/domain/fault"
)

// RequiredHoursSource supplies the configured annual hours requirement.
// Satisfied by the configuration service.
type RequiredHoursSource interface {
	RequiredCPEHours(ctx context.Context) (float64, error)
}

type Service struct {
	store    StoreAPI
	required RequiredHoursSource
}

func NewService(store StoreAPI, required RequiredHoursSource) *Service {
	return &Service{store: store, required: required}
}

func (s *Service) SubmitActivity(ctx context.Context, teacherID string, input SubmitInput) (Activity, error) {
	if strings.TrimSpace(teacherID) == "" {
		return Activity{}, fault.Invalid("teacherId", "teacher id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return Activity{}, fault.Invalid("title", "title is required")
	}
	if input.Hours <= 0 {
		return Activity{}, fault.Invalid("hours", "hours must be positive")
	}
	if input.ActivityDate.IsZero() {
		return Activity{}, fault.Invalid("activityDate", "activity date is required")
	}

	return s.store.InsertActivity(ctx, Activity{
		TeacherID:    teacherID,
		Title:        input.Title,
		Provider:     input.Provider,
		Hours:        input.Hours,
		Points:       input.Hours, // 1 hour earns 1 point
		ActivityDate: input.ActivityDate,
		Status:       ActivityStatusPending,
	})
}

// ReviewActivity approves or rejects a pending activity.
func (s *Service) ReviewActivity(ctx context.Context, id, decision, reviewerID string) (Activity, error) {
	if decision != ActivityStatusApproved && decision != ActivityStatusRejected {
		return Activity{}, fault.Invalid("decision", "decision must be approved or rejected")
	}

	a, err := s.store.GetActivity(ctx, id)
	if err != nil {
		return Activity{}, err
	}
	if a.Status != ActivityStatusPending {
		return Activity{}, fault.StateConflict("cpe activity", a.ID, a.Status, "review")
	}
	return s.store.UpdateActivityStatus(ctx, id, decision, reviewerID)
}

func (s *Service) ListActivities(ctx context.Context, teacherID string, year int) ([]Activity, error) {
	return s.store.ListActivities(ctx, teacherID, year)
}

func (s *Service) CheckCompliance(ctx context.Context, teacherID string, year int) (ComplianceRecord, error) {
	if strings.TrimSpace(teacherID) == "" {
		return ComplianceRecord{}, fault.Invalid("teacherId", "teacher id is required")
	}
	if year == 0 {
		year = time.Now().Year()
	}

	required, err := s.required.RequiredCPEHours(ctx)
	if err != nil {
		return ComplianceRecord{}, err
	}
	activities, err := s.store.ListActivities(ctx, teacherID, year)
	if err != nil {
		return ComplianceRecord{}, err
	}
	return BuildComplianceRecord(teacherID, year, activities, required), nil
}

// BulkCompliance computes compliance per teacher across a department, or
// the whole institution when department is empty. A single teacher's
// failure is flagged on their record without aborting the run.
func (s *Service) BulkCompliance(ctx context.Context, year int, department string) ([]ComplianceRecord, error) {
	teacherIDs, err := s.store.ListTeacherIDs(ctx, department)
	if err != nil {
		return nil, err
	}

	records := make([]ComplianceRecord, 0, len(teacherIDs))
	for _, teacherID := range teacherIDs {
		record, err := s.CheckCompliance(ctx, teacherID, year)
		if err != nil {
			records = append(records, ComplianceRecord{TeacherID: teacherID, Year: year, Error: err.Error()})
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
