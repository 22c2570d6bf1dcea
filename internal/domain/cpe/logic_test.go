package cpe

import (
	"testing"
	"time"
)

func activityOn(year int, hours float64, status string) Activity {
	return Activity{
		TeacherID:    "t1",
		Hours:        hours,
		Points:       hours,
		ActivityDate: time.Date(year, time.March, 10, 0, 0, 0, 0, time.UTC),
		Status:       status,
	}
}

func TestBuildComplianceRecordShortage(t *testing.T) {
	activities := []Activity{
		activityOn(2024, 10, ActivityStatusApproved),
		activityOn(2024, 5, ActivityStatusApproved),
	}

	record := BuildComplianceRecord("t1", 2024, activities, 20)
	if record.Compliant {
		t.Fatal("expected non-compliant")
	}
	if record.TotalHours != 15 {
		t.Fatalf("expected 15 hours, got %v", record.TotalHours)
	}
	if record.Shortage != 5 {
		t.Fatalf("expected shortage 5, got %v", record.Shortage)
	}
}

func TestBuildComplianceRecordCompliant(t *testing.T) {
	activities := []Activity{
		activityOn(2024, 12, ActivityStatusApproved),
		activityOn(2024, 8, ActivityStatusPending),
	}

	record := BuildComplianceRecord("t1", 2024, activities, 20)
	if !record.Compliant {
		t.Fatal("expected compliant: total hours count all statuses")
	}
	if record.TotalHours != 20 {
		t.Fatalf("expected 20 hours, got %v", record.TotalHours)
	}
	if record.Shortage != 0 {
		t.Fatalf("expected no shortage, got %v", record.Shortage)
	}
}

func TestPointsOnlyFromApprovedActivities(t *testing.T) {
	activities := []Activity{
		activityOn(2024, 10, ActivityStatusApproved),
		activityOn(2024, 6, ActivityStatusPending),
		activityOn(2024, 4, ActivityStatusRejected),
	}

	record := BuildComplianceRecord("t1", 2024, activities, 20)
	if record.TotalHours != 20 {
		t.Fatalf("expected 20 total hours, got %v", record.TotalHours)
	}
	if record.TotalPoints != 10 {
		t.Fatalf("expected 10 points from approved only, got %v", record.TotalPoints)
	}
}

func TestOtherYearsExcluded(t *testing.T) {
	activities := []Activity{
		activityOn(2023, 30, ActivityStatusApproved),
		activityOn(2024, 5, ActivityStatusApproved),
	}

	record := BuildComplianceRecord("t1", 2024, activities, 20)
	if record.TotalHours != 5 {
		t.Fatalf("expected only 2024 hours, got %v", record.TotalHours)
	}
}
