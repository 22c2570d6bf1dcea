package cpe

// BuildComplianceRecord aggregates a teacher's activities for one year.
// Total hours count every activity regardless of status; points only
// accrue from approved activities.
func BuildComplianceRecord(teacherID string, year int, activities []Activity, requiredHours float64) ComplianceRecord {
	record := ComplianceRecord{TeacherID: teacherID, Year: year, RequiredHours: requiredHours}
	for _, activity := range activities {
		if activity.ActivityDate.Year() != year {
			continue
		}
		record.TotalHours += activity.Hours
		if activity.Status == ActivityStatusApproved {
			record.TotalPoints += activity.Points
		}
	}
	record.Compliant = record.TotalHours >= requiredHours
	if shortage := requiredHours - record.TotalHours; shortage > 0 {
		record.Shortage = shortage
	}
	return record
}
