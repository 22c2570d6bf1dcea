package cpe

import "context"

type StoreAPI interface {
	InsertActivity(ctx context.Context, a Activity) (Activity, error)
	GetActivity(ctx context.Context, id string) (Activity, error)
	UpdateActivityStatus(ctx context.Context, id, status, reviewerID string) (Activity, error)
	ListActivities(ctx context.Context, teacherID string, year int) ([]Activity, error)
	// ListTeacherIDs returns teacher ids scoped to a department, or all
	// teachers when department is empty.
	ListTeacherIDs(ctx context.Context, department string) ([]string, error)
}
